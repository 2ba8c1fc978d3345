package server

// roomNotifier 新纪录：写日志并向房间内所有观察者广播。
// 在 Tick 内被调用，已处于房间 goroutine。
type roomNotifier struct {
	room *Room
}

func (n *roomNotifier) NotifyNewHighScore() {
	r := n.room
	r.log.Infow("new high score", "score", r.sim.Score())
	r.broadcast(r.event(EventHighScore))
}
