package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"snakearena/game"
)

// ErrRoomClosed 房间已销毁
var ErrRoomClosed = errors.New("room closed")

// viewerRequest 加入/离开请求；离开时只移除同一个 Viewer，避免旧连接踢掉重连
type viewerRequest struct {
	id PlayerID
	v  Viewer
}

// Room 房间世界：一条蛇的权威状态维护在内存，单 goroutine 推进。
// Tick、帧、输入、加入/离开、死亡计时都是同一个 select 的分支，
// 因此每次 Tick 完整执行后才会产生下一帧。
type Room struct {
	ID string

	log     *zap.SugaredLogger
	sim     *game.Simulation
	clock   game.Clock
	ticks   *TickController
	metrics *RoomMetrics

	viewers   map[PlayerID]Viewer
	lastSeq   map[PlayerID]int64
	inputChan chan Input
	joinChan  chan viewerRequest
	leaveChan chan viewerRequest

	deathTimer *time.Timer
	deathEpoch uint64

	snap game.Snapshot // 只由房间 goroutine 读写

	pubMu     sync.RWMutex
	published game.Snapshot // 供 HTTP 等其他 goroutine 读取

	tickSeq       int64
	tickerStarted bool
	quit          chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

// NewRoom 创建房间并初始化模拟；store 为 nil 时最高分只保存在内存
func NewRoom(id string, cfg Config, store game.BestStore) (*Room, error) {
	r := &Room{
		ID:        id,
		log:       roomLogger(id),
		clock:     cfg.clock(),
		ticks:     NewTickController(cfg.FrameRate),
		metrics:   &RoomMetrics{},
		viewers:   make(map[PlayerID]Viewer),
		lastSeq:   make(map[PlayerID]int64),
		inputChan: make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		joinChan:  make(chan viewerRequest),
		leaveChan: make(chan viewerRequest, 64),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	sim, err := game.New(cfg.Rules, game.Options{
		Clock:    r.clock,
		Rand:     cfg.Rand,
		Store:    store,
		Notifier: &roomNotifier{room: r},
	})
	if err != nil {
		return nil, err
	}
	r.sim = sim
	r.refresh()
	return r, nil
}

// StartTicker 启动房间的主循环（单 goroutine 推进世界）
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go r.run()
}

func (r *Room) run() {
	defer close(r.done)
	defer r.ticks.Close()
	r.ticks.Start(r.sim.Interval())
	r.log.Infow("room started", "interval", r.sim.Interval())
	for {
		select {
		case <-r.quit:
			r.stopDeathTimer()
			for id := range r.viewers {
				r.LeavePlayer(id)
			}
			r.log.Infow("room stopped")
			return
		case j := <-r.joinChan:
			r.addViewer(j.id, j.v)
		case l := <-r.leaveChan:
			r.leaveViewer(l.id, l.v)
		case in := <-r.inputChan:
			r.applyInput(in)
		case <-r.ticks.Ticks():
			r.step()
		case <-r.deathC():
			r.completeDeath()
		case <-r.ticks.Frames():
			r.renderFrame()
		}
	}
}

// JoinPlayer 将观察者加入房间；同名连接会替换旧连接
func (r *Room) JoinPlayer(id PlayerID, v Viewer) error {
	select {
	case r.joinChan <- viewerRequest{id: id, v: v}:
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) addViewer(id PlayerID, v Viewer) {
	if old, ok := r.viewers[id]; ok && old != v {
		old.Close()
	}
	r.viewers[id] = v
	delete(r.lastSeq, id) // 新连接重新从头编号
	r.log.Infow("player joined", "player", id, "viewers", len(r.viewers))
	v.Event(r.event(EventState))
	v.Frame(game.Interpolate(r.snap, r.clock.Now()))
}

// LeavePlayer 将观察者移出房间（仅在房间 goroutine 中调用）
func (r *Room) LeavePlayer(id PlayerID) {
	if v, ok := r.viewers[id]; ok {
		v.Close()
		delete(r.viewers, id)
		delete(r.lastSeq, id)
		r.log.Infow("player left", "player", id)
	}
}

// leaveViewer 只有 v 仍是该 id 当前的观察者时才移除
func (r *Room) leaveViewer(id PlayerID, v Viewer) {
	if cur, ok := r.viewers[id]; ok && cur == v {
		r.LeavePlayer(id)
	}
}

// RequestLeave 请求在房间 goroutine 中移除玩家 v，避免并发改动房间状态
func (r *Room) RequestLeave(pid PlayerID, v Viewer) {
	select {
	case r.leaveChan <- viewerRequest{id: pid, v: v}:
	case <-r.done:
	}
}

// OnInput 入站输入（不立即改变状态），仅记录意图，等房间 goroutine 处理
func (r *Room) OnInput(in Input) {
	// 不阻塞：输入拥塞时丢弃，保证 Tick 准时
	select {
	case r.inputChan <- in:
	default:
		r.metrics.IncChanFullDiscarded()
	}
}

func (r *Room) applyInput(in Input) {
	if r.staleSeq(in) {
		r.metrics.IncOldSeqIgnored()
		return
	}
	prev := r.sim.State()
	switch in.Kind {
	case InputMove:
		if r.sim.SubmitDirection(in.Dir) {
			r.metrics.IncAccepted()
		} else {
			r.metrics.IncRejected()
		}
	case InputPause:
		r.sim.TogglePause()
	case InputRestart:
		r.restart()
		return
	case InputSpeed:
		if r.sim.SetBaseInterval(in.Interval) {
			r.log.Infow("speed changed", "player", in.PlayerID, "interval", in.Interval)
		}
	case InputPowerUps:
		r.sim.SetPowerUpsEnabled(in.Enabled)
		r.log.Infow("power-ups toggled", "enabled", in.Enabled)
	case InputSkin:
		r.sim.SetSkin(in.Skin)
	}
	cur := r.sim.State()
	r.syncTimer()
	// 开局或恢复时从现在起计满一个间隔
	if cur == game.StateRunning && prev != game.StateRunning {
		r.ticks.Restart()
	}
	r.refresh()
	if cur != prev {
		r.broadcast(r.event(EventState))
	}
}

// staleSeq 同一玩家序列号不大于已处理的最大值时丢弃（网络重发、乱序）；Seq 为 0 表示不编号
func (r *Room) staleSeq(in Input) bool {
	if in.Seq <= 0 {
		return false
	}
	if in.Seq <= r.lastSeq[in.PlayerID] {
		return true
	}
	r.lastSeq[in.PlayerID] = in.Seq
	return false
}

// step 一次 Tick：推进模拟 → 调度死亡/计时器 → 广播事件
func (r *Room) step() {
	start := time.Now()
	out := r.sim.Tick()
	if !out.Advanced {
		return
	}
	atomic.AddInt64(&r.tickSeq, 1)

	for _, c := range out.Expired {
		e := r.event(EventExpired)
		e.Category = c.String()
		r.log.Debugw("effect expired", "category", c)
		r.broadcast(e)
	}
	if out.Ate {
		r.metrics.IncFood()
		r.broadcast(r.event(EventEat))
	}
	if out.Spawned != game.KindNone {
		e := r.event(EventSpawn)
		e.Kind = out.Spawned
		r.broadcast(e)
	}
	if out.PowerUp != game.KindNone {
		r.metrics.IncPowerUp()
		e := r.event(EventPowerUp)
		e.Kind = out.PowerUp
		r.broadcast(e)
		r.log.Debugw("power-up consumed", "kind", out.PowerUp, "interval", r.sim.Interval())
	}
	if out.Flag || out.Bonus {
		r.broadcast(r.event(EventCollect))
	}
	if out.Death != game.DeathNone {
		r.metrics.IncDeath()
		r.armDeathTimer(out.DeathAfter, out.Epoch)
		e := r.event(EventDeath)
		e.Reason = out.Death
		r.broadcast(e)
		r.log.Infow("snake died", "reason", out.Death, "score", r.sim.Score())
	}
	r.syncTimer()
	r.refresh()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// syncTimer 让 Tick 源与模拟保持一致：死亡后停止，其余按当前间隔（变化时重排）
func (r *Room) syncTimer() {
	switch r.sim.State() {
	case game.StateDying, game.StateOver:
		r.ticks.Stop()
	default:
		if !r.ticks.Running() {
			r.ticks.Start(r.sim.Interval())
			return
		}
		if r.ticks.SetInterval(r.sim.Interval()) {
			r.metrics.IncIntervalReset()
		}
	}
}

func (r *Room) restart() {
	r.stopDeathTimer()
	r.sim.Restart()
	r.metrics.IncRestart()
	r.syncTimer()
	r.ticks.Restart()
	r.refresh()
	r.broadcast(r.event(EventRestart))
	r.log.Infow("room restarted", "best", r.sim.Best())
}

func (r *Room) armDeathTimer(after time.Duration, epoch uint64) {
	r.stopDeathTimer()
	r.deathTimer = time.NewTimer(after)
	r.deathEpoch = epoch
}

func (r *Room) stopDeathTimer() {
	if r.deathTimer != nil {
		r.deathTimer.Stop()
		r.deathTimer = nil
	}
}

func (r *Room) deathC() <-chan time.Time {
	if r.deathTimer == nil {
		return nil
	}
	return r.deathTimer.C
}

func (r *Room) completeDeath() {
	r.deathTimer = nil
	if !r.sim.CompleteDeath(r.deathEpoch) {
		return
	}
	r.syncTimer()
	r.refresh()
	r.broadcast(r.event(EventOver))
	r.log.Infow("game over", "score", r.sim.Score(), "best", r.sim.Best())
}

// renderFrame 帧驱动：每帧基于最近快照插值，暂停时同样渲染（静止）
func (r *Room) renderFrame() {
	if len(r.viewers) == 0 {
		return
	}
	f := game.Interpolate(r.snap, r.clock.Now())
	for _, v := range r.viewers {
		v.Frame(f)
	}
	r.metrics.IncFrame()
}

func (r *Room) broadcast(e Event) {
	for _, v := range r.viewers {
		v.Event(e)
	}
}

func (r *Room) event(typ string) Event {
	return Event{Type: typ, Score: r.sim.Score(), Best: r.sim.Best(), State: r.sim.State()}
}

// refresh 重新生成快照并发布给其他 goroutine
func (r *Room) refresh() {
	r.snap = r.sim.Snapshot()
	r.pubMu.Lock()
	r.published = r.snap
	r.pubMu.Unlock()
}

// Snapshot 最近一次发布的快照（任意 goroutine 可调用）
func (r *Room) Snapshot() game.Snapshot {
	r.pubMu.RLock()
	defer r.pubMu.RUnlock()
	return r.published
}

// Metrics 房间指标
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}

// TickSeq 已推进的 Tick 数
func (r *Room) TickSeq() int64 {
	return atomic.LoadInt64(&r.tickSeq)
}

// FrameInterval 帧驱动间隔
func (r *Room) FrameInterval() time.Duration {
	return r.ticks.FrameInterval()
}

// Close 销毁房间，等待主循环退出
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
		if r.tickerStarted {
			<-r.done
		} else {
			close(r.done)
		}
	})
}
