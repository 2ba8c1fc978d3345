package server

import (
	"sync/atomic"
	"testing"
	"time"

	"snakearena/game"
)

// recorder 记录房间推送的事件与帧
type recorder struct {
	events chan Event
	frames atomic.Int64
	closed atomic.Bool
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event, 256)}
}

func (r *recorder) Frame(game.Frame) { r.frames.Add(1) }

func (r *recorder) Event(e Event) {
	select {
	case r.events <- e:
	default:
	}
}

func (r *recorder) Close() { r.closed.Store(true) }

// waitEvent 丢弃其他事件，直到收到 typ
func (r *recorder) waitEvent(t *testing.T, typ string) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-r.events:
			if e.Type == typ {
				return e
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q event", typ)
			return Event{}
		}
	}
}

func testConfig() Config {
	rules := game.DefaultRules()
	rules.Cols, rules.Rows = 4, 3
	rules.BaseInterval = 5 * time.Millisecond
	rules.DeathDuration = 10 * time.Millisecond
	rules.PowerUpsEnabled = false
	return Config{Rules: rules, FrameRate: 200}
}

func startRoom(t *testing.T, cfg Config) (*Room, *recorder) {
	t.Helper()
	room, err := NewRoom("test", cfg, nil)
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	room.StartTicker()
	t.Cleanup(room.Close)
	rec := newRecorder()
	if err := room.JoinPlayer("p1", rec); err != nil {
		t.Fatalf("JoinPlayer: %v", err)
	}
	if e := rec.waitEvent(t, EventState); e.State != game.StateIdle {
		t.Fatalf("initial state %v", e.State)
	}
	return room, rec
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewRoomRejectsInvalidRules(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Cols = 1
	if _, err := NewRoom("bad", cfg, nil); err == nil {
		t.Fatal("want error for 1-column grid")
	}
}

func TestRoomIdleDoesNotAdvance(t *testing.T) {
	room, rec := startRoom(t, testConfig())
	time.Sleep(30 * time.Millisecond)
	if room.TickSeq() != 0 {
		t.Fatalf("idle room advanced %d ticks", room.TickSeq())
	}
	if rec.frames.Load() == 0 {
		t.Fatal("frames must be rendered while idle")
	}
}

func TestRoomRunsIntoWallAndEnds(t *testing.T) {
	room, rec := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirUp})

	if e := rec.waitEvent(t, EventDeath); e.Reason != game.DeathWall {
		t.Fatalf("death reason %v, want wall", e.Reason)
	}
	e := rec.waitEvent(t, EventOver)
	if e.State != game.StateOver {
		t.Fatalf("over event state %v", e.State)
	}
	snap := room.Snapshot()
	if snap.State != game.StateOver || snap.Death == nil {
		t.Fatalf("snapshot state %v death %v", snap.State, snap.Death)
	}
	seq := room.TickSeq()
	time.Sleep(30 * time.Millisecond)
	if room.TickSeq() != seq {
		t.Fatal("ticks continued after game over")
	}
	if got := room.Metrics().Snapshot()["deaths"]; got != int64(1) {
		t.Fatalf("deaths metric %v", got)
	}
}

func TestRoomRestart(t *testing.T) {
	room, rec := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirUp})
	rec.waitEvent(t, EventOver)

	room.OnInput(Input{PlayerID: "p1", Kind: InputRestart})
	e := rec.waitEvent(t, EventRestart)
	if e.State != game.StateIdle || e.Score != 0 {
		t.Fatalf("restart event %+v", e)
	}
	snap := room.Snapshot()
	if snap.State != game.StateIdle || len(snap.Body) != 2 {
		t.Fatalf("after restart state %v body %v", snap.State, snap.Body)
	}
}

func TestRoomRestartDuringDeathIgnoresStaleTimer(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.DeathDuration = 40 * time.Millisecond
	room, rec := startRoom(t, cfg)
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirUp})
	rec.waitEvent(t, EventDeath)

	room.OnInput(Input{PlayerID: "p1", Kind: InputRestart})
	rec.waitEvent(t, EventRestart)
	time.Sleep(100 * time.Millisecond)

	if st := room.Snapshot().State; st != game.StateIdle {
		t.Fatalf("state %v after stale death timer, want idle", st)
	}
	for {
		select {
		case e := <-rec.events:
			if e.Type == EventOver {
				t.Fatal("stale death completed the new game")
			}
		default:
			return
		}
	}
}

func TestRoomReverseInputRejected(t *testing.T) {
	room, _ := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirLeft})
	waitFor(t, "rejected input", func() bool {
		return room.Metrics().Snapshot()["inputs_rejected"] == int64(1)
	})
	if st := room.Snapshot().State; st != game.StateIdle {
		t.Fatalf("reverse input started the game: %v", st)
	}
}

func TestRoomPauseStopsTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Cols, cfg.Rules.Rows = 20, 20
	cfg.Rules.BaseInterval = 20 * time.Millisecond
	room, _ := startRoom(t, cfg)
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirDown})
	waitFor(t, "first tick", func() bool { return room.TickSeq() > 0 })

	room.OnInput(Input{PlayerID: "p1", Kind: InputPause})
	waitFor(t, "paused", func() bool { return room.Snapshot().State == game.StatePaused })
	seq := room.TickSeq()
	time.Sleep(60 * time.Millisecond)
	if room.TickSeq() != seq {
		t.Fatalf("paused room advanced from %d to %d", seq, room.TickSeq())
	}

	room.OnInput(Input{PlayerID: "p1", Kind: InputPause})
	waitFor(t, "resumed ticks", func() bool { return room.TickSeq() > seq })
}

func TestRoomSpeedInput(t *testing.T) {
	room, _ := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "p1", Kind: InputSpeed, Interval: game.SpeedPresets[0]})
	waitFor(t, "new interval", func() bool {
		snap := room.Snapshot()
		return snap.BaseInterval == game.SpeedPresets[0] && snap.Interval == game.SpeedPresets[0]
	})
}

func TestRoomPowerUpsAndSkinInputs(t *testing.T) {
	room, _ := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "admin", Kind: InputPowerUps, Enabled: true})
	room.OnInput(Input{PlayerID: "admin", Kind: InputSkin, Skin: game.SkinDoner})
	waitFor(t, "settings", func() bool {
		snap := room.Snapshot()
		return snap.PowerUpsEnabled && snap.Skin == game.SkinDoner
	})
}

func TestRoomJoinReplacesAndLeaveCloses(t *testing.T) {
	room, first := startRoom(t, testConfig())
	second := newRecorder()
	if err := room.JoinPlayer("p1", second); err != nil {
		t.Fatal(err)
	}
	second.waitEvent(t, EventState)
	if !first.closed.Load() {
		t.Fatal("replaced viewer not closed")
	}

	// 被替换的旧观察者离开时不能移除新观察者
	room.RequestLeave("p1", first)
	time.Sleep(30 * time.Millisecond)
	if second.closed.Load() {
		t.Fatal("stale leave closed the replacing viewer")
	}
	n := second.frames.Load()
	waitFor(t, "frames after stale leave", func() bool { return second.frames.Load() > n })

	room.RequestLeave("p1", second)
	waitFor(t, "leave", second.closed.Load)
}

func TestRoomDropsStaleSequence(t *testing.T) {
	room, rec := startRoom(t, testConfig())
	room.OnInput(Input{PlayerID: "p1", Kind: InputSpeed, Interval: 30 * time.Millisecond, Seq: 2})
	// 重发或乱序到达的旧输入
	room.OnInput(Input{PlayerID: "p1", Kind: InputSpeed, Interval: 40 * time.Millisecond, Seq: 1})
	room.OnInput(Input{PlayerID: "p1", Kind: InputSpeed, Interval: 50 * time.Millisecond, Seq: 2})
	// 未编号的输入不参与过滤，其他玩家的编号互不影响
	room.OnInput(Input{PlayerID: "p2", Kind: InputPowerUps, Enabled: true, Seq: 1})
	waitFor(t, "stale inputs dropped", func() bool {
		return room.Metrics().Snapshot()["old_seq_ignored"] == int64(2) && room.Snapshot().PowerUpsEnabled
	})
	if got := room.Snapshot().BaseInterval; got != 30*time.Millisecond {
		t.Fatalf("base interval %v, want the seq 2 value", got)
	}

	// 重新加入后编号从头开始
	if err := room.JoinPlayer("p1", rec); err != nil {
		t.Fatal(err)
	}
	room.OnInput(Input{PlayerID: "p1", Kind: InputSpeed, Interval: 60 * time.Millisecond, Seq: 1})
	waitFor(t, "seq reset on join", func() bool {
		return room.Snapshot().BaseInterval == 60*time.Millisecond
	})
}

func TestRoomClose(t *testing.T) {
	room, rec := startRoom(t, testConfig())
	room.Close()
	if !rec.closed.Load() {
		t.Fatal("viewers must be closed with the room")
	}
	if err := room.JoinPlayer("p2", newRecorder()); err != ErrRoomClosed {
		t.Fatalf("join after close: %v", err)
	}
	room.Close()
}

func TestRoomFullGridHasNoFood(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.Cols, cfg.Rules.Rows = 2, 1
	store := &game.MemoryStore{}
	room, err := NewRoom("full", cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	room.StartTicker()
	t.Cleanup(room.Close)
	if snap := room.Snapshot(); snap.Food != nil {
		t.Fatalf("food %v on a full board", *snap.Food)
	}
	rec := newRecorder()
	if err := room.JoinPlayer("p1", rec); err != nil {
		t.Fatal(err)
	}
	room.OnInput(Input{PlayerID: "p1", Kind: InputMove, Dir: game.DirUp})
	rec.waitEvent(t, EventOver)
	if store.Best() != 0 {
		t.Fatalf("best %d without eating", store.Best())
	}
}
