package tui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"snakearena/game"
	"snakearena/server"
)

type fakeRoom struct {
	snap   game.Snapshot
	inputs []server.Input
}

func (f *fakeRoom) OnInput(in server.Input) { f.inputs = append(f.inputs, in) }
func (f *fakeRoom) Snapshot() game.Snapshot { return f.snap }
func (f *fakeRoom) JoinPlayer(server.PlayerID, server.Viewer) error {
	return nil
}
func (f *fakeRoom) RequestLeave(server.PlayerID, server.Viewer) {}

func newTestApp(t *testing.T, snap game.Snapshot) (*App, tcell.SimulationScreen, *fakeRoom) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(80, 30)
	room := &fakeRoom{snap: snap}
	return New(screen, room, nil), screen, room
}

func idleSnapshot() game.Snapshot {
	return game.Snapshot{
		Cols:            5,
		Rows:            4,
		State:           game.StateIdle,
		Body:            []game.Cell{{X: 2, Y: 1}, {X: 1, Y: 1}},
		PrevBody:        []game.Cell{{X: 2, Y: 1}, {X: 1, Y: 1}},
		Direction:       game.DirRight,
		Food:            &game.Cell{X: 4, Y: 3},
		Skin:            game.SkinPineapple,
		ScoreMult:       1,
		PowerUpsEnabled: true,
		Interval:        140 * time.Millisecond,
	}
}

func runeAt(s tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestFrameDrawsBoard(t *testing.T) {
	snap := idleSnapshot()
	app, screen, _ := newTestApp(t, snap)
	app.Frame(game.Interpolate(snap, time.Now()))

	if got := runeAt(screen, boardX+2*2, boardY+1); got != '▶' {
		t.Errorf("head rune %q", got)
	}
	if got := runeAt(screen, boardX+1*2, boardY+1); got != '▓' {
		t.Errorf("body rune %q", got)
	}
	if got := runeAt(screen, boardX+4*2, boardY+3); got != skins[game.SkinPineapple].fruit {
		t.Errorf("food rune %q", got)
	}
	if got := runeAt(screen, boardX-1, boardY-1); got != '┌' {
		t.Errorf("border corner %q", got)
	}
	if got := runeAt(screen, boardX+5*2, boardY+4); got != '┘' {
		t.Errorf("border corner %q", got)
	}
}

func TestFrameDrawsPowerUpAndCollectibles(t *testing.T) {
	snap := idleSnapshot()
	snap.PowerUp = &game.PowerUp{Position: game.Cell{X: 0, Y: 0}, Kind: game.KindStar}
	snap.Flag = &game.Cell{X: 4, Y: 0}
	snap.Bonus = &game.Cell{X: 0, Y: 3}
	app, screen, _ := newTestApp(t, snap)
	app.Frame(game.Interpolate(snap, time.Now()))

	if got := runeAt(screen, boardX, boardY); got != '★' {
		t.Errorf("power-up rune %q", got)
	}
	if got := runeAt(screen, boardX+8, boardY); got != '⚑' {
		t.Errorf("flag rune %q", got)
	}
	if got := runeAt(screen, boardX, boardY+3); got != '☺' {
		t.Errorf("bonus rune %q", got)
	}

	snap.PowerUpsEnabled = false
	app.Frame(game.Interpolate(snap, time.Now()))
	if got := runeAt(screen, boardX, boardY); got == '★' {
		t.Error("power-up drawn while power-ups are off")
	}
}

func TestFrameInterpolatesHead(t *testing.T) {
	now := time.Now()
	snap := idleSnapshot()
	snap.State = game.StateRunning
	snap.PrevBody = []game.Cell{{X: 1, Y: 1}, {X: 0, Y: 1}}
	snap.TickAt = now
	app, screen, _ := newTestApp(t, snap)

	// 半个间隔：头在 1.5 格，占终端列 boardX+3
	app.Frame(game.Interpolate(snap, now.Add(70*time.Millisecond)))
	if got := runeAt(screen, boardX+3, boardY+1); got != '▶' {
		t.Errorf("mid-tick head rune %q", got)
	}
}

func TestFrameGameOver(t *testing.T) {
	snap := idleSnapshot()
	snap.State = game.StateOver
	snap.Death = &game.Death{Reason: game.DeathSelf, Head: game.Cell{X: 2, Y: 1}}
	app, screen, _ := newTestApp(t, snap)
	app.Frame(game.Interpolate(snap, time.Now()))

	if got := runeAt(screen, boardX+4, boardY+1); got != 'x' {
		t.Errorf("dead head rune %q", got)
	}
	if got := runeAt(screen, 1, boardY+snap.Rows+1); got != 'G' {
		t.Errorf("game over line starts with %q", got)
	}
}

func TestHandleEventRoutesInput(t *testing.T) {
	app, _, room := newTestApp(t, idleSnapshot())

	if !app.handleEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)) {
		t.Fatal("arrow key must not quit")
	}
	if !app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Fatal("unknown key must not quit")
	}
	if len(room.inputs) != 1 || room.inputs[0].Dir != game.DirUp {
		t.Fatalf("inputs %+v", room.inputs)
	}

	app.handleEvent(tcell.NewEventMouse(10, 5, tcell.Button1, tcell.ModNone))
	app.handleEvent(tcell.NewEventMouse(10, 1, tcell.ButtonNone, tcell.ModNone))
	if len(room.inputs) != 2 || room.inputs[1].Dir != game.DirUp {
		t.Fatalf("swipe inputs %+v", room.inputs)
	}

	if app.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)) {
		t.Fatal("q must quit")
	}
}

func TestEventToast(t *testing.T) {
	app, _, _ := newTestApp(t, idleSnapshot())
	app.Event(server.Event{Type: server.EventHighScore, Score: 50})
	if app.toast == "" {
		t.Fatal("high score toast missing")
	}
	app.Event(server.Event{Type: server.EventRestart})
	if app.toast != "" {
		t.Fatal("restart clears the toast")
	}
}
