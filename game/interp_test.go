package game

import (
	"math"
	"testing"
	"time"
)

func TestFactorPinnedWhileIdle(t *testing.T) {
	snap := Snapshot{
		State:    StateIdle,
		Body:     []Cell{{3, 3}, {2, 3}},
		PrevBody: []Cell{{2, 3}, {1, 3}},
		Interval: 100 * time.Millisecond,
		TickAt:   epoch0,
	}
	f := Interpolate(snap, epoch0)
	if f.Factor != 1 {
		t.Fatalf("factor = %v, want 1", f.Factor)
	}
	if f.Segments[0] != (Vec{3, 3}) {
		t.Errorf("head at %v, want resting position", f.Segments[0])
	}
}

func TestInterpolateMidTick(t *testing.T) {
	snap := Snapshot{
		State:    StateRunning,
		Body:     []Cell{{3, 3}, {2, 3}, {1, 3}},
		PrevBody: []Cell{{2, 3}, {1, 3}},
		Interval: 100 * time.Millisecond,
		TickAt:   epoch0,
	}
	f := Interpolate(snap, epoch0.Add(50*time.Millisecond))
	if math.Abs(f.Factor-0.5) > 1e-9 {
		t.Fatalf("factor = %v, want 0.5", f.Factor)
	}
	want := []Vec{{2.5, 3}, {1.5, 3}, {1, 3}}
	for i, w := range want {
		if math.Abs(f.Segments[i].X-w.X) > 1e-9 || math.Abs(f.Segments[i].Y-w.Y) > 1e-9 {
			t.Errorf("segment %d = %v, want %v", i, f.Segments[i], w)
		}
	}
	if got := Interpolate(snap, epoch0.Add(time.Second)).Factor; got != 1 {
		t.Errorf("factor after interval = %v, want clamp to 1", got)
	}
	if got := Interpolate(snap, epoch0.Add(-time.Second)).Factor; got != 0 {
		t.Errorf("factor before tick = %v, want clamp to 0", got)
	}
}

func TestInterpolateFollowsIntervalChange(t *testing.T) {
	f := newFixture(t, nil)
	f.running([]Cell{{2, 5}, {1, 5}}, DirRight)
	f.sim.food = &Cell{0, 0}
	f.tick()
	snap := f.sim.Snapshot()
	mid := f.clock.Now().Add(70 * time.Millisecond)
	if got := Interpolate(snap, mid).Factor; math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("factor = %v, want 0.5", got)
	}
	f.sim.SetBaseInterval(280 * time.Millisecond)
	if got := Interpolate(f.sim.Snapshot(), mid).Factor; math.Abs(got-0.25) > 1e-9 {
		t.Errorf("factor after speed change = %v, want 0.25", got)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	f := newFixture(t, nil)
	snap := f.sim.Snapshot()
	snap.Body[0] = Cell{99, 99}
	if f.sim.Body()[0] == (Cell{99, 99}) {
		t.Fatal("snapshot shares memory with the simulation")
	}
}

func TestRainbowFrame(t *testing.T) {
	f := newFixture(t, nil)
	f.sim.applyPowerUp(KindRainbow, f.clock.Now())
	snap := f.sim.Snapshot()
	if !Interpolate(snap, f.clock.Now()).Rainbow() {
		t.Error("rainbow inactive right after pickup")
	}
	if Interpolate(snap, f.clock.Now().Add(10*time.Second)).Rainbow() {
		t.Error("rainbow still active after its duration")
	}
}
