package tui

import (
	"testing"

	"github.com/gopxl/beep"
)

func TestCueSequences(t *testing.T) {
	s := &Sound{rate: beep.SampleRate(44100)}
	for cue, notes := range cues {
		st := s.sequence(notes)
		if st == nil {
			t.Fatalf("cue %d: no streamer", cue)
		}
		var want int
		for _, n := range notes {
			want += s.rate.N(n.dur)
		}
		buf := make([][2]float64, 512)
		total := 0
		for {
			n, ok := st.Stream(buf)
			total += n
			for _, smp := range buf[:n] {
				if smp[0] > cueVolume+1e-9 || smp[0] < -cueVolume-1e-9 {
					t.Fatalf("cue %d: sample %v above volume", cue, smp[0])
				}
			}
			if !ok || n == 0 {
				break
			}
		}
		if total != want {
			t.Errorf("cue %d: %d samples, want %d", cue, total, want)
		}
	}
}

func TestSilentSound(t *testing.T) {
	var nilSound *Sound
	nilSound.Play(CueEat)
	nilSound.Close()

	s := &Sound{rate: beep.SampleRate(44100)}
	if s.Enabled() {
		t.Fatal("sound without speaker reports enabled")
	}
	s.Play(CueDeath)
	s.Close()
}
