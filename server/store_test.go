package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "best.json"))
	if got := s.Best(); got != 0 {
		t.Fatalf("missing file best = %d", got)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	if got := s.Best(); got != 0 {
		t.Fatalf("corrupt file best = %d", got)
	}
	s.SetBest(40)
	if got := s.Best(); got != 40 {
		t.Fatalf("rewrite after corrupt: best = %d", got)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	s := NewFileStore(path)
	s.SetBest(120)

	// 新实例读到同一文件
	if got := NewFileStore(path).Best(); got != 120 {
		t.Fatalf("best = %d, want 120", got)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"`+BestScoreKey+`":120}` {
		t.Fatalf("file content %s", b)
	}
}

func TestFileStoreNegative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	if err := os.WriteFile(path, []byte(`{"`+BestScoreKey+`":-5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := NewFileStore(path).Best(); got != 0 {
		t.Fatalf("negative best = %d", got)
	}
}

func TestFileStoreSharedInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "best.json")
	s := NewFileStore(path)
	s.SetBest(70)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if got := s.Best(); got != 70 {
		t.Fatalf("best = %d, want the value this instance wrote", got)
	}
}
