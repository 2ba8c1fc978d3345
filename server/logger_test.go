package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitLogger(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "snake.log")
	opts := DefaultLogOptions(path)
	opts.JSON = true
	if err := InitLogger(opts); err != nil {
		t.Fatal(err)
	}
	roomLogger("r9").Infow("hello", "score", 3)
	roomLogger("r9").Debugw("hidden")
	SyncLogger()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"room":"r9"`) {
		t.Fatalf("log output %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatal("debug line written at info level")
	}
	Log = zap.NewNop().Sugar()
}
