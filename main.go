package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"snakearena/game"
	"snakearena/server"
	"snakearena/tui"
)

type options struct {
	mode     string
	addr     string
	room     string
	log      server.LogOptions
	bestFile string
	web      string
	fps      int

	rules game.Rules
}

// SnakeArena 入口：-mode tui 在终端里本地游玩，-mode server 提供 HTTP + WebSocket 服务
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(opts.log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer server.SyncLogger()

	switch opts.mode {
	case "server":
		err = runServer(opts)
	case "tui":
		err = runTUI(opts)
	default:
		err = fmt.Errorf("unknown mode %q", opts.mode)
	}
	if err != nil {
		server.Log.Errorw("exit", "err", err)
		server.SyncLogger()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	def := game.DefaultRules()
	o := options{rules: def}
	var speed time.Duration
	var skin string
	var powerUps bool

	fs := flag.NewFlagSet("snakearena", flag.ContinueOnError)
	fs.StringVar(&o.mode, "mode", "tui", "tui | server")
	fs.StringVar(&o.addr, "addr", ":8080", "server listen address, e.g. :8080")
	fs.StringVar(&o.room, "room", server.DefaultRoomID, "default room id")
	o.log = server.DefaultLogOptions("app.log")
	fs.StringVar(&o.log.Path, "log", o.log.Path, "log file path")
	fs.BoolVar(&o.log.Debug, "debug", false, "debug logging")
	fs.BoolVar(&o.log.JSON, "log-json", false, "JSON log lines")
	fs.StringVar(&o.bestFile, "best", "best.json", "best score file, empty keeps it in memory")
	fs.StringVar(&o.web, "web", "web", "static files served at / in server mode")
	fs.IntVar(&o.fps, "fps", 0, "frames per second (default 60 in tui, 20 in server)")
	fs.IntVar(&o.rules.Cols, "cols", def.Cols, "grid columns")
	fs.IntVar(&o.rules.Rows, "rows", def.Rows, "grid rows")
	fs.DurationVar(&speed, "speed", def.BaseInterval, "base tick interval")
	fs.StringVar(&skin, "skin", string(def.Skin), "fruit skin")
	fs.BoolVar(&powerUps, "powerups", def.PowerUpsEnabled, "enable power-ups")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	s, ok := game.ParseSkin(skin)
	if !ok {
		return o, fmt.Errorf("unknown skin %q", skin)
	}
	o.rules.Skin = s
	o.rules.BaseInterval = speed
	o.rules.PowerUpsEnabled = powerUps
	if err := o.rules.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

func (o options) store() game.BestStore {
	if o.bestFile == "" {
		return nil
	}
	return server.NewFileStore(o.bestFile)
}

func (o options) config(defaultFPS int) server.Config {
	cfg := server.DefaultConfig()
	cfg.Rules = o.rules
	cfg.FrameRate = defaultFPS
	if o.fps > 0 {
		cfg.FrameRate = o.fps
	}
	return cfg
}

func runServer(o options) error {
	rm := server.NewRoomManager(o.config(server.DefaultConfig().FrameRate), o.store())
	defer rm.Close()
	// 先预创建一个默认房间，便于快速试跑
	if _, err := rm.GetOrCreateRoom(o.room); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", rm.HandleWS)
	mux.Handle("/", http.FileServer(http.Dir(o.web)))
	// 管理与监控接口
	mux.HandleFunc("/admin/config", rm.HandleAdminConfig)
	mux.HandleFunc("/metrics", rm.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: o.addr, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		server.Log.Infof("SnakeArena listening on %s; open http://localhost%v/", o.addr, o.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("listen: %w", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}
	server.Log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func runTUI(o options) (err error) {
	room, err := server.NewRoom(o.room, o.config(server.DefaultFrameRate), o.store())
	if err != nil {
		return err
	}
	defer room.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer func() {
		// 崩溃时先恢复终端再报错
		if r := recover(); r != nil {
			screen.Fini()
			err = fmt.Errorf("panic: %v", r)
			return
		}
		screen.Fini()
	}()

	sound, serr := tui.NewSound()
	if serr != nil {
		server.Log.Warnw("audio disabled", "err", serr)
	}
	defer sound.Close()

	room.StartTicker()
	err = tui.New(screen, room, sound).Run()
	// 先停房间再恢复终端，避免 Fini 之后仍有帧写屏
	room.Close()
	return err
}
