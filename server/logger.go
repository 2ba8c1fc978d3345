package server

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log 是全局可用的 SugaredLogger；InitLogger 之前为空实现，测试无需初始化
var Log = zap.NewNop().Sugar()

// LogOptions 日志文件与滚动策略
type LogOptions struct {
	Path       string
	Debug      bool
	JSON       bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultLogOptions 10MB 每文件，保留 3 个备份，7 天
func DefaultLogOptions(path string) LogOptions {
	return LogOptions{Path: path, MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7}
}

// InitLogger 按选项替换全局 Log。终端模式下屏幕归 tcell 所有，日志只写文件。
func InitLogger(opts LogOptions) error {
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.StacktraceKey = "stack"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	var enc zapcore.Encoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}
	logger := zap.New(zapcore.NewCore(enc, sink, level), zap.AddCaller())
	Log = logger.Sugar()
	return nil
}

// roomLogger 带房间 id 的子 logger
func roomLogger(id string) *zap.SugaredLogger {
	return Log.With("room", id)
}

// SyncLogger 刷新缓冲
func SyncLogger() {
	_ = Log.Sync()
}
