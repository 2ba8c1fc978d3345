package server

import (
	"snakearena/game"
)

// Config 房间配置：游戏规则 + 帧驱动频率；Clock/Rand 为空时使用系统实现
type Config struct {
	Rules     game.Rules
	FrameRate int

	Clock game.Clock
	Rand  game.Rand
}

// DefaultConfig 默认规则，网络房间每秒推送 20 帧
func DefaultConfig() Config {
	return Config{
		Rules:     game.DefaultRules(),
		FrameRate: 20,
	}
}

func (c Config) clock() game.Clock {
	if c.Clock == nil {
		return game.SystemClock{}
	}
	return c.Clock
}
