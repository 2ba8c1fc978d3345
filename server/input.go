package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"snakearena/game"
)

// ErrUnknownInput 无法识别的入站消息
var ErrUnknownInput = errors.New("unknown input")

// InputKind 输入类别
type InputKind int

const (
	InputMove InputKind = iota
	InputPause
	InputRestart
	InputSpeed
	InputPowerUps
	InputSkin
)

// Input 客户端输入（意图），由房间 goroutine 在下一次 select 中解释
type Input struct {
	PlayerID PlayerID
	Kind     InputKind
	Dir      game.Direction
	Interval time.Duration
	Enabled  bool
	Skin     game.Skin
	Seq      int64 // 客户端本地递增序列号，房间丢弃不大于已处理值的输入；0 表示不编号
}

// 入站输入的简单 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"move","command":"up"}
//
//	{"type":"swipe","dx":-40,"dy":3}
//	{"type":"pause"} {"type":"restart"}
//	{"type":"speed","ms":100}
//	{"type":"powerups","enabled":false}
//	{"type":"skin","skin":"doner"}
type InputMessage struct {
	Type    string  `json:"type"`
	Command string  `json:"command,omitempty"`
	DX      float64 `json:"dx,omitempty"`
	DY      float64 `json:"dy,omitempty"`
	Ms      int     `json:"ms,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
	Skin    string  `json:"skin,omitempty"`
	Seq     int64   `json:"seq,omitempty"`
}

// ParseInput 将一条文本消息解释为 Input
func ParseInput(pid PlayerID, payload []byte) (Input, error) {
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	in := Input{PlayerID: pid, Seq: im.Seq}
	switch strings.ToLower(im.Type) {
	case "move":
		dir, ok := game.ParseDirection(im.Command)
		if !ok {
			return Input{}, fmt.Errorf("%w: direction %q", ErrUnknownInput, im.Command)
		}
		in.Kind, in.Dir = InputMove, dir
	case "swipe":
		dir, ok := game.ResolveSwipe(im.DX, im.DY)
		if !ok {
			return Input{}, fmt.Errorf("%w: empty swipe", ErrUnknownInput)
		}
		in.Kind, in.Dir = InputMove, dir
	case "pause":
		in.Kind = InputPause
	case "restart":
		in.Kind = InputRestart
	case "speed":
		if im.Ms <= 0 {
			return Input{}, fmt.Errorf("%w: speed %dms", ErrUnknownInput, im.Ms)
		}
		in.Kind, in.Interval = InputSpeed, time.Duration(im.Ms)*time.Millisecond
	case "powerups":
		if im.Enabled == nil {
			return Input{}, fmt.Errorf("%w: powerups without enabled", ErrUnknownInput)
		}
		in.Kind, in.Enabled = InputPowerUps, *im.Enabled
	case "skin":
		skin, ok := game.ParseSkin(im.Skin)
		if !ok {
			return Input{}, fmt.Errorf("%w: skin %q", ErrUnknownInput, im.Skin)
		}
		in.Kind, in.Skin = InputSkin, skin
	default:
		return Input{}, fmt.Errorf("%w: type %q", ErrUnknownInput, im.Type)
	}
	return in, nil
}
