package tui

import (
	"github.com/gdamore/tcell/v2"

	"snakearena/game"
	"snakearena/server"
)

const localPlayer server.PlayerID = "local"

// keyInput 把按键翻译成房间输入；snap 用于需要当前状态的开关类按键。
// quit 为真表示退出程序。
func keyInput(ev *tcell.EventKey, snap game.Snapshot) (in server.Input, ok bool, quit bool) {
	in.PlayerID = localPlayer
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return in, false, true
	case tcell.KeyUp:
		return move(game.DirUp), true, false
	case tcell.KeyDown:
		return move(game.DirDown), true, false
	case tcell.KeyLeft:
		return move(game.DirLeft), true, false
	case tcell.KeyRight:
		return move(game.DirRight), true, false
	case tcell.KeyEnter:
		in.Kind = server.InputRestart
		return in, true, false
	case tcell.KeyRune:
	default:
		return in, false, false
	}

	switch r := ev.Rune(); r {
	case 'q', 'Q':
		return in, false, true
	case 'w', 'k':
		return move(game.DirUp), true, false
	case 's', 'j':
		return move(game.DirDown), true, false
	case 'a', 'h':
		return move(game.DirLeft), true, false
	case 'd', 'l':
		return move(game.DirRight), true, false
	case ' ', 'p':
		in.Kind = server.InputPause
	case 'r':
		in.Kind = server.InputRestart
	case 't':
		in.Kind, in.Enabled = server.InputPowerUps, !snap.PowerUpsEnabled
	case 'f':
		in.Kind, in.Skin = server.InputSkin, snap.Skin.Next()
	case '1', '2', '3', '4':
		idx := int(r - '1')
		if idx >= len(game.SpeedPresets) {
			return in, false, false
		}
		in.Kind, in.Interval = server.InputSpeed, game.SpeedPresets[idx]
	default:
		return in, false, false
	}
	return in, true, false
}

func move(d game.Direction) server.Input {
	return server.Input{PlayerID: localPlayer, Kind: server.InputMove, Dir: d}
}

// swipe 鼠标拖动手势：按下记录起点，松开时按主轴位移解析方向
type swipe struct {
	active bool
	x, y   int
}

// mouse 返回一次完整拖动解析出的方向
func (s *swipe) mouse(ev *tcell.EventMouse) (game.Direction, bool) {
	x, y := ev.Position()
	if ev.Buttons()&tcell.Button1 != 0 {
		if !s.active {
			s.active, s.x, s.y = true, x, y
		}
		return game.DirNone, false
	}
	if !s.active {
		return game.DirNone, false
	}
	s.active = false
	// 终端字符约为 1:2，横向位移折半后再比较
	dx := float64(x-s.x) / 2
	dy := float64(y - s.y)
	if dx*dx+dy*dy < 1 {
		return game.DirNone, false
	}
	return game.ResolveSwipe(dx, dy)
}
