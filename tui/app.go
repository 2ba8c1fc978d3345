package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"snakearena/game"
	"snakearena/server"
)

const (
	boardX   = 1 // 棋盘左上角
	boardY   = 2
	toastFor = 2 * time.Second
)

type palette struct {
	body  [2]tcell.Color
	food  tcell.Color
	bg    tcell.Color
	fruit rune
}

var skins = map[game.Skin]palette{
	game.SkinStrawberry: {body: [2]tcell.Color{tcell.NewHexColor(0xf74d5e), tcell.NewHexColor(0xff7b8a)}, food: tcell.ColorRed, bg: tcell.NewHexColor(0x0f1c2d), fruit: '♥'},
	game.SkinApple:      {body: [2]tcell.Color{tcell.NewHexColor(0x4caf50), tcell.NewHexColor(0x7edc7a)}, food: tcell.ColorGreen, bg: tcell.NewHexColor(0x0d1e13), fruit: '●'},
	game.SkinPineapple:  {body: [2]tcell.Color{tcell.NewHexColor(0xf5c13b), tcell.NewHexColor(0xf19c1a)}, food: tcell.ColorYellow, bg: tcell.NewHexColor(0x0f1d32), fruit: '♣'},
	game.SkinCoconut:    {body: [2]tcell.Color{tcell.NewHexColor(0xe8e1d5), tcell.NewHexColor(0xc7b9a6)}, food: tcell.ColorWhite, bg: tcell.NewHexColor(0x111820), fruit: 'o'},
	game.SkinWatermelon: {body: [2]tcell.Color{tcell.NewHexColor(0x1c6c3c), tcell.NewHexColor(0x2f8a4f)}, food: tcell.ColorRed, bg: tcell.NewHexColor(0xb5333d), fruit: '◗'},
	game.SkinDoner:      {body: [2]tcell.Color{tcell.NewHexColor(0x2ecc71), tcell.NewHexColor(0xe74c3c)}, food: tcell.ColorOrange, bg: tcell.NewHexColor(0x1a1f28), fruit: '¤'},
}

var rainbow = []tcell.Color{
	tcell.NewHexColor(0xff4d6d), tcell.NewHexColor(0xffafcc), tcell.NewHexColor(0xbde0fe),
	tcell.NewHexColor(0xa2d2ff), tcell.NewHexColor(0xcaffbf), tcell.NewHexColor(0xfdffb6),
	tcell.NewHexColor(0xffd6a5),
}

var powerUpRunes = map[game.Kind]rune{
	game.KindRainbow: '≈',
	game.KindBunny:   'B',
	game.KindTurtle:  'T',
	game.KindStar:    '★',
}

// Room 终端前端需要的房间能力
type Room interface {
	OnInput(in server.Input)
	Snapshot() game.Snapshot
	JoinPlayer(id server.PlayerID, v server.Viewer) error
	RequestLeave(id server.PlayerID, v server.Viewer)
}

// App 终端前端：作为房间的 Viewer 渲染每一帧，主 goroutine 读取按键/鼠标
type App struct {
	screen tcell.Screen
	room   Room
	sound  *Sound

	// toast 只在房间 goroutine（Frame/Event）中访问，swipe 只在 Run 中访问
	toast      string
	toastUntil time.Time
	swipe      swipe
}

// New 绑定屏幕、房间与音效（sound 可为 nil）
func New(screen tcell.Screen, room Room, sound *Sound) *App {
	return &App{screen: screen, room: room, sound: sound}
}

// Run 加入房间并处理输入，直到用户退出
func (a *App) Run() error {
	a.screen.EnableMouse()
	a.screen.HideCursor()
	if err := a.room.JoinPlayer(localPlayer, a); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	defer a.room.RequestLeave(localPlayer, a)

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if !a.handleEvent(ev) {
			return nil
		}
	}
}

// handleEvent 返回 false 表示退出
func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		in, ok, quit := keyInput(ev, a.room.Snapshot())
		if quit {
			return false
		}
		if ok {
			a.room.OnInput(in)
		}
	case *tcell.EventMouse:
		if dir, ok := a.swipe.mouse(ev); ok {
			a.room.OnInput(move(dir))
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

// Event 音效与提示
func (a *App) Event(e server.Event) {
	switch e.Type {
	case server.EventEat:
		a.sound.Play(CueEat)
	case server.EventPowerUp:
		a.sound.Play(CuePowerUp)
		a.showToast(fmt.Sprintf("%s!", e.Kind))
	case server.EventCollect:
		a.sound.Play(CueCollect)
	case server.EventDeath:
		a.sound.Play(CueDeath)
	case server.EventHighScore:
		a.sound.Play(CueHighScore)
		a.showToast("NEW HIGH SCORE")
	case server.EventRestart:
		a.toast = ""
	}
}

func (a *App) showToast(msg string) {
	a.toast = msg
	a.toastUntil = time.Now().Add(toastFor)
}

// Close 终端前端随进程退出，这里无需释放
func (a *App) Close() {}

// Frame 绘制一帧
func (a *App) Frame(f game.Frame) {
	a.draw(f)
	a.screen.Show()
}

func (a *App) draw(f game.Frame) {
	s := a.screen
	snap := f.Snapshot
	pal, ok := skins[snap.Skin]
	if !ok {
		pal = skins[game.SkinPineapple]
	}
	s.Clear()

	bg := tcell.StyleDefault.Background(pal.bg)
	shade := tcell.StyleDefault.Background(shadeColor(pal.bg))
	for y := 0; y < snap.Rows; y++ {
		for x := 0; x < snap.Cols; x++ {
			st := bg
			if (x+y)%2 == 1 {
				st = shade
			}
			a.cell(game.Cell{X: x, Y: y}, ' ', st)
		}
	}
	a.drawBorder(snap.Cols, snap.Rows)

	if snap.Food != nil {
		a.cell(*snap.Food, pal.fruit, bg.Foreground(pal.food))
	}
	if snap.PowerUp != nil && snap.PowerUpsEnabled {
		a.cell(snap.PowerUp.Position, powerUpRunes[snap.PowerUp.Kind], bg.Foreground(tcell.ColorWhite).Bold(true))
	}
	if snap.Flag != nil {
		a.cell(*snap.Flag, '⚑', bg.Foreground(tcell.ColorOrange))
	}
	if snap.Bonus != nil {
		a.cell(*snap.Bonus, '☺', bg.Foreground(tcell.ColorWhite))
	}

	a.drawSnake(f, pal)
	a.drawStatus(f)
}

func (a *App) drawSnake(f game.Frame, pal palette) {
	snap := f.Snapshot
	rainbowOn := f.Rainbow()
	glow := f.Glow()
	thick := f.Thickness() > 1
	phase := int(f.At.UnixMilli() / 200)

	// 尾到头绘制，头部最后画在最上层
	for i := len(f.Segments) - 1; i >= 0; i-- {
		seg := f.Segments[i]
		if i == 0 {
			w := f.Wobble()
			seg = game.Vec{X: seg.X + w.X, Y: seg.Y + w.Y}
		}
		color := pal.body[i%2]
		if rainbowOn {
			color = rainbow[(i+phase)%len(rainbow)]
		}
		st := tcell.StyleDefault.Background(pal.bg).Foreground(color).Bold(glow)
		r := '▓'
		if thick {
			r = '█'
		}
		if i == 0 {
			r = headRune(snap)
			st = st.Bold(true)
		}
		a.vec(seg, r, st)
	}
}

func headRune(snap game.Snapshot) rune {
	if snap.Death != nil {
		return 'x'
	}
	switch snap.Direction {
	case game.DirUp:
		return '▲'
	case game.DirDown:
		return '▼'
	case game.DirLeft:
		return '◀'
	}
	return '▶'
}

func (a *App) drawStatus(f game.Frame) {
	snap := f.Snapshot
	pu := "on"
	if !snap.PowerUpsEnabled {
		pu = "off"
	}
	line := fmt.Sprintf(" score %d  best %d  x%d  %s  %dms  power-ups %s  skin %s",
		snap.Score, snap.Best, snap.ScoreMult, snap.State, snap.Interval.Milliseconds(), pu, snap.Skin)
	a.text(0, 0, line, tcell.StyleDefault.Bold(true))

	var effects []string
	for _, e := range snap.Effects {
		left := e.ExpiresAt.Sub(f.At)
		if left <= 0 {
			continue
		}
		effects = append(effects, fmt.Sprintf("%s %.1fs", e.Category, left.Seconds()))
	}
	a.text(0, 1, " "+strings.Join(effects, "  "), tcell.StyleDefault.Foreground(tcell.ColorAqua))

	bottom := boardY + snap.Rows + 1
	switch snap.State {
	case game.StateIdle:
		a.text(0, bottom, " arrows/WASD to start · space pause · r restart · t power-ups · 1-4 speed · f skin · q quit", tcell.StyleDefault)
	case game.StatePaused:
		a.text(0, bottom, " PAUSED", tcell.StyleDefault.Foreground(tcell.ColorYellow))
	case game.StateOver:
		reason := game.DeathNone
		if snap.Death != nil {
			reason = snap.Death.Reason
		}
		a.text(0, bottom, fmt.Sprintf(" GAME OVER (%s) · r to restart", reason), tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
	}
	if a.toast != "" && time.Now().Before(a.toastUntil) {
		a.text(0, bottom+1, " "+a.toast, tcell.StyleDefault.Foreground(tcell.ColorGold).Bold(true))
	}
}

func (a *App) drawBorder(cols, rows int) {
	st := tcell.StyleDefault.Foreground(tcell.ColorGray)
	right := boardX + cols*2
	bottom := boardY + rows
	for x := boardX; x < right; x++ {
		a.screen.SetContent(x, boardY-1, '─', nil, st)
		a.screen.SetContent(x, bottom, '─', nil, st)
	}
	for y := boardY; y < bottom; y++ {
		a.screen.SetContent(boardX-1, y, '│', nil, st)
		a.screen.SetContent(right, y, '│', nil, st)
	}
	a.screen.SetContent(boardX-1, boardY-1, '┌', nil, st)
	a.screen.SetContent(right, boardY-1, '┐', nil, st)
	a.screen.SetContent(boardX-1, bottom, '└', nil, st)
	a.screen.SetContent(right, bottom, '┘', nil, st)
}

// cell 一个网格格子占两个终端列
func (a *App) cell(c game.Cell, r rune, st tcell.Style) {
	x := boardX + c.X*2
	y := boardY + c.Y
	a.screen.SetContent(x, y, r, nil, st)
	a.screen.SetContent(x+1, y, ' ', nil, st)
}

// vec 插值坐标：横向按半格取整，纵向按整格取整
func (a *App) vec(v game.Vec, r rune, st tcell.Style) {
	x := boardX + int(math.Round(v.X*2))
	y := boardY + int(math.Round(v.Y))
	a.screen.SetContent(x, y, r, nil, st)
	a.screen.SetContent(x+1, y, r, nil, st)
}

func (a *App) text(x, y int, s string, st tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, st)
		x++
	}
}

// shadeColor 背景棋盘格的浅色格
func shadeColor(c tcell.Color) tcell.Color {
	r, g, b := c.RGB()
	lift := func(v int32) int32 { return min(v+56, 255) }
	return tcell.NewRGBColor(lift(r), lift(g), lift(b))
}
