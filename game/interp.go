package game

import (
	"math"
	"time"
)

// Vec 以格为单位的连续坐标
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Lerp 线性插值
func Lerp(a, b Vec, t float64) Vec {
	return Vec{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func (c Cell) Vec() Vec {
	return Vec{X: float64(c.X), Y: float64(c.Y)}
}

// Frame 一帧的渲染输入：快照 + 插值后的每节位置
type Frame struct {
	Snapshot Snapshot
	At       time.Time
	Factor   float64
	Segments []Vec
}

// Factor 当前 Tick 间隔内已过去的比例，clamp 到 [0,1]。
// idle 或尚未 Tick 过时固定为 1（静止显示）。
func Factor(s Snapshot, now time.Time) float64 {
	if s.State == StateIdle || s.TickAt.IsZero() || s.Interval <= 0 {
		return 1
	}
	return clamp01(float64(now.Sub(s.TickAt)) / float64(s.Interval))
}

// Interpolate 每一帧调用：第 i 节从 PrevBody[i] 插值到 Body[i]；
// 新长出的一节没有上一位置，直接放在当前格。
func Interpolate(s Snapshot, now time.Time) Frame {
	t := Factor(s, now)
	segs := make([]Vec, len(s.Body))
	for i, cur := range s.Body {
		if i >= len(s.PrevBody) {
			segs[i] = cur.Vec()
			continue
		}
		segs[i] = Lerp(s.PrevBody[i].Vec(), cur.Vec(), t)
	}
	return Frame{Snapshot: s, At: now, Factor: t, Segments: segs}
}

// Rainbow 彩虹外观是否生效
func (f Frame) Rainbow() bool {
	return f.Snapshot.PowerUpsEnabled && f.Snapshot.EffectActiveAt(CategoryCosmetic, f.At)
}

// Glow 旗帜发光是否生效
func (f Frame) Glow() bool {
	return f.Snapshot.EffectActiveAt(CategoryGlow, f.At)
}

// Thickness 蛇身粗细倍数
func (f Frame) Thickness() float64 {
	if f.Snapshot.Skin.HasBonusEntities() && f.Snapshot.EffectActiveAt(CategoryThickness, f.At) && f.Snapshot.ThicknessBoost > 0 {
		return f.Snapshot.ThicknessBoost
	}
	return 1
}

// Wobble 撞墙死亡时头部的抖动偏移（格），方向垂直于撞击方向
func (f Frame) Wobble() Vec {
	d := f.Snapshot.Death
	if d == nil || d.Reason != DeathWall {
		return Vec{}
	}
	ms := float64(f.At.Sub(f.Snapshot.TickAt).Milliseconds())
	w := math.Sin(ms/50) * 0.2
	return Vec{X: w * float64(d.Impact.Y), Y: -w * float64(d.Impact.X)}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
