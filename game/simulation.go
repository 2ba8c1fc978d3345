package game

import (
	"math"
	"math/rand/v2"
	"time"
)

// Options 注入的外部依赖；零值字段使用默认实现
type Options struct {
	Clock    Clock
	Rand     Rand
	Store    BestStore
	Notifier Notifier
	Registry *Registry
}

// Outcome 一次 Tick 的结果，供调度层（计时器、音效、广播）使用
type Outcome struct {
	Advanced bool // 本次 Tick 实际推进了
	Ate      bool
	Spawned  Kind // 本次刷出的道具
	PowerUp  Kind // 本次吃到的道具
	Flag     bool
	Bonus    bool
	Expired  []Category

	Death      DeathReason
	DeathAfter time.Duration // 多久后应调用 CompleteDeath
	Epoch      uint64

	IntervalChanged bool
	NewBest         bool
}

// Simulation 权威的单局状态。只由 Tick 与输入操作修改，
// 不做任何阻塞，调用方负责串行化（单 goroutine 持有）。
type Simulation struct {
	rules    Rules
	grid     Grid
	clock    Clock
	rng      Rand
	store    BestStore
	notifier Notifier
	registry *Registry
	place    *Placement

	state   State
	body    []Cell
	prev    []Cell
	dir     Direction
	pending Direction

	food         *Cell
	powerUp      *PowerUp
	flag         *Cell
	flagExpires  time.Time
	bonus        *Cell
	bonusExpires time.Time
	effects      effectList

	score     int
	best      int
	scoreMult int

	baseInterval time.Duration
	interval     time.Duration

	skin            Skin
	powerUpsEnabled bool

	death  *Death
	epoch  uint64
	ticks  uint64
	tickAt time.Time
}

// New 校验规则、注入依赖并完成第一次 Init
func New(rules Rules, opts Options) (*Simulation, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	if opts.Store == nil {
		opts.Store = &MemoryStore{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func() {})
	}
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	grid := Grid{Cols: rules.Cols, Rows: rules.Rows}
	s := &Simulation{
		rules:           rules,
		grid:            grid,
		clock:           opts.Clock,
		rng:             opts.Rand,
		store:           opts.Store,
		notifier:        opts.Notifier,
		registry:        opts.Registry,
		place:           NewPlacement(grid, opts.Rand),
		baseInterval:    rules.BaseInterval,
		skin:            rules.Skin,
		powerUpsEnabled: rules.PowerUpsEnabled,
	}
	s.Init()
	return s, nil
}

func (s *Simulation) mustInit() {
	if s == nil || s.grid.Cols == 0 || s.clock == nil {
		panic(ErrNotInitialized)
	}
}

// Init 重置整局：两节蛇身居中、朝右、零分、清空效果与道具、放置食物、进入 idle。
// epoch 自增，使尚未触发的死亡完成回调失效。
func (s *Simulation) Init() {
	s.mustInit()
	c := s.grid.Center()
	s.body = []Cell{c, {X: c.X - 1, Y: c.Y}}
	s.prev = cloneCells(s.body)
	s.dir = DirRight
	s.pending = DirNone
	s.score = 0
	s.scoreMult = 1
	s.effects = nil
	s.powerUp = nil
	s.flag, s.flagExpires = nil, time.Time{}
	s.bonus, s.bonusExpires = nil, time.Time{}
	s.death = nil
	s.interval = s.baseInterval
	s.state = StateIdle
	s.epoch++
	s.ticks = 0
	s.tickAt = time.Time{}
	s.best = max(s.store.Best(), 0)
	s.placeFood()
}

// Restart 等价于 Init
func (s *Simulation) Restart() {
	s.Init()
}

// SubmitDirection 缓存下一次 Tick 的方向。与当前方向相反时拒绝；
// 两次 Tick 之间以最后一个有效请求为准。idle 下第一次被接受即开局，
// paused 下被接受则恢复运行。被拒绝的反向输入不会开局也不会恢复暂停，
// 这一点与只要按方向键就继续的网页键盘处理不同。
func (s *Simulation) SubmitDirection(d Direction) bool {
	s.mustInit()
	if d.Delta() == (Cell{}) || !s.state.Alive() {
		return false
	}
	if d == s.dir.Opposite() {
		return false
	}
	s.pending = d
	switch s.state {
	case StateIdle, StatePaused:
		s.state = StateRunning
	}
	return true
}

// Tick 推进一步；非 running 状态下为空操作
func (s *Simulation) Tick() Outcome {
	s.mustInit()
	var out Outcome
	if s.state != StateRunning {
		return out
	}
	now := s.clock.Now()
	before := s.interval

	out.Expired = s.effects.sweep(now, s)
	s.expireSpawns(now)

	if s.pending != DirNone {
		s.dir = s.pending
		s.pending = DirNone
	}
	s.prev = cloneCells(s.body)
	s.tickAt = now
	s.ticks++
	out.Advanced = true

	delta := s.dir.Delta()
	head := s.body[0].Add(delta)

	if !s.grid.Contains(head) {
		clamped := s.grid.Clamp(head)
		s.advance(clamped, false)
		s.die(DeathWall, clamped, delta, s.rules.wallDeathDuration(), now, &out)
		s.finishTick(before, &out)
		return out
	}

	grow := s.food != nil && head == *s.food
	// 不增长时尾巴这一格会空出来，不算碰撞
	check := s.body
	if !grow {
		check = s.body[:len(s.body)-1]
	}
	if containsCell(check, head) {
		s.advance(head, false)
		s.die(DeathSelf, head, Cell{}, s.rules.DeathDuration, now, &out)
		s.finishTick(before, &out)
		return out
	}

	s.advance(head, grow)
	if grow {
		out.Ate = true
		s.score += s.rules.FoodPoints * s.scoreMult
		s.placeFood()
		out.Spawned = s.maybeSpawn(now)
	}

	if s.powerUpsEnabled && s.powerUp != nil && head == s.powerUp.Position {
		out.PowerUp = s.powerUp.Kind
		s.applyPowerUp(s.powerUp.Kind, now)
		s.powerUp = nil
	}
	if s.flag != nil && head == *s.flag {
		out.Flag = true
		s.score += s.rules.FlagPoints
		s.effects.put(effect{EffectState: EffectState{Category: CategoryGlow, ExpiresAt: now.Add(s.rules.GlowDuration)}})
		s.flag, s.flagExpires = nil, time.Time{}
	}
	if s.skin.HasBonusEntities() && s.bonus != nil && head == *s.bonus {
		out.Bonus = true
		s.score += s.rules.BonusPoints
		s.effects.put(effect{EffectState: EffectState{Category: CategoryThickness, ExpiresAt: now.Add(s.rules.BonusDuration)}})
		s.bonus, s.bonusExpires = nil, time.Time{}
	}

	s.finishTick(before, &out)
	return out
}

// advance 头部前进一格；不增长时去掉尾巴，长度不变
func (s *Simulation) advance(head Cell, grow bool) {
	body := make([]Cell, 0, len(s.body)+1)
	body = append(body, head)
	if grow {
		body = append(body, s.body...)
	} else {
		body = append(body, s.body[:len(s.body)-1]...)
	}
	s.body = body
}

func (s *Simulation) die(reason DeathReason, head, impact Cell, after time.Duration, now time.Time, out *Outcome) {
	s.state = StateDying
	s.pending = DirNone
	s.death = &Death{Reason: reason, Head: head, Impact: impact, Until: now.Add(after)}
	out.Death = reason
	out.DeathAfter = after
	out.Epoch = s.epoch
}

// finishTick 一次 Tick 内至多通知一次新纪录。存储可能被共享（多个房间），
// 因此以存储里的值为准，只在超过它时写入。
func (s *Simulation) finishTick(before time.Duration, out *Outcome) {
	out.IntervalChanged = s.interval != before
	s.best = max(s.best, s.store.Best())
	if s.score > s.best {
		s.best = s.score
		s.store.SetBest(s.best)
		s.notifier.NotifyNewHighScore()
		out.NewBest = true
	}
}

// CompleteDeath dying → over；epoch 已过期（中途 Restart 过）时忽略
func (s *Simulation) CompleteDeath(epoch uint64) bool {
	s.mustInit()
	if s.state != StateDying || epoch != s.epoch {
		return false
	}
	s.state = StateOver
	return true
}

// SetPaused running ↔ paused；其余状态下为空操作
func (s *Simulation) SetPaused(paused bool) bool {
	s.mustInit()
	switch {
	case paused && s.state == StateRunning:
		s.state = StatePaused
	case !paused && s.state == StatePaused:
		s.state = StateRunning
	default:
		return false
	}
	return true
}

// TogglePause 切换暂停
func (s *Simulation) TogglePause() bool {
	s.mustInit()
	return s.SetPaused(s.state == StateRunning)
}

// SetBaseInterval 速度选择：新的基础间隔立即作为当前间隔，正在生效的速度道具作废
func (s *Simulation) SetBaseInterval(d time.Duration) bool {
	s.mustInit()
	if d <= 0 {
		return false
	}
	s.effects.remove(CategorySpeed, s, false)
	s.baseInterval = d
	s.interval = d
	return true
}

// SetPowerUpsEnabled 关闭时清空道具与其全部效果，恢复基础速度，之后不再刷新
func (s *Simulation) SetPowerUpsEnabled(on bool) {
	s.mustInit()
	s.powerUpsEnabled = on
	if on {
		return
	}
	s.powerUp = nil
	for _, c := range []Category{CategoryCosmetic, CategorySpeed, CategoryScore} {
		s.effects.remove(c, s, true)
	}
	s.scoreMult = 1
	s.interval = s.baseInterval
}

// SetSkin 切换皮肤；离开 doner 时移除奖励角色及其加粗效果
func (s *Simulation) SetSkin(skin Skin) bool {
	s.mustInit()
	if _, ok := ParseSkin(string(skin)); !ok {
		return false
	}
	s.skin = skin
	if !skin.HasBonusEntities() {
		s.bonus, s.bonusExpires = nil, time.Time{}
		s.effects.remove(CategoryThickness, s, false)
	}
	return true
}

func (s *Simulation) applyPowerUp(k Kind, now time.Time) {
	def, ok := s.registry.Lookup(k)
	if !ok {
		return
	}
	st := EffectState{Category: def.Category, Kind: k, ExpiresAt: now.Add(def.Duration)}
	switch def.Category {
	case CategorySpeed:
		s.interval = s.scaledInterval(def.SpeedFactor)
		s.effects.put(effect{EffectState: st, revert: func(s *Simulation) { s.interval = s.baseInterval }})
	case CategoryScore:
		s.scoreMult = def.ScoreMult
		s.effects.put(effect{EffectState: st, revert: func(s *Simulation) { s.scoreMult = 1 }})
	default:
		s.effects.put(effect{EffectState: st})
	}
}

// scaledInterval base × factor，按毫秒取整并受下限约束
func (s *Simulation) scaledInterval(factor float64) time.Duration {
	ms := math.Round(float64(s.baseInterval.Milliseconds()) * factor)
	return max(time.Duration(ms)*time.Millisecond, s.rules.MinInterval)
}

func (s *Simulation) placeFood() {
	if c, ok := s.place.Pick(Occupy(s.body)); ok {
		s.food = &c
		return
	}
	s.food = nil
}

// maybeSpawn 吃到食物后的机会性刷新
func (s *Simulation) maybeSpawn(now time.Time) Kind {
	spawned := KindNone
	if s.powerUpsEnabled && s.powerUp == nil && s.registry.Len() > 0 && s.place.Roll(s.rules.PowerUpChance) {
		if c, ok := s.place.Pick(Occupy(s.body, s.food)); ok {
			def := s.registry.Random(s.rng)
			s.powerUp = &PowerUp{Position: c, Kind: def.Kind, SpawnedAt: now, ExpiresAt: s.spawnExpiry(now)}
			spawned = def.Kind
		}
	}
	if !s.skin.HasBonusEntities() {
		return spawned
	}
	var pu *Cell
	if s.powerUp != nil {
		p := s.powerUp.Position
		pu = &p
	}
	cands := s.place.Candidates(Occupy(s.body, s.food, pu, s.flag, s.bonus))
	if s.flag == nil && len(cands) > 0 && s.place.Roll(s.rules.FlagChance) {
		c, _ := s.place.PickFrom(cands)
		s.flag, s.flagExpires = &c, s.spawnExpiry(now)
	}
	if s.bonus == nil && len(cands) > 0 && s.place.Roll(s.rules.BonusChance) {
		if c, ok := s.place.PickFrom(without(cands, s.flag)); ok {
			s.bonus, s.bonusExpires = &c, s.spawnExpiry(now)
		}
	}
	return spawned
}

func (s *Simulation) spawnExpiry(now time.Time) time.Time {
	if s.rules.SpawnLifetime <= 0 {
		return time.Time{}
	}
	return now.Add(s.rules.SpawnLifetime)
}

// expireSpawns 移除超过存在时长的道具与收集物
func (s *Simulation) expireSpawns(now time.Time) {
	due := func(t time.Time) bool { return !t.IsZero() && !now.Before(t) }
	if s.powerUp != nil && due(s.powerUp.ExpiresAt) {
		s.powerUp = nil
	}
	if s.flag != nil && due(s.flagExpires) {
		s.flag, s.flagExpires = nil, time.Time{}
	}
	if s.bonus != nil && due(s.bonusExpires) {
		s.bonus, s.bonusExpires = nil, time.Time{}
	}
}

func (s *Simulation) State() State                { s.mustInit(); return s.state }
func (s *Simulation) Score() int                  { s.mustInit(); return s.score }
func (s *Simulation) Best() int                   { s.mustInit(); return s.best }
func (s *Simulation) ScoreMultiplier() int        { s.mustInit(); return s.scoreMult }
func (s *Simulation) Interval() time.Duration     { s.mustInit(); return s.interval }
func (s *Simulation) BaseInterval() time.Duration { s.mustInit(); return s.baseInterval }
func (s *Simulation) Direction() Direction        { s.mustInit(); return s.dir }
func (s *Simulation) Pending() Direction          { s.mustInit(); return s.pending }
func (s *Simulation) Epoch() uint64               { s.mustInit(); return s.epoch }
func (s *Simulation) Skin() Skin                  { s.mustInit(); return s.skin }
func (s *Simulation) PowerUpsEnabled() bool       { s.mustInit(); return s.powerUpsEnabled }
func (s *Simulation) Grid() Grid                  { s.mustInit(); return s.grid }
func (s *Simulation) Rules() Rules                { s.mustInit(); return s.rules }

// Body 蛇身副本，头在下标 0
func (s *Simulation) Body() []Cell {
	s.mustInit()
	return cloneCells(s.body)
}

// Food 当前食物；网格占满时不存在
func (s *Simulation) Food() (Cell, bool) {
	s.mustInit()
	if s.food == nil {
		return Cell{}, false
	}
	return *s.food, true
}

// ActivePowerUp 地图上的道具
func (s *Simulation) ActivePowerUp() (PowerUp, bool) {
	s.mustInit()
	if s.powerUp == nil {
		return PowerUp{}, false
	}
	return *s.powerUp, true
}

// Effect 某类别当前的效果
func (s *Simulation) Effect(c Category) (EffectState, bool) {
	s.mustInit()
	return s.effects.find(c)
}

func cloneCells(cells []Cell) []Cell {
	if cells == nil {
		return nil
	}
	return append(make([]Cell, 0, len(cells)), cells...)
}
