// ability.go

package combat

import (
	"math"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Ability 技能实例，每种技能类型一个实现
type Ability interface {
	Type() models.AbilityType
	Label() string
	Cooldown() *Cooldown
	// activate 冷却与墨水已经结算，只负责技能效果
	activate(s *Simulation, f *Fighter, target *models.Vector2D)
}

// Cooldown 技能冷却
type Cooldown struct {
	Remaining float64
	Max       float64
}

// Ready 是否可以释放
func (c *Cooldown) Ready() bool {
	return c.Remaining <= 0
}

func (c *Cooldown) start() {
	c.Remaining = c.Max
}

func (c *Cooldown) advance(dt float64) {
	if c.Remaining <= 0 {
		return
	}
	c.Remaining -= dt
	if c.Remaining < balance.CooldownEpsilon {
		c.Remaining = 0
	}
}

type abilityBase struct {
	kind  models.AbilityType
	label string
	cd    Cooldown
}

func (b *abilityBase) Type() models.AbilityType { return b.kind }
func (b *abilityBase) Label() string            { return b.label }
func (b *abilityBase) Cooldown() *Cooldown      { return &b.cd }

// RangedAttack 远程攻击，生成投射物
type RangedAttack struct {
	abilityBase
	Damage float64
	Speed  float64
}

func (a *RangedAttack) activate(s *Simulation, f *Fighter, target *models.Vector2D) {
	speed := a.Speed * balance.ProjectileSpeedScale
	vel := models.Vector2D{X: f.facingSign() * speed}
	if target != nil {
		if dir := target.Sub(f.Position).Normalize(); dir.Len() > 0 {
			vel = models.Vector2D{X: dir.X * speed, Y: dir.Y * speed}
		}
	}

	s.nextProjectileID++
	p := &Projectile{
		ID:      s.nextProjectileID,
		OwnerID: f.ID,
		Position: models.Vector2D{
			X: f.Position.X + f.facingSign()*balance.ProjectileSpawnOffset,
			Y: f.Position.Y,
		},
		Velocity: vel,
		Damage:   a.Damage,
		Active:   true,
	}
	s.projectiles = append(s.projectiles, p)
	s.emit(Event{Kind: EventRangedAttack, ActorID: f.ID, Position: at(p.Position)})
}

// Melee 近战，范围内立即结算，范围外空挥
type Melee struct {
	abilityBase
	Damage float64
	Range  float64
}

func (a *Melee) activate(s *Simulation, f *Fighter, _ *models.Vector2D) {
	opp := s.opponentOf(f)
	if opp == nil {
		return
	}
	if models.Distance(f.Position, opp.Position) > a.Range+balance.PlayerHalfWidth {
		return
	}
	applyDamage(opp, a.Damage)
	s.emit(Event{
		Kind:     EventMeleeHit,
		ActorID:  f.ID,
		TargetID: opp.ID,
		Amount:   a.Damage,
		Position: at(opp.Position),
	})
}

// Shield 护盾，持续期间优先吸收伤害
type Shield struct {
	abilityBase
	Block    float64
	Duration float64
}

func (a *Shield) activate(s *Simulation, f *Fighter, _ *models.Vector2D) {
	f.Shielding = true
	f.ShieldHP = a.Block
	f.ShieldTime = a.Duration
	s.emit(Event{Kind: EventShield, ActorID: f.ID, Amount: a.Block, Position: at(f.Position)})
}

// Dash 冲刺，设置瞬时水平速度，由物理积分位移
type Dash struct {
	abilityBase
	Distance float64
}

func (a *Dash) activate(_ *Simulation, f *Fighter, target *models.Vector2D) {
	dir := f.facingSign()
	if target != nil {
		if dx := target.X - f.Position.X; dx != 0 {
			dir = math.Copysign(1, dx)
		}
	}
	f.Velocity.X = dir * a.Distance * balance.DashScale
}

// Fly 飞行，向上冲量，上升时重力减弱
type Fly struct {
	abilityBase
	Speed float64
}

func (a *Fly) activate(_ *Simulation, f *Fighter, _ *models.Vector2D) {
	f.Velocity.Y = -(a.Speed * balance.FlyScale)
	f.Grounded = false
}

// NewAbility 根据配置创建技能实例，未知类型返回 nil
func NewAbility(cfg models.AbilityConfig) Ability {
	p := cfg.Params
	num := func(key string) float64 {
		r, _ := balance.AbilityParamRange(string(cfg.Type), key)
		return p.Float(key, r.Default)
	}
	base := abilityBase{
		kind:  cfg.Type,
		label: p.String("label", string(cfg.Type)),
		cd:    Cooldown{Max: math.Max(0, num("cooldown"))},
	}

	switch cfg.Type {
	case models.AbilityRangedAttack:
		return &RangedAttack{abilityBase: base, Damage: num("damage"), Speed: num("speed")}
	case models.AbilityMelee:
		return &Melee{abilityBase: base, Damage: num("damage"), Range: num("range")}
	case models.AbilityShield:
		return &Shield{abilityBase: base, Block: num("block"), Duration: num("duration")}
	case models.AbilityDash:
		return &Dash{abilityBase: base, Distance: num("distance")}
	case models.AbilityFly:
		return &Fly{abilityBase: base, Speed: num("speed")}
	}
	return nil
}
