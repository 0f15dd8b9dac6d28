// simulation.go

// Package combat 单场对局的战斗模拟：固定步长物理、技能、碰撞与伤害
package combat

import (
	"math"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Simulation 战斗模拟，每场战斗新建一个实例，不复用
type Simulation struct {
	fighters []*Fighter
	index    map[string]int

	projectiles      []*Projectile
	nextProjectileID int64

	// 指令产生、尚未随帧返回的事件
	pending []Event
	ticks   int64
}

// NewSimulation 创建战斗模拟
func NewSimulation() *Simulation {
	return &Simulation{
		index: make(map[string]int),
	}
}

// AddFighter 添加角色，重复的 id 忽略
func (s *Simulation) AddFighter(id string, startX float64, facingRight bool, lo Loadout) {
	if _, exists := s.index[id]; exists {
		return
	}
	s.index[id] = len(s.fighters)
	s.fighters = append(s.fighters, newFighter(id, startX, facingRight, lo))
}

// Fighter 获取角色
func (s *Simulation) Fighter(id string) *Fighter {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.fighters[i]
}

// Fighters 按加入顺序返回所有角色
func (s *Simulation) Fighters() []*Fighter {
	return s.fighters
}

// Projectiles 当前存活的投射物
func (s *Simulation) Projectiles() []*Projectile {
	return s.projectiles
}

// Ticks 已推进的帧数
func (s *Simulation) Ticks() int64 {
	return s.ticks
}

// HandleMove 处理移动指令
func (s *Simulation) HandleMove(id string, targetX, targetY float64) {
	f := s.Fighter(id)
	if f == nil || !f.Alive() {
		return
	}
	if !f.spend(balance.MoveCost) {
		return
	}

	dx := targetX - f.Position.X
	maxSpeed := f.Speed * balance.SpeedToVelocity
	f.Velocity.X = math.Max(-maxSpeed, math.Min(maxSpeed, dx*balance.MoveGain))
	if dx != 0 {
		f.FacingRight = dx > 0
	}

	if targetY < f.Position.Y-balance.JumpThreshold && f.Grounded {
		f.Velocity.Y = balance.JumpVelocity
		f.Grounded = false
	}
}

// HandleAbility 处理技能指令，target 为空时沿朝向释放
func (s *Simulation) HandleAbility(id string, t models.AbilityType, target *models.Vector2D) {
	f := s.Fighter(id)
	if f == nil || !f.Alive() {
		return
	}
	a := f.Ability(t)
	if a == nil || !a.Cooldown().Ready() {
		return
	}
	if !f.spend(balance.AbilityCost(string(t))) {
		return
	}
	a.Cooldown().start()
	a.activate(s, f, target)
}

// ApplyDirectDamage 直接伤害，绕过技能与投射物，仍经过护盾
func (s *Simulation) ApplyDirectDamage(attackerID, targetID string, amount float64) bool {
	attacker := s.Fighter(attackerID)
	target := s.Fighter(targetID)
	if attacker == nil || target == nil || !attacker.Alive() || !target.Alive() {
		return false
	}
	applyDamage(target, amount)
	s.emit(Event{
		Kind:     EventDamage,
		ActorID:  attackerID,
		TargetID: targetID,
		Amount:   amount,
		Position: at(target.Position),
	})
	return true
}

// Tick 推进一帧，返回本帧的事件(包括上一帧之后指令产生的事件)
func (s *Simulation) Tick(dt float64) []Event {
	s.ticks++
	events := s.pending
	s.pending = nil

	for _, f := range s.fighters {
		if !f.Alive() {
			continue
		}
		s.stepFighter(f, dt)
	}

	events = s.stepProjectiles(dt, events)

	for _, f := range s.fighters {
		if !f.Alive() {
			events = append(events, Event{Kind: EventDeath, ActorID: f.ID, Position: at(f.Position)})
		}
	}
	return events
}

// stepFighter 单个角色的物理与状态更新
func (s *Simulation) stepFighter(f *Fighter, dt float64) {
	// 重力：飞行角色上升或悬停时重力减弱
	if !f.Grounded {
		g := balance.Gravity
		if f.CanFly() && f.Velocity.Y <= 0 {
			g *= balance.FlyGravityFactor
		}
		f.Velocity.Y += g * dt
	}

	f.Position.X += f.Velocity.X * dt
	f.Position.Y += f.Velocity.Y * dt

	f.Velocity.X *= balance.Friction

	if f.Position.Y >= balance.GroundY {
		f.Position.Y = balance.GroundY
		f.Velocity.Y = 0
		f.Grounded = true
	}
	if f.Position.Y < balance.CeilingY {
		f.Position.Y = balance.CeilingY
		f.Velocity.Y = 0
	}

	f.Position.X = math.Max(balance.PlayerHalfWidth,
		math.Min(balance.ArenaWidth-balance.PlayerHalfWidth, f.Position.X))

	for _, a := range f.Abilities {
		a.Cooldown().advance(dt)
	}

	if f.Shielding {
		f.ShieldTime -= dt
		if f.ShieldTime <= 0 {
			f.Shielding = false
			f.ShieldTime = 0
			f.ShieldHP = 0
		}
	}

	f.Energy = math.Min(f.MaxEnergy, f.Energy+f.EnergyRegen*dt)

	// 静止时朝向对手
	if math.Abs(f.Velocity.X) < balance.AutoFaceSpeed {
		if opp := s.opponentOf(f); opp != nil && opp.Position.X != f.Position.X {
			f.FacingRight = opp.Position.X > f.Position.X
		}
	}
}

// stepProjectiles 投射物移动、过期与命中检测
func (s *Simulation) stepProjectiles(dt float64, events []Event) []Event {
	hitRange := balance.PlayerHalfWidth + balance.ProjectileRadius

	for _, p := range s.projectiles {
		if !p.Active {
			continue
		}
		p.Position.X += p.Velocity.X * dt
		p.Position.Y += p.Velocity.Y * dt
		p.Age += dt

		if p.Age > balance.ProjectileLifetime || p.outOfBounds() {
			p.Active = false
			continue
		}

		for _, f := range s.fighters {
			if f.ID == p.OwnerID || !f.Alive() {
				continue
			}
			if models.Distance(p.Position, f.Position) > hitRange {
				continue
			}
			applyDamage(f, p.Damage)
			p.Active = false
			events = append(events, Event{
				Kind:     EventDamage,
				ActorID:  p.OwnerID,
				TargetID: f.ID,
				Amount:   p.Damage,
				Position: at(p.Position),
			})
			break
		}
	}

	alive := s.projectiles[:0]
	for _, p := range s.projectiles {
		if p.Active {
			alive = append(alive, p)
		}
	}
	for i := len(alive); i < len(s.projectiles); i++ {
		s.projectiles[i] = nil
	}
	s.projectiles = alive
	return events
}

// WinnerID 胜者判定：仅一人存活返回其 id，无人存活返回平局，否则 ok 为 false
func (s *Simulation) WinnerID() (string, bool) {
	var alive []*Fighter
	for _, f := range s.fighters {
		if f.Alive() {
			alive = append(alive, f)
		}
	}
	switch len(alive) {
	case 0:
		return models.DrawWinner, true
	case 1:
		return alive[0].ID, true
	}
	return "", false
}

// opponentOf 距离最近的存活对手
func (s *Simulation) opponentOf(f *Fighter) *Fighter {
	var best *Fighter
	bestDist := math.Inf(1)
	for _, o := range s.fighters {
		if o == f || !o.Alive() {
			continue
		}
		if d := models.Distance(f.Position, o.Position); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

func (s *Simulation) emit(e Event) {
	s.pending = append(s.pending, e)
}

// applyDamage 护盾先吸收，剩余伤害扣除生命，生命不低于 0
func applyDamage(f *Fighter, amount float64) {
	// NaN 同样被丢弃
	if !(amount > 0) {
		return
	}
	if f.Shielding && f.ShieldHP > 0 {
		blocked := math.Min(amount, f.ShieldHP)
		f.ShieldHP -= blocked
		amount -= blocked
		if f.ShieldHP <= 0 {
			f.ShieldHP = 0
			f.Shielding = false
		}
	}
	f.HP = math.Max(0, f.HP-amount)
}
