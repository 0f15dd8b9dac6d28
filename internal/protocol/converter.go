package protocol

import (
	"github.com/jacl-coder/InkBrawl-Server/internal/combat"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// ApplyFighterConfig 将角色配置写入参与者状态
func ApplyFighterConfig(ps *PlayerState, cfg models.FighterConfig) {
	ps.Name = cfg.Name
	ps.Description = cfg.Description
	ps.MaxHP = cfg.Health.MaxHP
	ps.HP = cfg.Health.MaxHP
	ps.Abilities = make([]AbilityState, 0, len(cfg.Abilities))
	for _, a := range cfg.Abilities {
		ps.Abilities = append(ps.Abilities, AbilityState{
			Type:        a.Type,
			Label:       a.Params.String("label", string(a.Type)),
			CooldownMax: a.Params.Float("cooldown", 0),
		})
	}
}

// CopyFighter 将战斗角色的连续字段写入参与者状态
func CopyFighter(ps *PlayerState, f *combat.Fighter) {
	ps.HP = f.HP
	ps.MaxHP = f.MaxHP
	ps.Energy = f.Energy
	ps.MaxEnergy = f.MaxEnergy
	ps.X = f.Position.X
	ps.Y = f.Position.Y
	ps.VX = f.Velocity.X
	ps.VY = f.Velocity.Y
	ps.FacingRight = f.FacingRight
	ps.Shielding = f.Shielding
	ps.ShieldHP = f.ShieldHP

	ps.Abilities = ps.Abilities[:0]
	for _, a := range f.Abilities {
		cd := a.Cooldown()
		ps.Abilities = append(ps.Abilities, AbilityState{
			Type:        a.Type(),
			Label:       a.Label(),
			Cooldown:    cd.Remaining,
			CooldownMax: cd.Max,
		})
	}
}

// ConvertProjectiles 转换投射物列表
func ConvertProjectiles(ps []*combat.Projectile) []ProjectileState {
	out := make([]ProjectileState, 0, len(ps))
	for _, p := range ps {
		out = append(out, ProjectileState{
			ID:      p.ID,
			OwnerID: p.OwnerID,
			X:       p.Position.X,
			Y:       p.Position.Y,
			VX:      p.Velocity.X,
			VY:      p.Velocity.Y,
		})
	}
	return out
}

// CreateErrorResponse 创建错误消息
func CreateErrorResponse(code, message string) ErrorPayload {
	return ErrorPayload{Code: code, Message: message}
}
