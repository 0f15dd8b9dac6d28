// fighter.go

package combat

import (
	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Loadout 创建战斗角色所需的已校验配置
type Loadout struct {
	Name        string
	MaxHP       float64
	Speed       float64
	Abilities   []models.AbilityConfig
	EnergyMax   float64
	EnergyRegen float64
}

// LoadoutFrom 从角色配置生成战斗配置，能量参数为零时使用默认值
func LoadoutFrom(cfg models.FighterConfig, energyMax, energyRegen float64) Loadout {
	if energyMax <= 0 {
		energyMax = balance.DefaultBattleEnergyMax
	}
	if energyRegen < 0 {
		energyRegen = balance.DefaultBattleEnergyRegen
	}
	return Loadout{
		Name:        cfg.Name,
		MaxHP:       cfg.Health.MaxHP,
		Speed:       cfg.Movement.Speed,
		Abilities:   cfg.Abilities,
		EnergyMax:   energyMax,
		EnergyRegen: energyRegen,
	}
}

// Fighter 战斗角色
type Fighter struct {
	ID   string
	Name string

	// 运动状态
	Position    models.Vector2D
	Velocity    models.Vector2D
	FacingRight bool
	Grounded    bool

	// 生命与墨水
	HP          float64
	MaxHP       float64
	Energy      float64
	MaxEnergy   float64
	EnergyRegen float64

	// 护盾
	Shielding  bool
	ShieldHP   float64
	ShieldTime float64

	Abilities []Ability
	Speed     float64
}

func newFighter(id string, startX float64, facingRight bool, lo Loadout) *Fighter {
	f := &Fighter{
		ID:          id,
		Name:        lo.Name,
		Position:    models.Vector2D{X: startX, Y: balance.GroundY},
		FacingRight: facingRight,
		Grounded:    true,
		HP:          lo.MaxHP,
		MaxHP:       lo.MaxHP,
		Energy:      lo.EnergyMax,
		MaxEnergy:   lo.EnergyMax,
		EnergyRegen: lo.EnergyRegen,
		Speed:       lo.Speed,
		Abilities:   make([]Ability, 0, len(lo.Abilities)),
	}
	for _, cfg := range lo.Abilities {
		if a := NewAbility(cfg); a != nil {
			f.Abilities = append(f.Abilities, a)
		}
	}
	return f
}

// Alive 是否存活
func (f *Fighter) Alive() bool {
	return f.HP > 0
}

// Ability 按类型查找技能
func (f *Fighter) Ability(t models.AbilityType) Ability {
	for _, a := range f.Abilities {
		if a.Type() == t {
			return a
		}
	}
	return nil
}

// CanFly 是否拥有飞行技能
func (f *Fighter) CanFly() bool {
	return f.Ability(models.AbilityFly) != nil
}

// facingSign 朝向对应的水平方向
func (f *Fighter) facingSign() float64 {
	if f.FacingRight {
		return 1
	}
	return -1
}

// spend 扣除墨水，不足时返回 false
func (f *Fighter) spend(cost float64) bool {
	if f.Energy < cost {
		return false
	}
	f.Energy -= cost
	return true
}
