// room.go

package models

import (
	"math"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
)

// Phase 会话阶段
type Phase string

const (
	// PhaseLobby 大厅，等待双方准备
	PhaseLobby Phase = "lobby"
	// PhaseDrawing 绘画中
	PhaseDrawing Phase = "drawing"
	// PhaseAnalyzing 等待外部分析结果
	PhaseAnalyzing Phase = "analyzing"
	// PhaseReveal 角色展示
	PhaseReveal Phase = "reveal"
	// PhaseBattle 战斗中
	PhaseBattle Phase = "battle"
	// PhaseResult 结算
	PhaseResult Phase = "result"
)

// DrawWinner 同归于尽时的胜者标记
const DrawWinner = "draw"

// RoomOptions 房间参数，所有字段均已确定
type RoomOptions struct {
	EnergyBudget      float64 `json:"energyBudget" msgpack:"energyBudget" mapstructure:"energy_budget"`
	DrawingTimeLimit  float64 `json:"drawingTimeLimit" msgpack:"drawingTimeLimit" mapstructure:"drawing_time_limit"`
	BattleEnergyMax   float64 `json:"battleEnergyMax" msgpack:"battleEnergyMax" mapstructure:"battle_energy_max"`
	BattleEnergyRegen float64 `json:"battleEnergyRegen" msgpack:"battleEnergyRegen" mapstructure:"battle_energy_regen"`
}

// DefaultRoomOptions 平衡配置中的房间默认值
func DefaultRoomOptions() RoomOptions {
	return RoomOptions{
		EnergyBudget:      balance.DefaultEnergyBudget,
		DrawingTimeLimit:  balance.DrawingTimeLimit,
		BattleEnergyMax:   balance.DefaultBattleEnergyMax,
		BattleEnergyRegen: balance.DefaultBattleEnergyRegen,
	}
}

// Validated 非法字段替换为平衡默认值
// 负数和非有限值非法，绘画时间还必须大于 0，其余字段允许为 0
func (o RoomOptions) Validated() RoomOptions {
	d := DefaultRoomOptions()
	return RoomOptions{
		EnergyBudget:      nonNegativeOr(o.EnergyBudget, d.EnergyBudget),
		DrawingTimeLimit:  positiveOr(o.DrawingTimeLimit, d.DrawingTimeLimit),
		BattleEnergyMax:   nonNegativeOr(o.BattleEnergyMax, d.BattleEnergyMax),
		BattleEnergyRegen: nonNegativeOr(o.BattleEnergyRegen, d.BattleEnergyRegen),
	}
}

// RoomRequest 创建房间的可选参数，nil 表示使用默认值
type RoomRequest struct {
	EnergyBudget      *float64 `json:"energyBudget,omitempty"`
	DrawingTimeLimit  *float64 `json:"drawingTimeLimit,omitempty"`
	BattleEnergyMax   *float64 `json:"battleEnergyMax,omitempty"`
	BattleEnergyRegen *float64 `json:"battleEnergyRegen,omitempty"`
}

// Resolve 用 defaults 填充未设置的字段，设置了但非法的字段同样使用 defaults
func (r RoomRequest) Resolve(defaults RoomOptions) RoomOptions {
	defaults = defaults.Validated()
	pick := func(v *float64, def float64) float64 {
		if v == nil {
			return def
		}
		return *v
	}
	return RoomOptions{
		EnergyBudget:      nonNegativeOr(pick(r.EnergyBudget, defaults.EnergyBudget), defaults.EnergyBudget),
		DrawingTimeLimit:  positiveOr(pick(r.DrawingTimeLimit, defaults.DrawingTimeLimit), defaults.DrawingTimeLimit),
		BattleEnergyMax:   nonNegativeOr(pick(r.BattleEnergyMax, defaults.BattleEnergyMax), defaults.BattleEnergyMax),
		BattleEnergyRegen: nonNegativeOr(pick(r.BattleEnergyRegen, defaults.BattleEnergyRegen), defaults.BattleEnergyRegen),
	}
}

func nonNegativeOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return def
	}
	return v
}

func positiveOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return v
}
