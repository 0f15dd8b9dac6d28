// state.go

package protocol

import (
	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// RoomState 同步给客户端的会话状态，只由会话在自身执行上下文中修改
type RoomState struct {
	Phase       models.Phase            `json:"phase" msgpack:"phase"`
	Timer       float64                 `json:"timer" msgpack:"timer"`
	Winner      string                  `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Config      models.RoomOptions      `json:"config" msgpack:"config"`
	Players     map[string]*PlayerState `json:"players" msgpack:"players"`
	Projectiles []ProjectileState       `json:"projectiles" msgpack:"projectiles"`
	Tick        int64                   `json:"tick" msgpack:"tick"`
}

// NewRoomState 创建空的会话状态
func NewRoomState(opts models.RoomOptions) *RoomState {
	return &RoomState{
		Phase:       models.PhaseLobby,
		Config:      opts,
		Players:     make(map[string]*PlayerState),
		Projectiles: []ProjectileState{},
	}
}

// PlayerState 参与者状态
type PlayerState struct {
	ID          string `json:"id" msgpack:"id"`
	DisplayName string `json:"displayName" msgpack:"displayName"`

	Ready     bool `json:"ready" msgpack:"ready"`
	Submitted bool `json:"submitted" msgpack:"submitted"`

	// 角色信息，分析完成后填充
	Name         string               `json:"name,omitempty" msgpack:"name,omitempty"`
	Description  string               `json:"description,omitempty" msgpack:"description,omitempty"`
	Abilities    []AbilityState       `json:"abilities,omitempty" msgpack:"abilities,omitempty"`
	GestureMoves []models.GestureMove `json:"gestureMoves,omitempty" msgpack:"gestureMoves,omitempty"`

	HP          float64 `json:"hp" msgpack:"hp"`
	MaxHP       float64 `json:"maxHp" msgpack:"maxHp"`
	Energy      float64 `json:"energy" msgpack:"energy"`
	MaxEnergy   float64 `json:"maxEnergy" msgpack:"maxEnergy"`
	X           float64 `json:"x" msgpack:"x"`
	Y           float64 `json:"y" msgpack:"y"`
	VX          float64 `json:"vx" msgpack:"vx"`
	VY          float64 `json:"vy" msgpack:"vy"`
	FacingRight bool    `json:"facingRight" msgpack:"facingRight"`
	Shielding   bool    `json:"shielding" msgpack:"shielding"`
	ShieldHP    float64 `json:"shieldHp" msgpack:"shieldHp"`
}

// NewPlayerState 创建默认参与者状态
func NewPlayerState(id, displayName string) *PlayerState {
	ps := &PlayerState{ID: id, DisplayName: displayName}
	ps.ResetMatch()
	return ps
}

// ResetMatch 把单局相关字段恢复默认
func (ps *PlayerState) ResetMatch() {
	*ps = PlayerState{
		ID:          ps.ID,
		DisplayName: ps.DisplayName,
		HP:          balance.FallbackMaxHP,
		MaxHP:       balance.FallbackMaxHP,
		Energy:      balance.DefaultBattleEnergyMax,
		MaxEnergy:   balance.DefaultBattleEnergyMax,
	}
}

// AbilityState 技能及冷却
type AbilityState struct {
	Type        models.AbilityType `json:"type" msgpack:"type"`
	Label       string             `json:"label" msgpack:"label"`
	Cooldown    float64            `json:"cooldown" msgpack:"cooldown"`
	CooldownMax float64            `json:"cooldownMax" msgpack:"cooldownMax"`
}

// ProjectileState 投射物状态
type ProjectileState struct {
	ID      int64   `json:"id" msgpack:"id"`
	OwnerID string  `json:"ownerId" msgpack:"ownerId"`
	X       float64 `json:"x" msgpack:"x"`
	Y       float64 `json:"y" msgpack:"y"`
	VX      float64 `json:"vx" msgpack:"vx"`
	VY      float64 `json:"vy" msgpack:"vy"`
}
