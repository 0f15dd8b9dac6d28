// event.go

package combat

import "github.com/jacl-coder/InkBrawl-Server/internal/models"

// EventKind 战斗事件类型
type EventKind string

const (
	// EventDamage 投射物或直接伤害命中
	EventDamage EventKind = "damage"
	// EventRangedAttack 投射物生成
	EventRangedAttack EventKind = "ranged_attack"
	// EventShield 护盾开启
	EventShield EventKind = "shield"
	// EventDeath 角色死亡
	EventDeath EventKind = "death"
	// EventMeleeHit 近战命中
	EventMeleeHit EventKind = "melee_hit"
)

// Event 单帧内发生的战斗事件，只广播不保存
type Event struct {
	Kind     EventKind        `json:"kind" msgpack:"kind"`
	ActorID  string           `json:"actorId" msgpack:"actorId"`
	TargetID string           `json:"targetId,omitempty" msgpack:"targetId,omitempty"`
	Amount   float64          `json:"amount,omitempty" msgpack:"amount,omitempty"`
	Position *models.Vector2D `json:"position,omitempty" msgpack:"position,omitempty"`
}

func at(v models.Vector2D) *models.Vector2D {
	return &v
}
