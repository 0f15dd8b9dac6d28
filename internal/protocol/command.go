// command.go

package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

var validate = validator.New()

// Validator 可校验的指令载荷
type Validator interface {
	Validate() error
}

// Decode 解析并校验指令载荷，空载荷按空对象处理
func Decode(raw json.RawMessage, dst Validator) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

// SubmitDrawingPayload 提交画作
type SubmitDrawingPayload struct {
	Image       string  `json:"image" validate:"required_without=Sprite"`
	Sprite      string  `json:"sprite,omitempty"`
	EnergySpent float64 `json:"energySpent" validate:"gte=0"`
}

func (p *SubmitDrawingPayload) Validate() error { return validate.Struct(p) }

// SubmitFighterPayload 提交分析得到的角色配置
type SubmitFighterPayload struct {
	Config *models.FighterConfig `json:"config" validate:"required"`
}

func (p *SubmitFighterPayload) Validate() error { return validate.Struct(p) }

// MovePayload 移动指令，目标为竞技场坐标
type MovePayload struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p *MovePayload) Validate() error { return validate.Struct(p) }

// AbilityPayload 释放技能
type AbilityPayload struct {
	AbilityType models.AbilityType `json:"abilityType" validate:"required,oneof=ranged_attack melee shield dash fly"`
	Target      *models.Vector2D   `json:"target,omitempty"`
}

func (p *AbilityPayload) Validate() error { return validate.Struct(p) }

// GestureAttackPayload 手势招式
type GestureAttackPayload struct {
	MoveID string `json:"moveId" validate:"required"`
}

func (p *GestureAttackPayload) Validate() error { return validate.Struct(p) }

// EmptyPayload 无参数指令(ready、play_again)
type EmptyPayload struct{}

func (p *EmptyPayload) Validate() error { return nil }

// RelayData 转发载荷，内容不做约束，只要求是合法 JSON
type RelayData struct {
	Data any
}

// UnmarshalJSON 保留任意结构
func (r *RelayData) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &r.Data)
}

func (r *RelayData) Validate() error { return nil }
