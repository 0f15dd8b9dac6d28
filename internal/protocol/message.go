// message.go

// Package protocol 客户端与服务器之间的消息定义、指令载荷与编解码
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jacl-coder/InkBrawl-Server/internal/combat"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// 客户端指令
const (
	CmdReady         = "ready"
	CmdSubmitDrawing = "submit_drawing"
	CmdSubmitFighter = "submit_fighter"
	CmdMove          = "move"
	CmdAbility       = "ability"
	CmdGestureAttack = "gesture_attack"
	CmdPlayAgain     = "play_again"
	CmdDrawStroke    = "draw_stroke"
	CmdDrawUndo      = "draw_undo"
	CmdDrawClear     = "draw_clear"
)

// 服务器消息
const (
	KindWelcome   = "welcome"
	KindState     = "state"
	KindEvents    = "events"
	KindGesture   = "gesture"
	KindAnalyze   = "analyze"
	KindSprite    = "sprite"
	KindMatchOver = "match_over"
	KindError     = "error"
)

// ErrInvalidPayload 指令载荷格式错误或缺少必填字段
var ErrInvalidPayload = errors.New("invalid payload")

// Envelope 入站消息结构
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeEnvelope 解析入站消息
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("解析消息失败: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("消息缺少类型: %w", ErrInvalidPayload)
	}
	return env, nil
}

// Frame 出站消息结构
type Frame struct {
	Type    string `json:"type" msgpack:"type"`
	Payload any    `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// WelcomePayload 连接成功后发给本人的消息
type WelcomePayload struct {
	ParticipantID string             `json:"participantId" msgpack:"participantId"`
	RoomCode      string             `json:"roomCode" msgpack:"roomCode"`
	Options       models.RoomOptions `json:"options" msgpack:"options"`
}

// EventsPayload 一帧内的战斗事件
type EventsPayload struct {
	Tick   int64          `json:"tick" msgpack:"tick"`
	Events []combat.Event `json:"events" msgpack:"events"`
}

// GestureEventPayload 手势招式命中，仅用于表现
type GestureEventPayload struct {
	AttackerID string  `json:"attackerId" msgpack:"attackerId"`
	TargetID   string  `json:"targetId" msgpack:"targetId"`
	Gesture    string  `json:"gesture" msgpack:"gesture"`
	Action     string  `json:"action" msgpack:"action"`
	Power      float64 `json:"power" msgpack:"power"`
}

// AnalyzePayload 请求客户端调用分析服务
type AnalyzePayload struct {
	ParticipantID string  `json:"participantId" msgpack:"participantId"`
	Image         string  `json:"image,omitempty" msgpack:"image,omitempty"`
	EnergySpent   float64 `json:"energySpent" msgpack:"energySpent"`
}

// SpritePayload 精灵图更新
type SpritePayload struct {
	ParticipantID string `json:"participantId" msgpack:"participantId"`
	Sprite        string `json:"sprite" msgpack:"sprite"`
}

// RelayPayload 绘画过程转发给对手
type RelayPayload struct {
	From string `json:"from" msgpack:"from"`
	Data any    `json:"data,omitempty" msgpack:"data,omitempty"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    string `json:"code" msgpack:"code"`
	Message string `json:"message" msgpack:"message"`
}
