// player.go

package models

// ParticipantResult 单个参与者在对局结束时的数据
type ParticipantResult struct {
	ParticipantID string  `json:"participant_id"`
	DisplayName   string  `json:"display_name"`
	FighterName   string  `json:"fighter_name"`
	HP            float64 `json:"hp"`
	MaxHP         float64 `json:"max_hp"`
	Winner        bool    `json:"winner"`
}
