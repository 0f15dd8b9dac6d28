// stats.go

package models

import (
	"time"
)

// MatchResult 对局结果，仅作历史记录写入
type MatchResult struct {
	ID           string              `json:"id"`
	RoomCode     string              `json:"room_code"`
	WinnerID     string              `json:"winner_id"`
	Reason       string              `json:"reason"` // knockout, draw, disconnect
	StartTime    time.Time           `json:"start_time"`
	EndTime      time.Time           `json:"end_time"`
	Ticks        int64               `json:"ticks"`
	Participants []ParticipantResult `json:"participants"`
}

// Duration 对局时长
func (r MatchResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// 结束原因
const (
	ReasonKnockout   = "knockout"
	ReasonDraw       = "draw"
	ReasonDisconnect = "disconnect"
)
