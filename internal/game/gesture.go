// gesture.go

package game

import (
	"math"
	"strings"
	"time"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

const gestureCooldown = time.Duration(balance.GestureCooldown * float64(time.Second))

// defaultGestureMoves 有效招式不足时使用
func defaultGestureMoves() []models.GestureMove {
	return []models.GestureMove{
		{ID: "swipe", Gesture: "swipe", Action: "Ink Slash", Power: 10},
		{ID: "circle", Gesture: "circle", Action: "Ink Burst", Power: 15},
	}
}

// deriveGestureMoves 从分析结果中提取手势招式
// 最多取前几个有效招式，威力裁剪到区间内；有效招式太少时整体替换为默认招式
func deriveGestureMoves(moves []models.GestureMove) []models.GestureMove {
	out := make([]models.GestureMove, 0, balance.GestureMaxMoves)
	seen := make(map[string]bool)
	for _, m := range moves {
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if m.Gesture == "" {
			m.Gesture = m.ID
		}
		m.Power = clampPower(m.Power)
		out = append(out, m)
		if len(out) == balance.GestureMaxMoves {
			break
		}
	}
	if len(out) < balance.GestureMinValid {
		return defaultGestureMoves()
	}
	return out
}

func clampPower(p float64) float64 {
	if math.IsNaN(p) {
		return balance.GesturePowerMin
	}
	return math.Max(balance.GesturePowerMin, math.Min(balance.GesturePowerMax, p))
}

func findGestureMove(moves []models.GestureMove, id string) (models.GestureMove, bool) {
	for _, m := range moves {
		if m.ID == id {
			return m, true
		}
	}
	return models.GestureMove{}, false
}
