// skill.go

package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// AbilityType 技能类型
type AbilityType string

const (
	// AbilityMove 移动，隐式拥有，不作为技能实例
	AbilityMove AbilityType = "move"
	// AbilityRangedAttack 远程攻击
	AbilityRangedAttack AbilityType = "ranged_attack"
	// AbilityMelee 近战
	AbilityMelee AbilityType = "melee"
	// AbilityShield 护盾
	AbilityShield AbilityType = "shield"
	// AbilityDash 冲刺
	AbilityDash AbilityType = "dash"
	// AbilityFly 飞行
	AbilityFly AbilityType = "fly"
)

// Valid 是否为可实例化的技能类型
func (t AbilityType) Valid() bool {
	switch t {
	case AbilityRangedAttack, AbilityMelee, AbilityShield, AbilityDash, AbilityFly:
		return true
	}
	return false
}

// AbilityParams 技能参数，数值或字符串
type AbilityParams map[string]any

// Float 读取数值参数，缺失或无法解析时返回默认值
func (p AbilityParams) Float(key string, def float64) float64 {
	raw, ok := p[key]
	if !ok {
		return def
	}
	if f, ok := toFloat(raw); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return def
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// String 读取字符串参数
func (p AbilityParams) String(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// AbilityConfig 技能配置，来自外部分析结果
type AbilityConfig struct {
	Type   AbilityType   `json:"type"`
	Params AbilityParams `json:"params"`
}
