// character.go

package models

import (
	"math"
	"strings"

	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
)

// HealthConfig 生命配置
type HealthConfig struct {
	MaxHP float64 `json:"maxHp"`
}

// MovementConfig 移动配置
type MovementConfig struct {
	Speed float64 `json:"speed"`
	Type  string  `json:"type"` // 如 "walk"、"hover"，仅用于展示
}

// SpriteBounds 精灵图在原始画布中的包围盒
type SpriteBounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// GestureMove 手势招式
type GestureMove struct {
	ID      string  `json:"id" msgpack:"id"`
	Gesture string  `json:"gesture" msgpack:"gesture"`
	Action  string  `json:"action" msgpack:"action"`
	Power   float64 `json:"power" msgpack:"power"`
}

// FighterConfig 角色配置，由外部分析服务根据玩家画作生成
type FighterConfig struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Health       HealthConfig    `json:"health"`
	Movement     MovementConfig  `json:"movement"`
	Abilities    []AbilityConfig `json:"abilities"`
	SpriteBounds *SpriteBounds   `json:"spriteBounds,omitempty"`
	BalanceScore float64         `json:"balanceScore"`
	GestureMoves []GestureMove   `json:"gestureMoves,omitempty"`
}

const (
	maxNameLength        = 40
	maxDescriptionLength = 280
)

// Sanitize 返回裁剪后的配置副本，外部数据不可信
func (c FighterConfig) Sanitize() FighterConfig {
	out := c
	out.Name = truncate(strings.TrimSpace(c.Name), maxNameLength)
	if out.Name == "" {
		out.Name = balance.FallbackName
	}
	out.Description = truncate(strings.TrimSpace(c.Description), maxDescriptionLength)
	out.Health.MaxHP = clampOr(c.Health.MaxHP, balance.MinMaxHP, balance.MaxMaxHP, balance.FallbackMaxHP)
	out.Movement.Speed = clampOr(c.Movement.Speed, balance.MinSpeed, balance.MaxSpeed, balance.FallbackSpeed)

	out.Abilities = make([]AbilityConfig, 0, balance.MaxAbilities)
	seen := make(map[AbilityType]bool)
	for _, a := range c.Abilities {
		if !a.Type.Valid() || seen[a.Type] {
			continue
		}
		seen[a.Type] = true

		out.Abilities = append(out.Abilities, AbilityConfig{Type: a.Type, Params: sanitizeParams(a.Type, a.Params)})

		if len(out.Abilities) == balance.MaxAbilities {
			break
		}
	}
	if len(out.Abilities) == 0 {
		out.Abilities = append(out.Abilities, defaultMelee())
	}

	if len(c.GestureMoves) > 0 {
		out.GestureMoves = append([]GestureMove(nil), c.GestureMoves...)
	}
	return out
}

// FallbackConfig 分析超时时使用的兜底角色
func FallbackConfig() FighterConfig {
	return FighterConfig{
		Name:        balance.FallbackName,
		Description: balance.FallbackDescription,
		Health:      HealthConfig{MaxHP: balance.FallbackMaxHP},
		Movement:    MovementConfig{Speed: balance.FallbackSpeed, Type: "walk"},
		Abilities: []AbilityConfig{
			defaultMelee(),
			{
				Type: AbilityRangedAttack,
				Params: AbilityParams{
					"damage":   8.0,
					"speed":    5.0,
					"cooldown": 1.5,
					"label":    "Ink Shot",
				},
			},
		},
	}
}

func defaultMelee() AbilityConfig {
	return AbilityConfig{
		Type: AbilityMelee,
		Params: AbilityParams{
			"damage":   10.0,
			"range":    40.0,
			"cooldown": 1.0,
			"label":    "Smudge",
		},
	}
}

// sanitizeParams 复制参数，数值参数全部裁剪到平衡范围，缺失的使用缺省值
func sanitizeParams(t AbilityType, in AbilityParams) AbilityParams {
	params := make(AbilityParams, len(in)+2)
	for k, v := range in {
		params[k] = v
	}
	for _, key := range balance.AbilityParamKeys(string(t)) {
		r, _ := balance.AbilityParamRange(string(t), key)
		params[key] = clampOr(params.Float(key, r.Default), r.Min, r.Max, r.Default)
	}
	return params
}

// clampOr 裁剪到区间，非有限值或非正值使用默认值
func clampOr(v, lo, hi, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return def
	}
	return math.Max(lo, math.Min(hi, v))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
