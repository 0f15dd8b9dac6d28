// entity.go

package models

import "math"

// Vector2D 二维向量
type Vector2D struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Sub 向量相减
func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len 向量长度
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize 单位向量，零向量返回零向量
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l == 0 {
		return Vector2D{}
	}
	return Vector2D{X: v.X / l, Y: v.Y / l}
}

// Distance 两点距离
func Distance(a, b Vector2D) float64 {
	return a.Sub(b).Len()
}
