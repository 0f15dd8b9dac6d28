// projectile.go

package combat

import (
	"github.com/jacl-coder/InkBrawl-Server/internal/balance"
	"github.com/jacl-coder/InkBrawl-Server/internal/models"
)

// Projectile 投射物
type Projectile struct {
	ID       int64
	OwnerID  string
	Position models.Vector2D
	Velocity models.Vector2D
	Damage   float64
	Age      float64
	Active   bool
}

// outOfBounds 是否已飞出竞技场(含余量)
func (p *Projectile) outOfBounds() bool {
	m := balance.ProjectileBoundsMargin
	return p.Position.X < -m || p.Position.X > balance.ArenaWidth+m ||
		p.Position.Y < -m || p.Position.Y > balance.ArenaHeight+m
}
