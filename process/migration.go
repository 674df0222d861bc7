package process

import (
	"github.com/pthm-cable/ecosim/components"
	"github.com/pthm-cable/ecosim/ecs"
	"github.com/pthm-cable/ecosim/effects"
	"github.com/pthm-cable/ecosim/world"
)

// Migration moves a single creature between regions.
type Migration struct{}

// Execute moves the entity to target. Entities without a Position, or already
// in target, are left alone. Returns whether the entity moved.
func (Migration) Execute(ctx *Context, id ecs.EntityID, target world.RegionID) bool {
	reg := ctx.Registry()
	if !ecs.Has[components.Position](reg, id) {
		return false
	}
	pos := ecs.MustGet[components.Position](reg, id)
	if pos.Region == target {
		return false
	}

	from := pos.Region
	pos.Region = target
	ctx.Record(effects.Migration(id, uint32(from), uint32(target), 1))
	return true
}
