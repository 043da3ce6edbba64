package engine

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/models"
)

// VesselPosition is where the mixing beaker stands.
var VesselPosition = mgl64.Vec3{0, 0.8, 0}

// Vessel is the mixing beaker. It is owned by the Workspace.
type Vessel struct {
	SessionID    uuid.UUID
	LiquidLevel  float64
	CurrentColor colorful.Color
	TargetColor  colorful.Color
	// Contained keeps every chemical id that reached the beaker, in the order
	// it first arrived.
	Contained     *orderedmap.OrderedMap[string, struct{}]
	HasReacted    bool
	Effervescence bool
	Precipitate   bool
	Reaction      *models.ReactionResult
}

func newVessel() Vessel {
	return Vessel{
		SessionID:    uuid.New(),
		CurrentColor: chem.White,
		TargetColor:  chem.White,
		Contained:    orderedmap.NewOrderedMap[string, struct{}](),
	}
}

func (v *Vessel) contains(id string) bool {
	_, ok := v.Contained.Get(id)
	return ok
}

// VesselSnapshot is a read-only copy of the vessel for rendering.
type VesselSnapshot struct {
	SessionID     uuid.UUID
	LiquidLevel   float64
	CurrentColor  string
	TargetColor   string
	Contained     []string
	HasReacted    bool
	Effervescence bool
	Precipitate   bool
	Reaction      *models.ReactionResult
}

func (v *Vessel) snapshot() VesselSnapshot {
	s := VesselSnapshot{
		SessionID:     v.SessionID,
		LiquidLevel:   v.LiquidLevel,
		CurrentColor:  v.CurrentColor.Clamped().Hex(),
		TargetColor:   v.TargetColor.Clamped().Hex(),
		Contained:     v.Contained.Keys(),
		HasReacted:    v.HasReacted,
		Effervescence: v.Effervescence,
		Precipitate:   v.Precipitate,
	}
	if v.Reaction != nil {
		r := *v.Reaction
		s.Reaction = &r
	}
	return s
}
