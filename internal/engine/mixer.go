package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/models"
)

// Pouring constants, per reference tick.
const (
	PourDistance       = 1.0 // horizontal reach from the beaker's axis
	PourClearance      = 0.2 // how far above the beaker's base the container must be
	MinPourFraction    = 0.05
	FlaskPourRate      = 0.008
	DropperPourRate    = 0.003
	TransferEfficiency = 0.8

	TiltRate      = 0.15
	ColorRate     = 0.1
	uprightSnap   = 0.005
	colorSnap     = 0.5 / 255
	SnapBackRate  = 0.1 // progress per tick while returning home
	SnapBackReach = 1.5 // containers released farther than this from the beaker go home
)

// Tilt targets in radians. Negative tips the container toward the beaker.
var (
	PourTilt = -math.Pi / 3
	DipTilt  = -math.Pi / 6
)

// Tick advances the simulation by dt: snap-back animations and pouring for
// every container, colour easing, then any reaction announcement that is due.
func (w *Workspace) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	w.clock += dt
	steps := w.opts.Easing.steps(dt)

	for el := w.containers.Front(); el != nil; el = el.Next() {
		c := el.Value
		w.stepSnapBack(c, steps)
		if !c.Known {
			continue
		}
		w.stepContainer(c, steps)
	}
	w.stepVesselColor(steps)
	w.fireDue()
}

func (w *Workspace) rate(k, steps float64) float64 {
	if w.opts.ReducedMotion {
		return 1
	}
	return scaleRate(k, steps)
}

func inPourZone(c *Container) bool {
	d := c.Position.Sub(VesselPosition)
	planar := mgl64.Vec2{d[0], d[2]}.Len()
	return planar < PourDistance && d[1] > PourClearance && c.Remaining > MinPourFraction
}

func (w *Workspace) stepContainer(c *Container, steps float64) {
	if inPourZone(c) && w.dragged == c.ChemicalID {
		if c.Kind == models.LitmusStrip {
			// strips are dipped, never poured
			c.Tilt = Approach(c.Tilt, DipTilt, w.rate(TiltRate, steps))
			return
		}
		c.Tilt = Approach(c.Tilt, PourTilt, w.rate(TiltRate, steps))
		if c.Kind == models.Dropper {
			c.Squeezed = true
		}
		w.pour(c, steps)
		return
	}

	c.Tilt = Approach(c.Tilt, 0, w.rate(TiltRate, steps))
	if math.Abs(c.Tilt) < uprightSnap {
		c.Tilt = 0
	}
	c.Squeezed = false
}

func (w *Workspace) pour(c *Container, steps float64) {
	rate := FlaskPourRate
	if c.Kind == models.Dropper {
		rate = DropperPourRate
	}
	amount := math.Min(c.Remaining, rate*steps)
	if amount <= 0 {
		return
	}
	c.Remaining = math.Max(0, c.Remaining-amount)
	w.vessel.LiquidLevel = math.Min(1, w.vessel.LiquidLevel+amount*TransferEfficiency)

	if !w.vessel.contains(c.ChemicalID) {
		w.vessel.Contained.Set(c.ChemicalID, struct{}{})
		w.log.WithField("chemical", c.ChemicalID).Infof("poured into beaker (%d chemicals)", w.vessel.Contained.Len())
		w.presenter.Announce(fmt.Sprintf("%s added to the beaker", c.Name))
		w.updateTarget()
	}
}

// updateTarget recomputes the beaker colour after its chemical set grew and
// schedules the reaction announcement the first time a rule matches.
func (w *Workspace) updateTarget() {
	v := &w.vessel
	ids := v.Contained.Keys()

	switch len(ids) {
	case 0:
		v.TargetColor = chem.White
		return
	case 1:
		v.TargetColor, _ = w.lab.Registry.Color(ids[0])
		return
	}

	rule, ok := w.lab.Reactions.Resolve(ids)
	if !ok {
		v.TargetColor = w.blend(ids)
		return
	}

	result := rule.Results
	c, err := chem.ParseColor(result.ColorChange)
	if err != nil {
		w.log.WithField("reaction", ids).Warnf("blending instead of reaction colour: %v", err)
		c = w.blend(ids)
	}
	v.TargetColor = c
	if result.Effervescence {
		v.Effervescence = true
	}
	if result.Precipitate {
		v.Precipitate = true
	}
	v.Reaction = &result

	if v.HasReacted {
		return
	}
	v.HasReacted = true
	w.log.WithField("session", v.SessionID).Infof("reaction: %s", result.Observation)
	w.pending = &pendingReaction{
		due: w.clock + w.opts.SettleDelay,
		event: ReactionEvent{
			SessionID: v.SessionID,
			Chemicals: ids,
			Result:    result,
		},
	}
}

// blend mixes colours in the order the chemicals were added, folding each
// new colour 50% into the running mix. The result depends on the order.
func (w *Workspace) blend(ids []string) colorful.Color {
	if len(ids) == 0 {
		return chem.White
	}
	mixed, _ := w.lab.Registry.Color(ids[0])
	for _, id := range ids[1:] {
		c, _ := w.lab.Registry.Color(id)
		mixed = mixed.BlendRgb(c, 0.5)
	}
	return mixed
}

func (w *Workspace) stepVesselColor(steps float64) {
	v := &w.vessel
	v.CurrentColor = ApproachColor(v.CurrentColor, v.TargetColor, w.rate(ColorRate, steps))
	if colorClose(v.CurrentColor, v.TargetColor) {
		v.CurrentColor = v.TargetColor
	}
}

func colorClose(a, b colorful.Color) bool {
	return math.Abs(a.R-b.R) < colorSnap && math.Abs(a.G-b.G) < colorSnap && math.Abs(a.B-b.B) < colorSnap
}

func (w *Workspace) fireDue() {
	p := w.pending
	if p == nil || w.clock < p.due {
		return
	}
	w.pending = nil
	if p.event.SessionID != w.vessel.SessionID {
		w.log.WithField("session", p.event.SessionID).Debug("dropping reaction announcement from a previous session")
		return
	}
	w.presenter.Announce(fmt.Sprintf("Reaction complete: %s", p.event.Result.Observation))
	w.presenter.ReactionComplete(p.event)
}

// Pending reports whether a reaction announcement is waiting for its settle delay.
func (w *Workspace) Pending() bool {
	return w.pending != nil
}

// Describe is a one-line summary of the beaker, suitable for a screen reader.
func (w *Workspace) Describe() string {
	v := &w.vessel
	if v.Contained.Len() == 0 {
		return "The beaker is empty."
	}
	names := make([]string, 0, v.Contained.Len())
	for _, id := range v.Contained.Keys() {
		if chemical, ok := w.lab.Registry.Get(id); ok {
			names = append(names, chemical.Name)
		} else {
			names = append(names, id)
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The beaker is %d%% full and holds %s.", int(math.Round(v.LiquidLevel*100)), strings.Join(names, " and "))
	if v.Effervescence {
		b.WriteString(" It is fizzing.")
	}
	if v.Precipitate {
		b.WriteString(" A precipitate has formed.")
	}
	return b.String()
}
