package engine

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/virtual-lab/internal/chem"
	"github.com/tatianab/virtual-lab/internal/models"
)

type recorder struct {
	announcements []string
	cursors       []Cursor
	events        []ReactionEvent
}

func (r *recorder) Announce(msg string) {
	r.announcements = append(r.announcements, msg)
}

func (r *recorder) SetCursor(c Cursor) {
	r.cursors = append(r.cursors, c)
}

func (r *recorder) ReactionComplete(ev ReactionEvent) {
	r.events = append(r.events, ev)
}

func testLab(t *testing.T) *chem.Lab {
	t.Helper()
	log, _ := test.NewNullLogger()
	return chem.NewLab(&models.LabData{
		Chemicals: map[string]models.Chemical{
			"HCl":             {Name: "Hydrochloric Acid", Color: "#ff0000", State: models.Liquid, Hazard: "corrosive"},
			"NaOH":            {Name: "Sodium Hydroxide", Color: "#00ff00", State: models.Liquid, Hazard: "corrosive"},
			"CuSO4":           {Name: "Copper Sulfate", Color: "#0000ff", State: models.Liquid},
			"Ethanol":         {Name: "Ethanol", Color: "#ffff00", State: models.Liquid, Hazard: "flammable"},
			"Hexane":          {Name: "Hexane", Color: "#008080", State: models.Liquid, Hazard: "flammable"},
			"Phenolphthalein": {Name: "Phenolphthalein", Color: "#fdfdfd", State: models.Liquid, Hazard: models.HazardIndicator},
			"Litmus":          {Name: "Litmus Paper", Color: "#a070c0", State: models.Solid, Hazard: models.HazardIndicator},
		},
		Mixtures: []models.ReactionRule{
			{
				Chemicals: []string{"HCl", "NaOH"},
				Results: models.ReactionResult{
					ColorChange: "#ffffff",
					Observation: "Neutralization",
					Equation:    "HCl + NaOH → NaCl + H2O",
				},
			},
			{
				Chemicals: []string{"Phenolphthalein", "NaOH"},
				Results: models.ReactionResult{
					ColorChange:   "#ff69b4",
					Effervescence: true,
					Precipitate:   true,
					Observation:   "Pink",
				},
			},
		},
	}, log)
}

func newTestWorkspace(t *testing.T, selection ...string) (*Workspace, *recorder, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Easing = EaseFrame
	w := NewWorkspace(testLab(t), rec, log, opts)
	if len(selection) > 0 {
		require.NoError(t, w.Enter(selection))
	}
	return w, rec, hook
}

// pour holds a container over the beaker for n ticks, then releases it.
func pour(t *testing.T, w *Workspace, id string, n int) {
	t.Helper()
	c, ok := w.Container(id)
	require.True(t, ok)
	require.NoError(t, w.DragStart(id, c.Position))
	for range n {
		require.NoError(t, w.DragMove(id, PourPoint()))
		w.Tick(ReferenceTick)
	}
	require.NoError(t, w.DragEnd(id))
}

// pourAll pours until the container stops pouring.
func pourAll(t *testing.T, w *Workspace, id string) {
	pour(t, w, id, 400)
}

func settle(w *Workspace, d time.Duration) {
	for elapsed := time.Duration(0); elapsed <= d; elapsed += ReferenceTick {
		w.Tick(ReferenceTick)
	}
}

func TestEnterValidatesSelection(t *testing.T) {
	w, _, _ := newTestWorkspace(t)

	assert.ErrorIs(t, w.Enter(nil), ErrNoSelection)
	assert.ErrorIs(t, w.Enter([]string{"HCl", "NaOH", "CuSO4"}), ErrWorkspaceFull)

	require.NoError(t, w.Enter([]string{"HCl", "NaOH"}))
	assert.Equal(t, []string{"HCl", "NaOH"}, w.Placed())
	assert.ErrorIs(t, w.Place("CuSO4"), ErrWorkspaceFull)
	assert.ErrorIs(t, w.Place("HCl"), ErrAlreadyPlaced)
}

func TestPlaceAssignsHomeSlots(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl", "NaOH")

	hcl, _ := w.Container("HCl")
	naoh, _ := w.Container("NaOH")
	assert.Equal(t, mgl64.Vec3{-1.5, 0.8, 0}, hcl.Position)
	assert.Equal(t, mgl64.Vec3{1.5, 0.8, 0}, naoh.Position)

	require.NoError(t, w.Remove("HCl"))
	require.NoError(t, w.Place("CuSO4"))
	cu, _ := w.Container("CuSO4")
	assert.Equal(t, mgl64.Vec3{-1.5, 0.8, 0}, cu.Position, "freed slot is reused")
	assert.ErrorIs(t, w.Remove("HCl"), ErrNotPlaced)
}

func TestContainerKinds(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "Phenolphthalein", "Litmus")

	ph, _ := w.Container("Phenolphthalein")
	litmus, _ := w.Container("Litmus")
	assert.Equal(t, models.Dropper, ph.Kind)
	assert.Equal(t, models.LitmusStrip, litmus.Kind)

	require.NoError(t, w.Enter([]string{"HCl"}))
	hcl, _ := w.Container("HCl")
	assert.Equal(t, models.Flask, hcl.Kind)
}

// HCl and NaOH poured in turn react exactly once.
func TestNeutralizationScenario(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	pourAll(t, w, "HCl")
	v := w.Vessel()
	assert.Equal(t, []string{"HCl"}, v.Contained)
	assert.Equal(t, "#ff0000", v.TargetColor)
	assert.False(t, v.HasReacted)

	pourAll(t, w, "NaOH")
	v = w.Vessel()
	assert.Equal(t, []string{"HCl", "NaOH"}, v.Contained)
	assert.Equal(t, "#ffffff", v.TargetColor)
	assert.True(t, v.HasReacted)
	assert.False(t, v.Effervescence)
	assert.False(t, v.Precipitate)

	settle(w, DefaultSettleDelay)
	require.Len(t, rec.events, 1)
	assert.Equal(t, "Neutralization", rec.events[0].Result.Observation)
	assert.Equal(t, v.SessionID, rec.events[0].SessionID)
	assert.Equal(t, "#ffffff", w.Vessel().CurrentColor, "colour settles on the target")
}

func TestReactionEventWaitsForSettleDelay(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	pour(t, w, "HCl", 30)
	pour(t, w, "NaOH", 30)
	require.True(t, w.Vessel().HasReacted)
	require.True(t, w.Pending())
	assert.Empty(t, rec.events)

	settle(w, DefaultSettleDelay)
	assert.Len(t, rec.events, 1)
	assert.False(t, w.Pending())
}

func TestAtMostOneReactionEvent(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	pour(t, w, "HCl", 30)
	pour(t, w, "NaOH", 30)
	for range 3 {
		pour(t, w, "HCl", 10)
		pour(t, w, "NaOH", 10)
	}
	settle(w, 3*DefaultSettleDelay)

	assert.Len(t, rec.events, 1)
}

func TestSingleChemicalNeverReacts(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "CuSO4")

	pourAll(t, w, "CuSO4")
	settle(w, 2*DefaultSettleDelay)

	v := w.Vessel()
	assert.Equal(t, []string{"CuSO4"}, v.Contained)
	assert.Equal(t, "#0000ff", v.TargetColor)
	assert.False(t, v.HasReacted)
	assert.Empty(t, rec.events)
}

func TestUnmatchedChemicalsBlend(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "Ethanol", "Hexane")

	pourAll(t, w, "Ethanol")
	pourAll(t, w, "Hexane")
	settle(w, 2*DefaultSettleDelay)

	yellow, _ := chem.ParseColor("#ffff00")
	teal, _ := chem.ParseColor("#008080")
	v := w.Vessel()
	assert.Equal(t, yellow.BlendRgb(teal, 0.5).Hex(), v.TargetColor)
	assert.False(t, v.HasReacted)
	assert.Empty(t, rec.events)
}

func TestBlendDependsOnOrder(t *testing.T) {
	w, _, _ := newTestWorkspace(t)

	a := w.blend([]string{"HCl", "NaOH", "CuSO4"})
	b := w.blend([]string{"CuSO4", "NaOH", "HCl"})
	again := w.blend([]string{"HCl", "NaOH", "CuSO4"})

	assert.Equal(t, a, again)
	assert.NotEqual(t, a.Hex(), b.Hex())
	assert.InDelta(t, 0.25, a.R, 1e-9)
	assert.InDelta(t, 0.25, a.G, 1e-9)
	assert.InDelta(t, 0.5, a.B, 1e-9)
}

func TestResetMidPour(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	c, _ := w.Container("HCl")
	require.NoError(t, w.DragStart("HCl", c.Position))
	for w.Vessel().LiquidLevel < 0.4 {
		require.NoError(t, w.DragMove("HCl", PourPoint()))
		w.Tick(ReferenceTick)
	}
	before := w.Vessel().SessionID

	w.Reset()

	v := w.Vessel()
	assert.Zero(t, v.LiquidLevel)
	assert.Empty(t, v.Contained)
	assert.False(t, v.HasReacted)
	assert.NotEqual(t, before, v.SessionID)
	_, dragging := w.Dragged()
	assert.False(t, dragging)
	for _, id := range w.Placed() {
		c, _ := w.Container(id)
		assert.Equal(t, 1.0, c.Remaining)
		assert.Zero(t, c.Tilt)
		assert.False(t, c.Squeezed)
	}
	assert.Contains(t, rec.cursors, CursorDefault)
}

func TestResetCancelsPendingReaction(t *testing.T) {
	w, rec, hook := newTestWorkspace(t, "HCl", "NaOH")

	pour(t, w, "HCl", 30)
	pour(t, w, "NaOH", 30)
	require.True(t, w.Pending())

	w.Reset()
	settle(w, 2*DefaultSettleDelay)

	assert.Empty(t, rec.events)
	assert.False(t, w.Pending())
	var cancelled bool
	for _, e := range hook.AllEntries() {
		if e.Message == "cancelled pending reaction announcement" {
			cancelled = true
		}
	}
	assert.True(t, cancelled)
}

func TestStaleEventIsDropped(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	pour(t, w, "HCl", 30)
	pour(t, w, "NaOH", 30)
	stale := *w.pending
	w.Reset()
	w.pending = &stale

	settle(w, 2*DefaultSettleDelay)
	assert.Empty(t, rec.events)
}

func TestEmptyContainerIsNoOp(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	pourAll(t, w, "HCl")
	settle(w, 2*time.Second)
	before := w.Vessel()

	w.containers.Front().Value.Remaining = 0
	pour(t, w, "HCl", 100)

	assert.Equal(t, before, w.Vessel())
	c, _ := w.Container("HCl")
	assert.Zero(t, c.Remaining)
}

func TestLiquidLevelMonotoneAndClamped(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl", "NaOH")

	last := 0.0
	for _, id := range []string{"HCl", "NaOH", "HCl", "NaOH"} {
		c, _ := w.Container(id)
		require.NoError(t, w.DragStart(id, c.Position))
		for range 200 {
			require.NoError(t, w.DragMove(id, PourPoint()))
			w.Tick(ReferenceTick)
			level := w.Vessel().LiquidLevel
			assert.GreaterOrEqual(t, level, last)
			assert.LessOrEqual(t, level, 1.0)
			last = level
		}
		require.NoError(t, w.DragEnd(id))
	}

	// force overflow
	w.vessel.LiquidLevel = 0.999
	for el := w.containers.Front(); el != nil; el = el.Next() {
		el.Value.Remaining = 1
	}
	pour(t, w, "HCl", 50)
	assert.Equal(t, 1.0, w.Vessel().LiquidLevel)
}

func TestDropperPoursSlowerAndSqueezes(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "Phenolphthalein", "HCl")

	c, _ := w.Container("Phenolphthalein")
	require.NoError(t, w.DragStart("Phenolphthalein", c.Position))
	var squeezed bool
	for range 60 {
		require.NoError(t, w.DragMove("Phenolphthalein", PourPoint()))
		w.Tick(ReferenceTick)
		c, _ = w.Container("Phenolphthalein")
		squeezed = squeezed || c.Squeezed
	}
	require.True(t, squeezed)
	poured := 1 - c.Remaining
	require.Greater(t, poured, 0.0)

	require.NoError(t, w.DragEnd("Phenolphthalein"))
	w.Tick(ReferenceTick)
	c, _ = w.Container("Phenolphthalein")
	assert.False(t, c.Squeezed)

	w.Reset()
	pour(t, w, "HCl", 60)
	hcl, _ := w.Container("HCl")
	assert.Greater(t, 1-hcl.Remaining, poured)
}

func TestLitmusNeverPoursOrDepletes(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "Litmus")

	c, _ := w.Container("Litmus")
	require.NoError(t, w.DragStart("Litmus", c.Position))
	for range 200 {
		require.NoError(t, w.DragMove("Litmus", PourPoint()))
		w.Tick(ReferenceTick)
	}
	c, _ = w.Container("Litmus")
	assert.Equal(t, 1.0, c.Remaining)
	assert.InDelta(t, DipTilt, c.Tilt, 1e-3)
	assert.Zero(t, w.Vessel().LiquidLevel)
	assert.Empty(t, w.Vessel().Contained)
}

func TestTiltEasesAndReturnsUpright(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")

	c, _ := w.Container("HCl")
	require.NoError(t, w.DragStart("HCl", c.Position))
	var prev float64
	for range 40 {
		require.NoError(t, w.DragMove("HCl", PourPoint()))
		w.Tick(ReferenceTick)
		c, _ = w.Container("HCl")
		assert.LessOrEqual(t, c.Tilt, prev)
		prev = c.Tilt
	}
	assert.Less(t, c.Tilt, 0.0)
	assert.GreaterOrEqual(t, c.Tilt, PourTilt)

	require.NoError(t, w.DragEnd("HCl"))
	settle(w, 2*time.Second)
	c, _ = w.Container("HCl")
	assert.Zero(t, c.Tilt)
}

func TestUnknownChemicalIsInert(t *testing.T) {
	w, rec, hook := newTestWorkspace(t, "Unobtainium")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["chemical"] == "Unobtainium" {
			warned = true
		}
	}
	assert.True(t, warned)

	pour(t, w, "Unobtainium", 200)
	c, _ := w.Container("Unobtainium")
	assert.False(t, c.Known)
	assert.Equal(t, 1.0, c.Remaining)
	assert.Zero(t, w.Vessel().LiquidLevel)
	assert.Empty(t, rec.events)
}

func TestMixerToleratesExtraContainers(t *testing.T) {
	w, rec, _ := newTestWorkspace(t, "HCl", "NaOH")

	// bypass the placement limit
	extra := &Container{ChemicalID: "CuSO4", Name: "Copper Sulfate", Known: true, Remaining: 1, slot: 2}
	extra.Home = HomeSlot(2)
	extra.Position = extra.Home
	w.containers.Set("CuSO4", extra)

	pour(t, w, "HCl", 30)
	pour(t, w, "NaOH", 30)
	pour(t, w, "CuSO4", 30)
	settle(w, 2*DefaultSettleDelay)

	v := w.Vessel()
	assert.Equal(t, []string{"HCl", "NaOH", "CuSO4"}, v.Contained)
	assert.Equal(t, w.blend(v.Contained).Clamped().Hex(), v.TargetColor)
	assert.Len(t, rec.events, 1)
}

func TestReactionFlagsStayUntilReset(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "Phenolphthalein", "NaOH")

	pour(t, w, "Phenolphthalein", 60)
	pour(t, w, "NaOH", 30)
	v := w.Vessel()
	assert.True(t, v.Effervescence)
	assert.True(t, v.Precipitate)
	require.NotNil(t, v.Reaction)
	assert.Equal(t, "Pink", v.Reaction.Observation)
	assert.Contains(t, w.Describe(), "fizzing")

	w.Reset()
	v = w.Vessel()
	assert.False(t, v.Effervescence)
	assert.False(t, v.Precipitate)
	assert.Nil(t, v.Reaction)
	assert.Equal(t, "The beaker is empty.", w.Describe())
}

func TestReducedMotionSnaps(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")
	opts := w.Options()
	opts.ReducedMotion = true
	w.SetOptions(opts)

	c, _ := w.Container("HCl")
	require.NoError(t, w.DragStart("HCl", c.Position))
	require.NoError(t, w.DragMove("HCl", PourPoint()))
	c, _ = w.Container("HCl")
	assert.Equal(t, PourPoint(), c.Position)

	w.Tick(ReferenceTick)
	c, _ = w.Container("HCl")
	assert.InDelta(t, PourTilt, c.Tilt, 1e-12)
	assert.Equal(t, "#ff0000", w.Vessel().CurrentColor)
}

func TestTimeEasingMatchesFrameEasingAtReferenceRate(t *testing.T) {
	frame, _, _ := newTestWorkspace(t, "HCl")
	timed, _, _ := newTestWorkspace(t, "HCl")
	timed.SetOptions(DefaultOptions())

	pour(t, frame, "HCl", 50)
	pour(t, timed, "HCl", 50)

	f, _ := frame.Container("HCl")
	tm, _ := timed.Container("HCl")
	assert.InDelta(t, f.Remaining, tm.Remaining, 1e-9)
	assert.InDelta(t, frame.Vessel().LiquidLevel, timed.Vessel().LiquidLevel, 1e-9)
}

func TestTimeEasingIsRateIndependent(t *testing.T) {
	w, _, _ := newTestWorkspace(t, "HCl")
	w.SetOptions(DefaultOptions())

	c, _ := w.Container("HCl")
	require.NoError(t, w.DragStart("HCl", c.Position))
	for range 30 {
		require.NoError(t, w.DragMove("HCl", PourPoint()))
	}
	w.Tick(10 * ReferenceTick)
	one, _ := w.Container("HCl")

	w2, _, _ := newTestWorkspace(t, "HCl")
	w2.SetOptions(DefaultOptions())
	c, _ = w2.Container("HCl")
	require.NoError(t, w2.DragStart("HCl", c.Position))
	for range 30 {
		require.NoError(t, w2.DragMove("HCl", PourPoint()))
	}
	for range 10 {
		w2.Tick(ReferenceTick)
	}
	ten, _ := w2.Container("HCl")

	assert.InDelta(t, ten.Tilt, one.Tilt, 1e-9)
	assert.InDelta(t, ten.Remaining, one.Remaining, 1e-9)
	assert.False(t, math.IsNaN(one.Tilt))
}
