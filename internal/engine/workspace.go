// Package engine simulates the mixing workspace: containers dragged over a
// beaker, liquid poured between them and reactions looked up when chemicals
// meet. It is renderer-free and single-threaded; every call, including Tick,
// must come from the same goroutine.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/tatianab/virtual-lab/internal/chem"
)

// MaxContainers is how many chemicals may sit on the bench at once.
const MaxContainers = 2

// DefaultSettleDelay is the pause between a reaction and its announcement.
const DefaultSettleDelay = time.Second

var (
	ErrNoSelection   = errors.New("no chemicals selected")
	ErrWorkspaceFull = fmt.Errorf("at most %d chemicals can be placed at once", MaxContainers)
	ErrAlreadyPlaced = errors.New("chemical is already on the bench")
	ErrNotPlaced     = errors.New("chemical is not on the bench")
	ErrNotDragging   = errors.New("container is not being dragged")
)

// Options tune a Workspace.
type Options struct {
	Easing Easing
	// ReducedMotion makes tilt, colour and snap-back changes instant.
	ReducedMotion bool
	SettleDelay   time.Duration
}

// DefaultOptions returns time-based easing and a one second settle delay.
func DefaultOptions() Options {
	return Options{
		Easing:      EaseTime,
		SettleDelay: DefaultSettleDelay,
	}
}

type pendingReaction struct {
	due   time.Duration
	event ReactionEvent
}

// Workspace is one mixing session: up to MaxContainers containers and a beaker.
type Workspace struct {
	lab       *chem.Lab
	presenter Presenter
	log       logrus.FieldLogger
	opts      Options

	containers *orderedmap.OrderedMap[string, *Container]
	vessel     Vessel

	dragged    string
	dragOffset mgl64.Vec3

	clock   time.Duration
	pending *pendingReaction
}

// NewWorkspace creates an empty workspace. A nil presenter discards output.
func NewWorkspace(lab *chem.Lab, presenter Presenter, log logrus.FieldLogger, opts Options) *Workspace {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	return &Workspace{
		lab:        lab,
		presenter:  presenter,
		log:        log,
		opts:       opts,
		containers: orderedmap.NewOrderedMap[string, *Container](),
		vessel:     newVessel(),
	}
}

// SetOptions changes tuning mid-session, e.g. when reduced motion is toggled.
func (w *Workspace) SetOptions(opts Options) {
	w.opts = opts
}

func (w *Workspace) Options() Options {
	return w.opts
}

// Enter starts a fresh session with the given selection, discarding whatever
// was on the bench before.
func (w *Workspace) Enter(selection []string) error {
	if len(selection) == 0 {
		return ErrNoSelection
	}
	if len(selection) > MaxContainers {
		return ErrWorkspaceFull
	}

	w.containers = orderedmap.NewOrderedMap[string, *Container]()
	w.dragged = ""
	w.resetVessel()
	for _, id := range selection {
		if err := w.Place(id); err != nil {
			return err
		}
	}
	w.log.WithField("session", w.vessel.SessionID).Infof("entered mixing workspace with %v", selection)
	return nil
}

// Place puts a chemical's container on the bench in the first free slot.
func (w *Workspace) Place(id string) error {
	if _, ok := w.containers.Get(id); ok {
		return ErrAlreadyPlaced
	}
	if w.containers.Len() >= MaxContainers {
		return ErrWorkspaceFull
	}

	c := &Container{
		ChemicalID: id,
		Name:       id,
		Remaining:  1,
		slot:       w.freeSlot(),
	}
	if chemical, ok := w.lab.Registry.Get(id); ok {
		c.Known = true
		c.Name = chemical.Name
		c.Kind = chemical.Kind()
	} else {
		w.log.WithField("chemical", id).Warn("unknown chemical placed; its container is inert")
	}
	c.Home = HomeSlot(c.slot)
	c.Position = c.Home

	w.containers.Set(id, c)
	w.presenter.Announce(fmt.Sprintf("%s placed on the bench in a %s", c.Name, c.Kind))
	return nil
}

func (w *Workspace) freeSlot() int {
	used := make(map[int]bool)
	for el := w.containers.Front(); el != nil; el = el.Next() {
		used[el.Value.slot] = true
	}
	slot := 0
	for used[slot] {
		slot++
	}
	return slot
}

// Remove takes a container off the bench. What it already poured stays in the beaker.
func (w *Workspace) Remove(id string) error {
	if _, ok := w.containers.Get(id); !ok {
		return ErrNotPlaced
	}
	if w.dragged == id {
		w.dragged = ""
		w.presenter.SetCursor(CursorDefault)
	}
	w.containers.Delete(id)
	return nil
}

// Reset empties the beaker, refills every container and puts it back in its
// slot. A reaction announcement that has not fired yet is dropped.
func (w *Workspace) Reset() {
	w.resetVessel()
	if w.dragged != "" {
		w.dragged = ""
		w.presenter.SetCursor(CursorDefault)
	}
	for el := w.containers.Front(); el != nil; el = el.Next() {
		el.Value.restore()
	}
	w.log.WithField("session", w.vessel.SessionID).Info("workspace reset")
	w.presenter.Announce("Workspace reset. The beaker is empty.")
}

func (w *Workspace) resetVessel() {
	if w.pending != nil {
		w.log.WithField("session", w.pending.event.SessionID).Debug("cancelled pending reaction announcement")
	}
	w.pending = nil
	w.vessel = newVessel()
}

// Placed lists the chemicals on the bench in placement order.
func (w *Workspace) Placed() []string {
	return w.containers.Keys()
}

// Dragged returns the id of the container being dragged, if any.
func (w *Workspace) Dragged() (string, bool) {
	return w.dragged, w.dragged != ""
}

// Clock is the simulated time elapsed since the workspace was created.
func (w *Workspace) Clock() time.Duration {
	return w.clock
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Clock      time.Duration
	Vessel     VesselSnapshot
	Containers []ContainerSnapshot
}

func (w *Workspace) Snapshot() Snapshot {
	s := Snapshot{
		Clock:      w.clock,
		Vessel:     w.vessel.snapshot(),
		Containers: make([]ContainerSnapshot, 0, w.containers.Len()),
	}
	for el := w.containers.Front(); el != nil; el = el.Next() {
		s.Containers = append(s.Containers, w.containerSnapshot(el.Value))
	}
	return s
}

// Vessel returns a snapshot of the beaker.
func (w *Workspace) Vessel() VesselSnapshot {
	return w.vessel.snapshot()
}

// Container returns a snapshot of one container.
func (w *Workspace) Container(id string) (ContainerSnapshot, bool) {
	c, ok := w.containers.Get(id)
	if !ok {
		return ContainerSnapshot{}, false
	}
	return w.containerSnapshot(c), true
}

func (w *Workspace) containerSnapshot(c *Container) ContainerSnapshot {
	return ContainerSnapshot{
		ChemicalID: c.ChemicalID,
		Name:       c.Name,
		Kind:       c.Kind,
		Known:      c.Known,
		Position:   c.Position,
		Tilt:       c.Tilt,
		Remaining:  c.Remaining,
		Squeezed:   c.Squeezed,
		Dragged:    w.dragged == c.ChemicalID,
		Returning:  c.snap != nil,
		InPourZone: inPourZone(c),
	}
}
