package engine

import (
	"github.com/google/uuid"
	"github.com/tatianab/virtual-lab/internal/models"
)

// Cursor is the pointer shape the workspace asks the renderer to show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

// ReactionEvent is delivered once per vessel lifetime, after the settle delay.
type ReactionEvent struct {
	SessionID uuid.UUID
	Chemicals []string
	Result    models.ReactionResult
}

// Presenter is everything the workspace tells the outside world. The engine
// never touches a screen or speaker directly.
type Presenter interface {
	// Announce is a short message for the live status line or a screen reader.
	Announce(message string)
	SetCursor(c Cursor)
	ReactionComplete(ev ReactionEvent)
}

// NopPresenter discards everything.
type NopPresenter struct{}

func (NopPresenter) Announce(string)                {}
func (NopPresenter) SetCursor(Cursor)               {}
func (NopPresenter) ReactionComplete(ReactionEvent) {}
