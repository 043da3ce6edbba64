package tui

import "github.com/tatianab/virtual-lab/internal/engine"

// statusPresenter collects what the workspace reports during a tick so the
// model can fold it into the next frame.
type statusPresenter struct {
	announcements []string
	events        []engine.ReactionEvent
	cursor        engine.Cursor
}

func (p *statusPresenter) Announce(message string) {
	p.announcements = append(p.announcements, message)
}

func (p *statusPresenter) SetCursor(c engine.Cursor) {
	p.cursor = c
}

func (p *statusPresenter) ReactionComplete(ev engine.ReactionEvent) {
	p.events = append(p.events, ev)
}

func (p *statusPresenter) drain() ([]string, []engine.ReactionEvent) {
	announcements, events := p.announcements, p.events
	p.announcements, p.events = nil, nil
	return announcements, events
}
