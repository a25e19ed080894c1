// Package relay drives the channel client from the editor's document event
// stream: join on open, boundary-gated push on change, unconditional push on
// save.
package relay

import (
	"github.com/draftcast/draftcast/internal/draft"
	"github.com/draftcast/draftcast/internal/logger"
)

// Channel is the slice of the channel client the relay needs
type Channel interface {
	Join(slug string)
	Push(content string)
}

// Relay tracks the single active topic for the process. The editor event
// stream is sequential, so no locking is needed here; ordering is enforced
// downstream by the channel actor.
type Relay struct {
	channel     Channel
	currentSlug string
}

// New creates a relay on top of a channel client
func New(channel Channel) *Relay {
	return &Relay{channel: channel}
}

// CurrentSlug returns the active topic slug, or "" before the first open
func (r *Relay) CurrentSlug() string {
	return r.currentSlug
}

// OnEvent consumes one document lifecycle event. Non-markdown documents are
// ignored entirely: no join, no push.
func (r *Relay) OnEvent(ev draft.Event) {
	if !draft.IsMarkdown(ev.Path) {
		logger.Debug("Ignoring %s event for non-markdown document %s", ev.Kind, ev.Path)
		return
	}

	slug := draft.Slug(ev.Path)

	switch ev.Kind {
	case draft.EventOpen:
		r.join(slug)
	case draft.EventChange:
		// Switching files mid-stream re-targets the topic without a
		// fresh open event.
		if slug != r.currentSlug {
			r.join(slug)
		}
		if draft.EndsOnBoundary(ev.Text) {
			r.channel.Push(ev.Text)
		}
	case draft.EventSave:
		if slug != r.currentSlug {
			r.join(slug)
		}
		// Save is the one guaranteed synchronization point: push
		// regardless of any trailing boundary.
		r.channel.Push(ev.Text)
	}
}

func (r *Relay) join(slug string) {
	logger.Info("Streaming draft %q", slug)
	r.channel.Join(slug)
	r.currentSlug = slug
}
