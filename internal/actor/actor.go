// Package actor provides a minimal single-consumer mailbox runtime.
//
// draftcast funnels every mutation of the shared channel connection through
// one actor so that frame ordering on the wire matches call ordering.
package actor

import (
	"context"
	"fmt"
	"sync"

	"github.com/draftcast/draftcast/internal/logger"
)

// Message represents a message sent to an actor
type Message interface {
	Type() string
}

// Actor processes messages one at a time from its mailbox
type Actor interface {
	// Receive processes a single incoming message
	Receive(ctx context.Context, msg Message) error
	// Start starts the actor
	Start(ctx context.Context) error
	// Stop stops the actor gracefully
	Stop(ctx context.Context) error
	// ID returns the actor's unique identifier
	ID() string
}

// Ref is a handle to a running actor for sending messages
type Ref struct {
	id         string
	mailbox    chan Message
	actor      Actor
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	mu         sync.RWMutex
	stopped    bool
	sequential bool
	sequenceMu sync.Mutex
	ctx        context.Context
}

// Option configures a Ref
type Option func(*Ref)

// WithSequentialProcessing disables the internal run loop and makes Send
// block until Receive returns. Used in tests where ordering must be observed
// synchronously.
func WithSequentialProcessing() Option {
	return func(ref *Ref) {
		ref.sequential = true
	}
}

// NewRef creates an actor reference with the given ID, implementation and
// mailbox size.
func NewRef(id string, actor Actor, mailboxSize int, opts ...Option) *Ref {
	ref := &Ref{
		id:      id,
		actor:   actor,
		mailbox: make(chan Message, mailboxSize),
	}
	for _, opt := range opts {
		opt(ref)
	}
	return ref
}

// ID returns the actor's ID
func (ref *Ref) ID() string {
	return ref.id
}

// Send delivers a message to the actor's mailbox without blocking. A full
// mailbox is an error; the caller decides whether dropping matters.
func (ref *Ref) Send(msg Message) error {
	ref.mu.RLock()
	if ref.stopped {
		ref.mu.RUnlock()
		return fmt.Errorf("actor %s is stopped", ref.id)
	}
	sequential := ref.sequential
	ctx := ref.ctx
	ref.mu.RUnlock()

	if sequential {
		ref.sequenceMu.Lock()
		defer ref.sequenceMu.Unlock()
		if err := ref.actor.Receive(ctx, msg); err != nil {
			logger.Error("Actor %s error processing message: %v", ref.id, err)
		}
		return nil
	}

	select {
	case ref.mailbox <- msg:
		return nil
	default:
		return fmt.Errorf("actor %s mailbox is full", ref.id)
	}
}

// Start starts the actor's message processing loop
func (ref *Ref) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	ref.cancel = cancel

	if err := ref.actor.Start(ctx); err != nil {
		cancel()
		return err
	}

	ref.mu.Lock()
	ref.ctx = ctx
	ref.mu.Unlock()

	if ref.sequential {
		return nil
	}

	ref.wg.Add(1)
	go ref.run(ctx)
	return nil
}

// Stop stops the actor gracefully
func (ref *Ref) Stop(ctx context.Context) error {
	ref.mu.Lock()
	if ref.stopped {
		ref.mu.Unlock()
		return nil
	}
	ref.stopped = true
	ref.mu.Unlock()

	if ref.cancel != nil {
		ref.cancel()
	}

	done := make(chan struct{})
	go func() {
		ref.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return ref.actor.Stop(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (ref *Ref) run(ctx context.Context) {
	defer ref.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ref.mailbox:
			if err := ref.actor.Receive(ctx, msg); err != nil {
				// Log error but continue processing
				logger.Error("Actor %s error processing message: %v", ref.id, err)
			}
		}
	}
}
