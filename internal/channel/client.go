// Package channel owns the persistent websocket to the subscriber service:
// the join/ack state machine, the outbound ref counter and the reconnect
// policy. All mutation runs on a single actor mailbox so frame order on the
// wire matches call order.
package channel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/draftcast/draftcast/internal/actor"
	"github.com/draftcast/draftcast/internal/logger"
)

// State is the connection's position in the join lifecycle
type State int

const (
	// StateDisconnected indicates no transport is open
	StateDisconnected State = iota
	// StateConnecting indicates a dial is in progress
	StateConnecting
	// StateConnected indicates an open transport with no joined topic
	StateConnected
	// StateJoining indicates a join frame was sent and its ack is pending
	StateJoining
	// StateJoined indicates the current topic's join was acknowledged
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	default:
		return "unknown"
	}
}

// Conn is the transport surface the client needs. *websocket.Conn satisfies
// it; tests substitute a fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Dialer opens the transport for a derived socket URL
type Dialer func(socketURL string) (Conn, error)

func defaultDialer(socketURL string) (Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := d.Dial(socketURL, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config holds client configuration
type Config struct {
	// URL is the base HTTP(S) endpoint; the socket URL is derived from it
	URL string
	// Token authenticates the join handshake
	Token string
	// Dialer opens the transport; defaults to a gorilla websocket dial
	Dialer Dialer
	// WriteTimeout bounds a single frame write
	WriteTimeout time.Duration
	// ReconnectDelay is the pause between a disconnect and the redial
	ReconnectDelay time.Duration
	// MailboxSize is the actor mailbox capacity
	MailboxSize int
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		URL:            "http://localhost:4000",
		Dialer:         defaultDialer,
		WriteTimeout:   10 * time.Second,
		ReconnectDelay: 3 * time.Second,
		MailboxSize:    64,
	}
}

// Actor mailbox messages. Everything that touches connection state arrives
// through one of these.

type connectMsg struct{ done chan error }

func (connectMsg) Type() string { return "connect" }

type joinMsg struct{ slug string }

func (joinMsg) Type() string { return "join" }

type pushMsg struct{ content string }

func (pushMsg) Type() string { return "push" }

type inboundMsg struct {
	connID string
	data   []byte
}

func (inboundMsg) Type() string { return "inbound" }

type disconnectMsg struct {
	connID string
	err    error
}

func (disconnectMsg) Type() string { return "disconnect" }

type endpointMsg struct{ url, token string }

func (endpointMsg) Type() string { return "endpoint" }

// channelActor owns every piece of mutable connection state. It only ever
// runs on the actor goroutine.
type channelActor struct {
	cfg *Config

	conn   Conn
	connID string

	slug    string
	ref     uint64
	lastRef uint64

	state   atomic.Int32
	backoff backoff.BackOff

	// post delivers messages from the read loop back into the mailbox
	post func(actor.Message) error
}

func newChannelActor(cfg *Config) *channelActor {
	return &channelActor{
		cfg:     cfg,
		backoff: backoff.NewConstantBackOff(cfg.ReconnectDelay),
	}
}

func (a *channelActor) ID() string { return "channel" }

func (a *channelActor) Start(ctx context.Context) error { return nil }

func (a *channelActor) Stop(ctx context.Context) error {
	a.closeConn()
	a.setState(StateDisconnected)
	return nil
}

func (a *channelActor) Receive(ctx context.Context, msg actor.Message) error {
	switch m := msg.(type) {
	case connectMsg:
		err := a.ensureConnected()
		if m.done != nil {
			m.done <- err
		}
	case joinMsg:
		a.handleJoin(m.slug)
	case pushMsg:
		a.handlePush(m.content)
	case inboundMsg:
		a.handleInbound(m)
	case disconnectMsg:
		a.handleDisconnect(ctx, m)
	case endpointMsg:
		a.cfg.URL = m.url
		a.cfg.Token = m.token
		logger.Info("Channel endpoint updated to %s; applies on next connect", m.url)
	default:
		return fmt.Errorf("unexpected message type %q", msg.Type())
	}
	return nil
}

func (a *channelActor) currentState() State {
	return State(a.state.Load())
}

func (a *channelActor) setState(s State) {
	old := a.currentState()
	a.state.Store(int32(s))
	if old != s {
		logger.Debug("Channel state %s -> %s", old, s)
	}
}

// ensureConnected lazily opens the transport. A dial failure is non-fatal:
// the client stays disconnected and the next Join or Push dials again.
func (a *channelActor) ensureConnected() error {
	if a.conn != nil {
		return nil
	}

	a.setState(StateConnecting)

	socketURL, err := SocketURL(a.cfg.URL, a.cfg.Token)
	if err != nil {
		a.setState(StateDisconnected)
		cerr := NewError(CodeConnection, "cannot derive socket URL", err.Error())
		logger.Error("%v", cerr)
		return cerr
	}

	conn, err := a.cfg.Dialer(socketURL)
	if err != nil {
		a.setState(StateDisconnected)
		cerr := NewError(CodeConnection, "dial failed", err.Error())
		logger.Error("%v", cerr)
		return cerr
	}

	a.conn = conn
	a.connID = uuid.NewString()
	a.backoff.Reset()
	a.setState(StateConnected)
	logger.Info("Connected to %s (conn %s)", socketURL, a.connID)

	go a.readLoop(conn, a.connID)
	return nil
}

// readLoop runs one goroutine per transport and feeds everything back into
// the mailbox tagged with its connection ID, so frames and failures from a
// superseded connection are ignored.
func (a *channelActor) readLoop(conn Conn, connID string) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = a.post(disconnectMsg{connID: connID, err: err})
			return
		}
		if err := a.post(inboundMsg{connID: connID, data: data}); err != nil {
			return
		}
	}
}

func (a *channelActor) handleJoin(slug string) {
	if err := a.ensureConnected(); err != nil {
		// Not connected; the next document event triggers another join.
		return
	}

	a.ref++
	a.lastRef = a.ref
	a.slug = slug
	a.setState(StateJoining)

	frame := &Frame{
		Topic:   Topic(slug),
		Event:   EventJoin,
		Payload: joinPayload{Token: a.cfg.Token},
		Ref:     a.ref,
	}
	if err := a.writeFrame(frame); err != nil {
		logger.Error("Join write failed for %s: %v", Topic(slug), err)
		a.teardown(err)
		return
	}
	logger.Info("Joining %s (ref %d)", Topic(slug), a.ref)
}

func (a *channelActor) handlePush(content string) {
	if a.currentState() != StateJoined {
		logger.Warn("%v", NewError(CodeDropped, "push while not joined", fmt.Sprintf("topic %s, state %s", Topic(a.slug), a.currentState())))
		return
	}

	a.ref++
	a.lastRef = a.ref

	frame := &Frame{
		Topic:   Topic(a.slug),
		Event:   EventUpdate,
		Payload: updatePayload{Content: content},
		Ref:     a.ref,
	}
	if err := a.writeFrame(frame); err != nil {
		logger.Error("Push write failed for %s: %v", Topic(a.slug), err)
		a.teardown(err)
		return
	}
	logger.Debug("Pushed %d bytes to %s (ref %d)", len(content), Topic(a.slug), a.ref)
}

func (a *channelActor) handleInbound(m inboundMsg) {
	if m.connID != a.connID {
		return
	}

	in := DecodeInbound(m.data)
	switch in.Kind {
	case InboundReplyOK:
		if in.Ref == a.lastRef && a.currentState() == StateJoining {
			a.setState(StateJoined)
			logger.Info("Join acknowledged for %s (ref %d)", Topic(a.slug), in.Ref)
		}
	case InboundReplyError:
		logger.Error("%v", NewError(CodeChannel, "server rejected frame", fmt.Sprintf("topic %s, status %q, reason %q", in.Topic, in.Status, in.Reason)))
		a.dropJoin()
	case InboundChannelError:
		logger.Error("%v", NewError(CodeChannel, "channel error", fmt.Sprintf("topic %s, reason %q", in.Topic, in.Reason)))
		a.dropJoin()
	default:
		// Unparseable or unrecognized frame: no state change.
	}
}

// dropJoin forces the not-joined state while keeping the transport open; the
// next caller-driven join re-establishes it.
func (a *channelActor) dropJoin() {
	if s := a.currentState(); s == StateJoined || s == StateJoining {
		a.setState(StateConnected)
	}
}

// teardown routes a write failure through the same path as a transport-level
// disconnect: drop joined, back off, redial once.
func (a *channelActor) teardown(err error) {
	a.handleDisconnect(context.Background(), disconnectMsg{connID: a.connID, err: err})
}

// handleDisconnect reacts to transport loss: joined drops immediately, the
// actor sleeps out the backoff window (deferring queued joins and pushes),
// then redials once. The slug is retained; rejoin stays caller-driven.
func (a *channelActor) handleDisconnect(ctx context.Context, m disconnectMsg) {
	if m.connID != a.connID || a.connID == "" {
		return
	}

	logger.Warn("Connection %s lost: %v", m.connID, m.err)
	a.closeConn()
	a.setState(StateDisconnected)

	delay := a.backoff.NextBackOff()
	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return
	}

	if err := a.ensureConnected(); err != nil {
		// Still down. The next join or push dials again.
		return
	}
}

func (a *channelActor) closeConn() {
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
	a.connID = ""
}

func (a *channelActor) writeFrame(f *Frame) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	_ = a.conn.SetWriteDeadline(time.Now().Add(a.cfg.WriteTimeout))
	return a.conn.WriteMessage(websocket.TextMessage, data)
}

// Client is the process-wide handle to the channel actor. Join and Push are
// fire-and-forget: the caller never blocks on delivery and gets no
// backpressure signal; a flooded mailbox drops the snapshot, matching the
// at-most-once policy.
type Client struct {
	cfg *Config
	act *channelActor
	ref *actor.Ref
}

// New creates a channel client. Options on cfg that are zero fall back to
// DefaultConfig values.
func New(cfg *Config, opts ...actor.Option) *Client {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	if cfg.Dialer == nil {
		cfg.Dialer = def.Dialer
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.MailboxSize == 0 {
		cfg.MailboxSize = def.MailboxSize
	}

	act := newChannelActor(cfg)
	ref := actor.NewRef(act.ID(), act, cfg.MailboxSize, opts...)
	act.post = func(m actor.Message) error { return ref.Send(m) }

	return &Client{cfg: cfg, act: act, ref: ref}
}

// Start launches the actor loop
func (c *Client) Start(ctx context.Context) error {
	return c.ref.Start(ctx)
}

// Stop shuts the actor down and closes the transport
func (c *Client) Stop(ctx context.Context) error {
	return c.ref.Stop(ctx)
}

// Connect opens the transport eagerly. Failure is non-fatal: the client is
// simply not yet usable and the next Join or Push dials again.
func (c *Client) Connect(ctx context.Context) error {
	done := make(chan error, 1)
	if err := c.ref.Send(connectMsg{done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join establishes (or re-establishes) the topic for a slug. Rejoining the
// current slug is always safe and is how recovery from a missed join works.
func (c *Client) Join(slug string) {
	if err := c.ref.Send(joinMsg{slug: slug}); err != nil {
		logger.Warn("Join for %q dropped: %v", slug, err)
	}
}

// Push transmits a full document snapshot on the current topic. A push while
// not joined is discarded with a warning; no buffering, no retry.
func (c *Client) Push(content string) {
	if err := c.ref.Send(pushMsg{content: content}); err != nil {
		logger.Warn("%v", NewError(CodeDropped, "mailbox rejected push", err.Error()))
	}
}

// SetEndpoint swaps the endpoint URL and token; the change applies on the
// next dial.
func (c *Client) SetEndpoint(url, token string) {
	if err := c.ref.Send(endpointMsg{url: url, token: token}); err != nil {
		logger.Warn("Endpoint update dropped: %v", err)
	}
}

// State returns the connection's current lifecycle state
func (c *Client) State() State {
	return c.act.currentState()
}
