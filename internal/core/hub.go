package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/metrics"
)

const defaultInboxSize = 256

type requestKind int

const (
	requestRegister requestKind = iota
	requestCommand
	requestUnregister
	requestStats
)

type request struct {
	kind   requestKind
	client *Client
	cmd    Command
	ack    chan struct{} // closed once a registration is applied
	stats  chan Stats
}

// Hub serializes all access to the Router on a single goroutine and delivers
// the resulting events to client channels without ever blocking on a client.
type Hub struct {
	router  *Router
	clients map[SessionID]*Client
	inbox   chan request
	done    chan struct{}
	log     *zerolog.Logger
	metrics *metrics.Metrics
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the hub logger.
func WithHubLogger(logger *zerolog.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.log = logger
		}
	}
}

// WithMetrics records hub activity in m.
func WithMetrics(m *metrics.Metrics) HubOption {
	return func(h *Hub) {
		h.metrics = m
	}
}

// WithInboxSize sets how many requests may queue before callers block.
func WithInboxSize(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.inbox = make(chan request, size)
		}
	}
}

// NewHub creates a hub around router. A nil router gets a default one.
func NewHub(router *Router, opts ...HubOption) *Hub {
	if router == nil {
		router = NewRouter()
	}
	nop := zerolog.Nop()
	h := &Hub{
		router:  router,
		clients: make(map[SessionID]*Client),
		inbox:   make(chan request, defaultInboxSize),
		done:    make(chan struct{}),
		log:     &nop,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes requests until ctx is cancelled. It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case req := <-h.inbox:
			h.handle(req)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// RegisterClient opens a session for c and sets c.ID. The connected event is
// already queued on c.Events when it returns.
func (h *Hub) RegisterClient(ctx context.Context, c *Client) error {
	req := request{kind: requestRegister, client: c, ack: make(chan struct{})}
	if err := h.enqueue(ctx, req); err != nil {
		return err
	}
	// Once queued the registration is applied promptly; waiting on ctx here could
	// leave a session behind that the caller never learns about.
	select {
	case <-req.ack:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Submit queues a command from c.
func (h *Hub) Submit(ctx context.Context, c *Client, cmd Command) error {
	return h.enqueue(ctx, request{kind: requestCommand, client: c, cmd: cmd})
}

// UnregisterClient closes c's session. Calling it again, or after the hub
// stopped, is a no-op.
func (h *Hub) UnregisterClient(c *Client) {
	_ = h.enqueue(context.Background(), request{kind: requestUnregister, client: c})
}

// Stats reads the session and room counts through the hub loop.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	req := request{kind: requestStats, stats: make(chan Stats, 1)}
	if err := h.enqueue(ctx, req); err != nil {
		return Stats{}, err
	}
	select {
	case st := <-req.stats:
		return st, nil
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

func (h *Hub) enqueue(ctx context.Context, req request) error {
	select {
	case h.inbox <- req:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handle(req request) {
	switch req.kind {
	case requestRegister:
		id, out := h.router.Connect()
		req.client.ID = id
		h.clients[id] = req.client
		h.metrics.SessionOpened()
		close(req.ack)
		h.deliver(out)

	case requestCommand:
		if !h.owns(req.client) {
			return
		}
		h.metrics.CommandHandled(CommandName(req.cmd))
		h.deliver(h.router.Handle(req.client.ID, req.cmd))
		h.metrics.SetRooms(h.router.Stats().Rooms)

	case requestUnregister:
		if !h.owns(req.client) {
			return
		}
		out := h.router.Handle(req.client.ID, Disconnect{})
		delete(h.clients, req.client.ID)
		close(req.client.Events)
		h.metrics.SessionClosed()
		h.metrics.SetRooms(h.router.Stats().Rooms)
		h.deliver(out)

	case requestStats:
		req.stats <- h.router.Stats()
	}
}

// owns reports whether c is the client currently registered under its id.
func (h *Hub) owns(c *Client) bool {
	if c == nil || c.ID == "" {
		return false
	}
	registered, ok := h.clients[c.ID]
	return ok && registered == c
}

// deliver queues events without blocking. A full client buffer loses the event
// for that client only.
func (h *Hub) deliver(out []Delivery) {
	for _, d := range out {
		client, ok := h.clients[d.To]
		if !ok {
			continue
		}
		select {
		case client.Events <- d.Event:
			h.metrics.EventDelivered(d.Event.Kind.String())
		default:
			h.metrics.EventDropped()
			h.log.Warn().Str("session_id", string(d.To)).Str("event", d.Event.Kind.String()).Msg("client buffer full, event dropped")
		}
	}
}

func (h *Hub) shutdown() {
	for id, client := range h.clients {
		close(client.Events)
		delete(h.clients, id)
	}
	h.router.Reset()
	h.metrics.SetSessions(0)
	h.metrics.SetRooms(0)
	h.log.Info().Msg("hub stopped, all sessions closed")
}
