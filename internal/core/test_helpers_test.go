package core

import (
	"errors"
	"slices"
	"strconv"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// noEvent asserts that nothing arrives on ch for a short while.
func noEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

// sequence returns a generator producing prefix1, prefix2, ...
func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestRouter() *Router {
	return NewRouter(
		WithIDGenerators(sequence("s"), sequence("r")),
		WithClock(func() time.Time { return fixedTime }),
	)
}

// handle applies cmd and checks the router invariants afterwards.
func handle(t *testing.T, r *Router, id SessionID, cmd Command) []Delivery {
	t.Helper()

	out := r.Handle(id, cmd)
	if err := r.CheckConsistency(); err != nil {
		t.Fatalf("after %s from %s: %v", CommandName(cmd), id, err)
	}
	return out
}

// deliveriesTo filters the deliveries addressed to one session.
func deliveriesTo(out []Delivery, id SessionID) []*Event {
	var events []*Event
	for _, d := range out {
		if d.To == id {
			events = append(events, d.Event)
		}
	}
	return events
}

// single returns the only delivery in out, failing otherwise.
func single(t *testing.T, out []Delivery) Delivery {
	t.Helper()

	if len(out) != 1 {
		t.Fatalf("expected 1 delivery, got %d: %+v", len(out), out)
	}
	return out[0]
}

// expectError checks that out is a single error event for id with the given code.
func expectError(t *testing.T, out []Delivery, id SessionID, code string) {
	t.Helper()

	d := single(t, out)
	if d.To != id {
		t.Fatalf("error delivered to %s, want %s", d.To, id)
	}
	if d.Event.Kind != EventError || d.Event.Error == nil {
		t.Fatalf("expected error event, got %+v", d.Event)
	}
	if d.Event.Error.Code != code {
		t.Fatalf("error code = %q, want %q", d.Event.Error.Code, code)
	}
}

func expectErrorIs(t *testing.T, err, target error) {
	t.Helper()

	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func expectMembers(t *testing.T, r *Router, room RoomID, want ...SessionID) {
	t.Helper()

	got, err := r.Members(room)
	if err != nil {
		t.Fatalf("members of %s: %v", room, err)
	}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("members of %s = %v, want %v", room, got, want)
	}
}

func expectStats(t *testing.T, r *Router, want Stats) {
	t.Helper()

	if got := r.Stats(); got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}

func mustSession(t *testing.T, r *Router, id SessionID) Session {
	t.Helper()

	sess, err := r.Session(id)
	if err != nil {
		t.Fatalf("session %s: %v", id, err)
	}
	return sess
}
