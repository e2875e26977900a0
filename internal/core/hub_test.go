package core

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T, opts ...HubOption) (*Hub, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	hub := NewHub(newTestRouter(), opts...)
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, cancel
}

func registerClient(t *testing.T, hub *Hub, buffer int) *Client {
	t.Helper()

	c := NewClient(buffer)
	if err := hub.RegisterClient(context.Background(), c); err != nil {
		t.Fatalf("register client: %v", err)
	}
	ev := mustEvent(t, c.Events, EventConnected)
	if ev.ClientID != c.ID {
		t.Fatalf("connected event carries %s, client has %s", ev.ClientID, c.ID)
	}
	return c
}

func submit(t *testing.T, hub *Hub, c *Client, cmd Command) {
	t.Helper()

	if err := hub.Submit(context.Background(), c, cmd); err != nil {
		t.Fatalf("submit %s: %v", CommandName(cmd), err)
	}
}

func hubStats(t *testing.T, hub *Hub) Stats {
	t.Helper()

	stats, err := hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	return stats
}

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	hub, _ := startHub(t)

	alice := registerClient(t, hub, 8)
	bob := registerClient(t, hub, 8)

	submit(t, hub, alice, CreateRoom{SenderName: "alice"})
	room := mustEvent(t, alice.Events, EventRoomCreated).Room

	submit(t, hub, bob, JoinRoom{RoomID: room, SenderName: "bob"})
	if joined := mustEvent(t, bob.Events, EventRoomJoined); joined.Room != room {
		t.Fatalf("joined %s, want %s", joined.Room, room)
	}

	joinEv := mustEvent(t, alice.Events, EventUserJoined)
	if joinEv.SenderID != bob.ID || joinEv.SenderName != "bob" {
		t.Fatalf("unexpected join notice: %+v", joinEv)
	}

	submit(t, hub, alice, SendMessage{RoomID: room, Text: "hi"})
	msgEv := mustEvent(t, bob.Events, EventChatMessage)
	if msgEv.Message != "hi" || msgEv.SenderID != alice.ID || msgEv.SenderName != "alice" {
		t.Fatalf("unexpected chat event: %+v", msgEv)
	}
	noEvent(t, alice.Events)

	submit(t, hub, alice, LeaveRoom{})
	leftEv := mustEvent(t, bob.Events, EventUserLeft)
	if leftEv.SenderID != alice.ID || leftEv.Room != room {
		t.Fatalf("unexpected leave notice: %+v", leftEv)
	}
	mustEvent(t, alice.Events, EventRoomLeft)
}

func TestHubJoinUnknownRoomProducesError(t *testing.T) {
	hub, _ := startHub(t)

	alice := registerClient(t, hub, 8)
	submit(t, hub, alice, JoinRoom{RoomID: "ghost"})

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("unexpected error event: %+v", ev.Error)
	}
}

func TestHubSendWithoutJoinProducesError(t *testing.T) {
	hub, _ := startHub(t)

	alice := registerClient(t, hub, 8)
	submit(t, hub, alice, SendMessage{RoomID: "general", Text: "hi"})

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotInRoom {
		t.Fatalf("unexpected error event: %+v", ev.Error)
	}
}

func TestHubUnregisterNotifiesRoomAndClosesEvents(t *testing.T) {
	hub, _ := startHub(t)

	alice := registerClient(t, hub, 8)
	bob := registerClient(t, hub, 8)

	submit(t, hub, alice, CreateRoom{})
	room := mustEvent(t, alice.Events, EventRoomCreated).Room
	submit(t, hub, bob, JoinRoom{RoomID: room})
	mustEvent(t, alice.Events, EventUserJoined)

	hub.UnregisterClient(bob)
	hub.UnregisterClient(bob)

	if left := mustEvent(t, alice.Events, EventUserLeft); left.SenderID != bob.ID {
		t.Fatalf("user_left for %s, want %s", left.SenderID, bob.ID)
	}
	noEvent(t, alice.Events)

	deadline := time.After(time.Second)
	for closed := false; !closed; {
		select {
		case _, ok := <-bob.Events:
			closed = !ok
		case <-deadline:
			t.Fatal("events channel not closed after unregister")
		}
	}

	if stats := hubStats(t, hub); stats != (Stats{Sessions: 1, Rooms: 1}) {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestHubSlowConsumerDoesNotBlockOthers(t *testing.T) {
	hub, _ := startHub(t)

	sender := registerClient(t, hub, 8)
	slow := registerClient(t, hub, 1)
	fast := registerClient(t, hub, 64)

	submit(t, hub, sender, CreateRoom{})
	room := mustEvent(t, sender.Events, EventRoomCreated).Room
	submit(t, hub, slow, JoinRoom{RoomID: room})
	submit(t, hub, fast, JoinRoom{RoomID: room})
	mustEvent(t, fast.Events, EventRoomJoined)

	// slow never reads: its single slot fills up and later events are dropped.
	const messages = 20
	for n := 0; n < messages; n++ {
		submit(t, hub, sender, SendMessage{RoomID: room, Text: "spam"})
	}

	for n := 0; n < messages; n++ {
		mustEvent(t, fast.Events, EventChatMessage)
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	hub, cancel := startHub(t)

	alice := registerClient(t, hub, 8)
	cancel()
	<-hub.Done()

	if _, ok := <-alice.Events; ok {
		t.Fatal("events channel still open after shutdown")
	}

	if err := hub.RegisterClient(context.Background(), NewClient(1)); err != ErrHubStopped {
		t.Fatalf("register after shutdown: %v", err)
	}
	hub.UnregisterClient(alice)

	if _, err := hub.Stats(context.Background()); err != ErrHubStopped {
		t.Fatalf("stats after shutdown: %v", err)
	}
}

func TestHubIgnoresUnregisteredClient(t *testing.T) {
	hub, _ := startHub(t)

	stranger := NewClient(1)
	submit(t, hub, stranger, CreateRoom{})
	hub.UnregisterClient(stranger)

	if stats := hubStats(t, hub); stats != (Stats{}) {
		t.Fatalf("stranger changed state: %+v", stats)
	}
}
