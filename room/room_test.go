package room

import (
	"testing"

	"brawlroom/config"
	"brawlroom/transport"
	"brawlroom/wire"
)

func newTestRoom() *Room {
	hub := transport.NewHub(nil, 120, 60)
	return New("test-room", config.DefaultSim(), hub.Scheduler())
}

func newFakeClient() (*transport.Client, chan transport.ClientMessageOut) {
	out := make(chan transport.ClientMessageOut, 64)
	return transport.NewClient(out), out
}

// drainMessages parses and returns every message currently queued on out,
// without blocking for more.
func drainMessages(t *testing.T, out chan transport.ClientMessageOut) []*wire.Message {
	t.Helper()

	var msgs []*wire.Message

	for {
		select {
		case raw := <-out:
			m, ok := wire.Parse(raw.M)

			if !ok {
				t.Fatalf("failed to parse a broadcast message")
			}

			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func messagesOfType(msgs []*wire.Message, typ string) []*wire.Message {
	var out []*wire.Message

	for _, m := range msgs {
		if m.Type == typ {
			out = append(out, m)
		}
	}

	return out
}

func TestJoinSendsExistingPlayersToLateJoiner(t *testing.T) {
	r := newTestRoom()

	clientA, outA := newFakeClient()
	clientB, outB := newFakeClient()

	if err := r.Join(clientA, "a", "Alice"); err != nil {
		t.Fatalf("unexpected error joining first client: %v", err)
	}

	drainMessages(t, outA) // first client's own team-assigned; irrelevant here

	if err := r.Join(clientB, "b", "Bob"); err != nil {
		t.Fatalf("unexpected error joining second client: %v", err)
	}

	added := messagesOfType(drainMessages(t, outB), "player-added")

	var sawA bool

	for _, m := range added {
		id, _ := m.GetString("playerId")

		if id == "a" {
			sawA = true
		}
	}

	if !sawA {
		t.Fatalf("expected the late joiner to receive a player-added for the already-present player 'a', got %d player-added messages", len(added))
	}
}

func TestJoinSendsExistingBulletsToLateJoiner(t *testing.T) {
	r := newTestRoom()

	clientA, outA := newFakeClient()
	clientB, outB := newFakeClient()

	if err := r.Join(clientA, "a", "Alice"); err != nil {
		t.Fatalf("unexpected error joining first client: %v", err)
	}

	if err := r.HandleMessage(clientA, wire.New("shoot").Add("x", 200.0).Add("y", 500.0)); err != nil {
		t.Fatalf("unexpected error handling shoot: %v", err)
	}

	drainMessages(t, outA)

	if err := r.Join(clientB, "b", "Bob"); err != nil {
		t.Fatalf("unexpected error joining second client: %v", err)
	}

	bulletsAdded := messagesOfType(drainMessages(t, outB), "bullet-added")

	if len(bulletsAdded) != 1 {
		t.Fatalf("expected the late joiner to receive one catch-up bullet-added, got %d", len(bulletsAdded))
	}
}

func TestJoinBalancesTeamsAndRejectsWhenFull(t *testing.T) {
	r := newTestRoom()

	clientA, _ := newFakeClient()

	if err := r.Join(clientA, "a", "Alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p := r.state.Players["a"]; p.Team != TeamRed {
		t.Fatalf("expected the first joiner to land on red (ties go red), got %v", p.Team)
	}

	clientB, _ := newFakeClient()

	if err := r.Join(clientB, "b", "Bob"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p := r.state.Players["b"]; p.Team != TeamBlue {
		t.Fatalf("expected the second joiner to balance onto blue, got %v", p.Team)
	}

	for i := 0; i < r.sim.MaxClients-2; i++ {
		c, _ := newFakeClient()

		if err := r.Join(c, string(rune('c'+i)), "filler"); err != nil {
			t.Fatalf("unexpected error filling the room: %v", err)
		}
	}

	overflowClient, outOverflow := newFakeClient()

	if err := r.Join(overflowClient, "overflow", "Overflow"); err != nil {
		t.Fatalf("unexpected error from a full-room join attempt: %v", err)
	}

	errs := messagesOfType(drainMessages(t, outOverflow), "room_full_error")

	if len(errs) != 1 {
		t.Fatalf("expected a room_full_error for the overflow join, got %d", len(errs))
	}

	if _, ok := r.state.Players["overflow"]; ok {
		t.Fatal("expected the overflow join not to be added to the room")
	}
}

func TestLeaveRemovesPlayerAndNotifiesOthers(t *testing.T) {
	r := newTestRoom()

	clientA, outA := newFakeClient()
	clientB, outB := newFakeClient()

	r.Join(clientA, "a", "Alice")
	r.Join(clientB, "b", "Bob")

	drainMessages(t, outA)
	drainMessages(t, outB)

	if err := r.Leave(clientA, true); err != nil {
		t.Fatalf("unexpected error leaving: %v", err)
	}

	if _, ok := r.state.Players["a"]; ok {
		t.Fatal("expected the leaving player to be removed from state")
	}

	removed := messagesOfType(drainMessages(t, outB), "player-removed")

	if len(removed) != 1 {
		t.Fatalf("expected the remaining client to see one player-removed, got %d", len(removed))
	}

	id, _ := removed[0].GetString("playerId")

	if id != "a" {
		t.Fatalf("expected player-removed for 'a', got %q", id)
	}
}

func TestLeaveOfUnknownClientIsANoOp(t *testing.T) {
	r := newTestRoom()

	stranger, _ := newFakeClient()

	if err := r.Leave(stranger, true); err != nil {
		t.Fatalf("expected no error leaving a room the client never joined, got %v", err)
	}
}

func TestHandleMessageRejectsUnjoinedClient(t *testing.T) {
	r := newTestRoom()

	stranger, out := newFakeClient()

	if err := r.HandleMessage(stranger, wire.New("move")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs := messagesOfType(drainMessages(t, out), "room_not_joined_error")

	if len(errs) != 1 {
		t.Fatalf("expected a room_not_joined_error, got %d matching messages", len(errs))
	}
}

func TestHandleMessageMoveUpdatesPose(t *testing.T) {
	r := newTestRoom()

	client, _ := newFakeClient()
	r.Join(client, "a", "Alice")

	move := wire.New("move").
		Add("x", 123.0).Add("y", 456.0).
		Add("velocityX", 1.0).Add("velocityY", -1.0).
		Add("flipX", true)

	if err := r.HandleMessage(client, move); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := r.state.Players["a"]

	if p.X != 123 || p.Y != 456 || !p.FlipX {
		t.Fatalf("expected move to update pose, got %+v", p)
	}
}

func TestHandleMessageShootBroadcastsBulletAdded(t *testing.T) {
	r := newTestRoom()

	client, out := newFakeClient()
	r.Join(client, "a", "Alice")

	drainMessages(t, out)

	if err := r.HandleMessage(client, wire.New("shoot").Add("x", 10.0).Add("y", 20.0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	added := messagesOfType(drainMessages(t, out), "bullet-added")

	if len(added) != 1 {
		t.Fatalf("expected one bullet-added broadcast, got %d", len(added))
	}
}

func TestHandleMessageUnknownTypeRepliesWithError(t *testing.T) {
	r := newTestRoom()

	client, out := newFakeClient()
	r.Join(client, "a", "Alice")

	drainMessages(t, out)

	if err := r.HandleMessage(client, wire.New("not-a-real-message")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errs := messagesOfType(drainMessages(t, out), "room_unknown_message_error")

	if len(errs) != 1 {
		t.Fatalf("expected a room_unknown_message_error, got %d", len(errs))
	}
}
