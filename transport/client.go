package transport

import (
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"brawlroom/wire"
)

// A ClientMessageOut combines a message payload with a pointer to the
// client it is being sent to.
type ClientMessageOut struct {
	C *Client
	M []byte
}

// A RoomMember is whatever a client currently occupies — either nothing
// (still in the matchmaking surface) or a joined room. It is the minimal
// surface the transport layer needs; the room package satisfies it without
// the transport layer importing room (which would create a cycle).
type RoomMember interface {
	// HandleMessage processes a message from the given client, who is
	// known to be a member of this room.
	HandleMessage(c *Client, m *wire.Message) error

	// Leave removes the client from the room, consented or not (a
	// dropped connection is "not consented").
	Leave(c *Client, consented bool) error
}

// A Router dispatches the matchmaking-surface messages ("room_create",
// "room_join") a client sends before it has joined a room. It mirrors the
// teacher's LobbyManager.HandleLobbyCreate/HandleJoinRequest split, but
// generalized to arbitrary room implementations via RoomMember.
type Router interface {
	HandleCreate(c *Client) error
	HandleJoin(c *Client, roomID string) error
}

// A Client represents one connection to a player's game instance: the
// server's end of a websocket accepted by Hub. Hub populates out/conn/
// limiter; NewClient populates only out. The client-side Session type in
// package client does not use Client and keeps its own, simpler
// connection wrapper.
type Client struct {
	router Router

	// Room is the room this client currently belongs to, or nil if it
	// has not joined one yet.
	Room RoomMember

	out chan ClientMessageOut

	conn *websocket.Conn

	// limiter throttles inbound messages per client so a single
	// malfunctioning client cannot monopolize the room worker. This is
	// DoS resilience, not anti-cheat (see spec §7 and SPEC_FULL's
	// DOMAIN STACK).
	limiter *rate.Limiter
}

// NewClient returns a Client with no backing socket, queuing outbound
// messages onto out instead. It exists for tests of RoomMember
// implementations (e.g. room.Room) that need a Client to exercise Join/
// Leave/HandleMessage without standing up a real websocket connection.
func NewClient(out chan ClientMessageOut) *Client {
	return &Client{out: out}
}

// Send encodes and queues m for delivery to the client.
func (c *Client) Send(m *wire.Message) error {
	data, err := m.Encode()

	if err != nil {
		return err
	}

	c.out <- ClientMessageOut{C: c, M: data}

	return nil
}

// Receive processes one message received from the client.
func (c *Client) Receive(m *wire.Message) error {
	if !c.limiter.Allow() {
		// Silently drop; the client will simply see stale state until
		// its rate recovers. No reply, matching spec §7's "input
		// validation failure" handling.
		return nil
	}

	switch m.Type {
	case "room_create":
		return c.router.HandleCreate(c)

	case "room_join":
		id, err := m.GetString("room_id")

		if err != nil {
			return c.Send(wire.New("room_join_format_error"))
		}

		return c.router.HandleJoin(c, id)
	}

	if c.Room != nil {
		return c.Room.HandleMessage(c, m)
	}

	return c.Send(wire.New("client_unknown_message_error"))
}

// RemoteAddr returns the client's remote network address, or "" for a
// client with no live connection (used only in tests).
func (c *Client) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}

	return c.conn.RemoteAddr().String()
}
