package transport

import (
	"reflect"
	"runtime"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"brawlroom/wire"
)

// Logger is the package-level structured logger, in the teacher's style:
// a single *zap.Logger shared by the whole transport layer, enriched with
// per-message fields via .With(...) at each call site.
var Logger = zap.Must(zap.NewDevelopment())

// a clientMessageIn is a message received from a client, queued for
// processing on the hub's single worker goroutine.
type clientMessageIn struct {
	c *Client
	m *wire.Message
}

// The Hub owns every client connection and the single worker goroutine
// that processes inbound messages, scheduled events, and client teardown.
// Per spec §5, no two handlers for clients in the same room ever run
// concurrently because they all funnel through this one goroutine.
type Hub struct {
	router Router

	out   chan ClientMessageOut
	event chan func()
	in    chan clientMessageIn
	kill  chan *Client

	rateLimit rateLimitConfig

	// onDisconnect, if set, is called whenever a client's connection is
	// torn down, win or lose. main.go uses it to keep the metrics
	// connection gauge accurate without the transport package importing
	// metrics.
	onDisconnect func(*Client)
}

// OnDisconnect registers fn to be called on the hub's worker whenever a
// client connection is torn down.
func (hub *Hub) OnDisconnect(fn func(*Client)) {
	hub.onDisconnect = fn
}

// SetRouter sets the hub's matchmaking-surface router. Router and Hub
// naturally depend on each other at startup — the router (roommgr.Manager)
// needs the hub's Scheduler to build rooms, and the hub needs a Router to
// dispatch to — so construction goes router-less, then wires back here.
func (hub *Hub) SetRouter(router Router) {
	hub.router = router
}

type rateLimitConfig struct {
	perSecond float64
	burst     int
}

// NewHub returns a new hub. router handles matchmaking-surface messages
// from clients who have not yet joined a room.
func NewHub(router Router, inboundRatePerSecond float64, inboundBurst int) *Hub {
	Logger.Info("creating hub")

	return &Hub{
		router: router,

		out:   make(chan ClientMessageOut, 64),
		event: make(chan func(), 64),
		in:    make(chan clientMessageIn, 64),
		kill:  make(chan *Client, 64),

		rateLimit: rateLimitConfig{perSecond: inboundRatePerSecond, burst: inboundBurst},
	}
}

// Scheduler returns a Scheduler that runs functions on this hub's worker.
func (hub *Hub) Scheduler() Scheduler {
	return Scheduler{event: hub.event}
}

func (hub *Hub) logQueueLengths() {
	if len(hub.in) > 1 {
		Logger.Debug("hub is behind on incoming messages", zap.Int("n", len(hub.in)))
	}

	if len(hub.out) > 1 {
		Logger.Debug("hub is behind on outgoing messages", zap.Int("n", len(hub.out)))
	}

	if len(hub.event) > 1 {
		Logger.Debug("hub is behind on scheduled events", zap.Int("n", len(hub.event)))
	}
}

func handleIncoming(msg clientMessageIn) {
	l := Logger.With(zap.String("from", msg.c.RemoteAddr()), zap.String("type", msg.m.Type))

	l.Debug("handling incoming message")

	if err := msg.c.Receive(msg.m); err != nil {
		l.Warn("error handling incoming message", zap.Error(err))
	}
}

func handleEvent(fn func()) {
	pc := reflect.ValueOf(fn).Pointer()
	filename, line := runtime.FuncForPC(pc).FileLine(pc)

	Logger.Debug("calling scheduled event", zap.String("file", filename), zap.Int("line", line))

	fn()
}

func (hub *Hub) killClient(client *Client) {
	l := Logger.With(zap.String("addr", client.RemoteAddr()))

	l.Info("killing client")

	if client.conn != nil {
		if err := client.conn.Close(); err != nil {
			l.Warn("error closing client connection", zap.Error(err))
		}
	}

	if hub.onDisconnect != nil {
		hub.onDisconnect(client)
	}

	if client.Room == nil {
		return
	}

	l.Info("dead client was inside a room")

	if err := client.Room.Leave(client, false); err != nil {
		l.Error("error handling disconnect leave", zap.Error(err))
	}
}

// runMainLoop is the single worker goroutine: every inbound message,
// scheduled event, and client teardown for every room passes through here
// in arrival order.
func (hub *Hub) runMainLoop() {
	Logger.Info("starting hub main loop")

	for {
		hub.logQueueLengths()

		select {
		case msg := <-hub.in:
			handleIncoming(msg)

		case fn := <-hub.event:
			handleEvent(fn)

		case client := <-hub.kill:
			hub.killClient(client)
		}
	}
}

// runOutboundLoop writes queued outbound messages to their sockets. It
// runs on its own goroutine because socket writes can block, and blocking
// here must never stall the main loop's room simulation.
func (hub *Hub) runOutboundLoop() {
	for {
		msg := <-hub.out

		l := Logger.With(zap.String("addr", msg.C.RemoteAddr()))

		if err := msg.C.conn.WriteMessage(websocket.TextMessage, msg.M); err != nil {
			l.Warn("error sending message, killing client", zap.Error(err))
			hub.kill <- msg.C
		}
	}
}

// Start launches the hub's background goroutines.
func (hub *Hub) Start() {
	go hub.runMainLoop()
	go hub.runOutboundLoop()
}

func (hub *Hub) clientListen(client *Client) {
	for {
		mt, body, err := client.conn.ReadMessage()

		l := Logger.With(zap.String("addr", client.RemoteAddr()))

		if err != nil {
			l.Debug("client read loop ending", zap.Error(err))
			hub.kill <- client
			return
		}

		if mt != websocket.TextMessage {
			_ = client.Send(wire.New("ws_non_text_error"))
			continue
		}

		msg, ok := wire.Parse(body)

		if !ok {
			_ = client.Send(wire.New("ws_json_format_error"))
			continue
		}

		hub.in <- clientMessageIn{c: client, m: msg}
	}
}

// AddConnection wraps an already-upgraded websocket connection in a Client
// and starts reading from it.
func (hub *Hub) AddConnection(ws *websocket.Conn) *Client {
	Logger.Info("adding client", zap.String("addr", ws.RemoteAddr().String()))

	client := &Client{
		router:  hub.router,
		out:     hub.out,
		conn:    ws,
		limiter: rate.NewLimiter(rate.Limit(hub.rateLimit.perSecond), hub.rateLimit.burst),
	}

	go hub.clientListen(client)

	return client
}
