package client

import (
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"brawlroom/room"
	"brawlroom/wire"
)

// Logger is the package-level structured logger for the client package.
var Logger = zap.Must(zap.NewDevelopment())

// Session is the client-side network session for one room membership
// (spec §4.3). It connects over a websocket, parses the replication
// protocol, and dispatches typed callbacks. It never touches rendering.
type Session struct {
	conn *websocket.Conn

	localPlayerID string
	localTeam     room.Team
	roomID        string

	// pendingAdds buffers player-added events received before
	// team-assigned, per spec §4.3/§9's identity-race fix: the reference
	// implementation this was distilled from created remote players from
	// both player-added and player-updated when the add was missing; here
	// player-added is the only creation path, and anything that arrives
	// before we know our own id is queued and replayed once we do.
	pendingAdds []PlayerAdded

	OnTeamAssigned            func(TeamAssigned)
	OnPlayerAdded             func(PlayerAdded)
	OnPlayerUpdated           func(PlayerUpdated)
	OnPlayerRemoved           func(id string)
	OnBulletAdded             func(BulletAdded)
	OnBulletRemoved           func(BulletRemoved)
	OnPlayerKilled            func(KillEvent)
	OnMatchEnded              func(MatchEndedEvent)
	OnStateChanged            func(gameState string)
	OnLocalPlayerServerUpdate func(LocalPlayerServerUpdate)
}

// Dial connects to a room server at url and returns an unstarted session;
// call Run to begin processing messages.
func Dial(url string) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)

	if err != nil {
		return nil, err
	}

	return &Session{conn: conn}, nil
}

// LocalPlayerID returns the session's own player id, or "" before
// team-assigned has arrived.
func (s *Session) LocalPlayerID() string { return s.localPlayerID }

// LocalTeam returns the session's own team, meaningful once LocalPlayerID
// is non-empty.
func (s *Session) LocalTeam() room.Team { return s.localTeam }

// RoomID returns the id of the room this session has joined, or "" before
// team-assigned has arrived.
func (s *Session) RoomID() string { return s.roomID }

// Send encodes and writes m to the server.
func (s *Session) Send(m *wire.Message) error {
	data, err := m.Encode()

	if err != nil {
		return err
	}

	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// SendMove emits a move message at the local simulation's natural rate
// (spec §4.5).
func (s *Session) SendMove(x, y, vx, vy float64, flipX bool) error {
	return s.Send(wire.New("move").
		Add("x", x).Add("y", y).
		Add("velocityX", vx).Add("velocityY", vy).
		Add("flipX", flipX))
}

// SendDash emits a dash message.
func (s *Session) SendDash(isDashing bool) error {
	return s.Send(wire.New("dash").Add("isDashing", isDashing))
}

// SendShoot emits a shoot message; the server always computes velocity
// itself.
func (s *Session) SendShoot(x, y float64) error {
	return s.Send(wire.New("shoot").Add("x", x).Add("y", y))
}

// Run processes messages from the server until the connection closes or
// an unrecoverable read error occurs. It is meant to run on its own
// goroutine; every OnX callback is invoked from this goroutine, never
// concurrently with itself (spec §5's client-side single-threaded model
// — frame updates and network callbacks must be synchronized by the
// caller if they don't already share a thread).
func (s *Session) Run() error {
	for {
		mt, body, err := s.conn.ReadMessage()

		if err != nil {
			return err
		}

		if mt != websocket.TextMessage {
			continue
		}

		msg, ok := wire.Parse(body)

		if !ok {
			Logger.Debug("dropping malformed server message")
			continue
		}

		s.dispatch(msg)
	}
}

// Close tears down the underlying connection (spec §5's "leaving
// multiplayer disconnects the session" cancellation policy).
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}

	return s.conn.Close()
}

func (s *Session) dispatch(m *wire.Message) {
	switch m.Type {
	case "team-assigned":
		s.handleTeamAssigned(m)

	case "player-added":
		s.handlePlayerAdded(m)

	case "player-updated":
		s.handlePlayerUpdated(m)

	case "player-removed":
		s.handlePlayerRemoved(m)

	case "bullet-added":
		s.handleBulletAdded(m)

	case "bullet-removed":
		s.handleBulletRemoved(m)

	case "player-killed":
		s.handlePlayerKilled(m)

	case "match-ended":
		s.handleMatchEnded(m)
	}
}

func parseTeam(s string) room.Team {
	if s == "blue" {
		return room.TeamBlue
	}

	return room.TeamRed
}

func (s *Session) handleTeamAssigned(m *wire.Message) {
	team, _ := m.GetString("team")
	playerID, _ := m.GetString("playerId")
	roomID, _ := m.GetString("roomId")
	playerName, _ := m.GetString("playerName")

	s.localPlayerID = playerID
	s.localTeam = parseTeam(team)
	s.roomID = roomID

	if s.OnTeamAssigned != nil {
		s.OnTeamAssigned(TeamAssigned{Team: s.localTeam, PlayerID: playerID, RoomID: roomID, PlayerName: playerName})
	}

	pending := s.pendingAdds
	s.pendingAdds = nil

	for _, p := range pending {
		s.routeAdded(p)
	}
}

func parsePlayerFields(m *wire.Message) (PlayerAdded, error) {
	var p PlayerAdded

	var err error

	if p.ID, err = m.GetString("playerId"); err != nil {
		return p, err
	}

	if p.Name, err = m.GetString("playerName"); err != nil {
		return p, err
	}

	teamStr, err := m.GetString("team")

	if err != nil {
		return p, err
	}

	p.Team = parseTeam(teamStr)

	if p.X, err = m.GetNumber("x"); err != nil {
		return p, err
	}

	if p.Y, err = m.GetNumber("y"); err != nil {
		return p, err
	}

	if p.VX, err = m.GetNumber("velocityX"); err != nil {
		return p, err
	}

	if p.VY, err = m.GetNumber("velocityY"); err != nil {
		return p, err
	}

	if p.FlipX, err = m.GetBool("flipX"); err != nil {
		return p, err
	}

	health, err := m.GetNumber("health")

	if err != nil {
		return p, err
	}

	p.Health = int(health)

	if p.IsDead, err = m.GetBool("isDead"); err != nil {
		return p, err
	}

	if p.RespawnMs, err = m.GetNumber("respawnMs"); err != nil {
		return p, err
	}

	if p.IsDashing, err = m.GetBool("isDashing"); err != nil {
		return p, err
	}

	return p, nil
}

func (s *Session) handlePlayerAdded(m *wire.Message) {
	p, err := parsePlayerFields(m)

	if err != nil {
		Logger.Debug("dropping malformed player-added message", zap.Error(err))
		return
	}

	if s.localPlayerID == "" {
		s.pendingAdds = append(s.pendingAdds, p)
		return
	}

	s.routeAdded(p)
}

// routeAdded is the single canonical creation path: a player is only ever
// introduced to the client via a player-added event, never via
// player-updated (spec §9's "already exists" fix).
func (s *Session) routeAdded(p PlayerAdded) {
	if p.ID == s.localPlayerID {
		// The local player's own add is informational only; its own
		// predicted visual already exists locally.
		return
	}

	if s.OnPlayerAdded != nil {
		s.OnPlayerAdded(p)
	}
}

func (s *Session) handlePlayerUpdated(m *wire.Message) {
	p, err := parsePlayerFields(m)

	if err != nil {
		Logger.Debug("dropping malformed player-updated message", zap.Error(err))
		return
	}

	if p.ID == s.localPlayerID {
		if s.OnLocalPlayerServerUpdate != nil {
			s.OnLocalPlayerServerUpdate(LocalPlayerServerUpdate{
				X: p.X, Y: p.Y, Health: p.Health, IsDead: p.IsDead, RespawnMs: p.RespawnMs,
			})
		}

		return
	}

	if s.OnPlayerUpdated != nil {
		s.OnPlayerUpdated(p)
	}
}

func (s *Session) handlePlayerRemoved(m *wire.Message) {
	id, err := m.GetString("playerId")

	if err != nil {
		return
	}

	if s.OnPlayerRemoved != nil {
		s.OnPlayerRemoved(id)
	}
}

func (s *Session) handleBulletAdded(m *wire.Message) {
	id, errID := m.GetString("bulletId")
	x, errX := m.GetNumber("x")
	y, errY := m.GetNumber("y")
	vx, errVX := m.GetNumber("velocityX")
	ownerID, errOwner := m.GetString("ownerId")
	ownerTeam, errTeam := m.GetString("ownerTeam")

	if err := firstError(errID, errX, errY, errVX, errOwner, errTeam); err != nil {
		Logger.Debug("dropping malformed bullet-added message", zap.Error(err))
		return
	}

	if s.OnBulletAdded != nil {
		s.OnBulletAdded(BulletAdded{ID: id, X: x, Y: y, VX: vx, OwnerID: ownerID, OwnerTeam: parseTeam(ownerTeam)})
	}
}

func (s *Session) handleBulletRemoved(m *wire.Message) {
	id, errID := m.GetString("bulletId")
	x, errX := m.GetNumber("x")
	y, errY := m.GetNumber("y")
	ownerID, errOwner := m.GetString("ownerId")

	if err := firstError(errID, errX, errY, errOwner); err != nil {
		Logger.Debug("dropping malformed bullet-removed message", zap.Error(err))
		return
	}

	if s.OnBulletRemoved != nil {
		s.OnBulletRemoved(BulletRemoved{ID: id, X: x, Y: y, OwnerID: ownerID})
	}
}

func (s *Session) handlePlayerKilled(m *wire.Message) {
	killerID, _ := m.GetString("killerId")
	victimID, _ := m.GetString("victimId")
	killerName, _ := m.GetString("killerName")
	victimName, _ := m.GetString("victimName")

	if s.OnPlayerKilled != nil {
		s.OnPlayerKilled(KillEvent{KillerID: killerID, VictimID: victimID, KillerName: killerName, VictimName: victimName})
	}
}

func (s *Session) handleMatchEnded(m *wire.Message) {
	winningTeam, _ := m.GetString("winningTeam")
	scoreRed, _ := m.GetNumber("scoreRed")
	scoreBlue, _ := m.GetNumber("scoreBlue")

	if s.OnStateChanged != nil {
		s.OnStateChanged("ended")
	}

	if s.OnMatchEnded != nil {
		s.OnMatchEnded(MatchEndedEvent{
			WinningTeam: parseTeam(winningTeam),
			ScoreRed:    int(scoreRed),
			ScoreBlue:   int(scoreBlue),
		})
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}
