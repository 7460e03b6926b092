package room

import (
	"time"

	"go.uber.org/zap"

	"brawlroom/config"
	"brawlroom/transport"
	"brawlroom/wire"
)

// Logger is the package-level structured logger for the room package.
var Logger = zap.Must(zap.NewDevelopment())

// Room is one match: the authoritative State plus the plumbing that wires
// it to connected clients through a Scheduler (spec §4.2, §5). Room
// satisfies transport.RoomMember.
type Room struct {
	ID string

	state      *State
	sim        config.Sim
	scheduler  transport.Scheduler
	replicator *replicator

	clients map[string]*transport.Client // player id -> client

	tickTimer    transport.FunctionTimer
	bulletTimers map[string]transport.FunctionTimer

	onMetadataChange func(Metadata)
	onEmpty          func()

	onKill      func()
	onMatchEnd  func()
	onTick      func(dtMs float64)
}

// New returns a new, waiting room with no players.
func New(id string, sim config.Sim, scheduler transport.Scheduler) *Room {
	return &Room{
		ID:           id,
		state:        NewState(sim, DefaultPlatforms()),
		sim:          sim,
		scheduler:    scheduler,
		replicator:   newReplicator(),
		clients:      make(map[string]*transport.Client),
		bulletTimers: make(map[string]transport.FunctionTimer),
	}
}

// OnMetadataChange registers a callback invoked (on the room's scheduler
// worker) whenever join/leave/gameState changes the searchable metadata
// (spec §4.2, §6).
func (r *Room) OnMetadataChange(fn func(Metadata)) { r.onMetadataChange = fn }

// OnEmpty registers a callback invoked when the room's last player leaves.
func (r *Room) OnEmpty(fn func()) { r.onEmpty = fn }

// OnKill, OnMatchEnd and OnTick register observability hooks (wired to
// package metrics by roommgr.Manager); all are optional. OnTick receives
// the wall-clock time, in milliseconds, that one tick took to process.
func (r *Room) OnKill(fn func())      { r.onKill = fn }
func (r *Room) OnMatchEnd(fn func())  { r.onMatchEnd = fn }
func (r *Room) OnTick(fn func(float64)) { r.onTick = fn }

// Metadata returns the room's current searchable metadata.
func (r *Room) Metadata() Metadata { return r.state.Metadata() }

func (r *Room) notifyMetadata() {
	if r.onMetadataChange != nil {
		r.onMetadataChange(r.state.Metadata())
	}
}

// startIfReady flips the room into StatePlaying the first time a player
// joins a still-empty match. A faithful team-deathmatch room does not
// wait for a fixed player count (spec has no lobby-readiness concept);
// it starts as soon as there is at least one combatant and keeps
// accepting joins up to MaxClients while playing.
func (r *Room) startIfReady() {
	if r.state.GameState == StateWaiting && len(r.state.Players) > 0 {
		r.state.GameState = StatePlaying
		r.startTickTimer()
	}
}

func (r *Room) startTickTimer() {
	interval := time.Duration(config.TickInterval * float64(time.Millisecond))

	r.tickTimer = transport.TickingTimer(r.scheduler, interval, func() {
		r.runTick(config.TickInterval)
	})
}

func (r *Room) runTick(dtMs float64) {
	start := time.Now()

	result := r.state.Tick(dtMs)

	for _, removal := range result.RemovedBullets {
		r.cancelBulletTimer(removal.ID)
		r.broadcastBulletRemoved(removal)
	}

	for _, kill := range result.Kills {
		if r.onKill != nil {
			r.onKill()
		}

		r.broadcastKill(kill)
	}

	if result.MatchEnded != nil {
		if r.onMatchEnd != nil {
			r.onMatchEnd()
		}

		r.broadcastMatchEnd(*result.MatchEnded)
		r.notifyMetadata()
		r.tickTimer.Stop()
	}

	r.broadcastDiff()

	if r.onTick != nil {
		r.onTick(float64(time.Since(start)) / float64(time.Millisecond))
	}
}

// Join adds a new player for client, assigning a balanced team and
// spawning them, then sends the team-assigned message (spec §4.2).
func (r *Room) Join(client *transport.Client, playerID, name string) error {
	if len(r.state.Players) >= r.sim.MaxClients {
		return client.Send(wire.New("room_full_error"))
	}

	team := r.state.BalanceTeam()

	p := &Player{ID: playerID, Name: name, Team: team, Health: 100}
	p.X, p.Y = p.spawnPosition(r.state.Spawns)

	r.state.Players[playerID] = p
	r.clients[playerID] = client
	client.Room = r

	msg := wire.New("team-assigned").
		Add("team", team.String()).
		Add("playerId", playerID).
		Add("roomId", r.ID).
		Add("playerName", name)

	err := client.Send(msg)

	r.sendExistingState(client, playerID)

	r.notifyMetadata()
	r.startIfReady()

	return err
}

// Leave implements transport.RoomMember.
func (r *Room) Leave(client *transport.Client, consented bool) error {
	var playerID string

	for id, c := range r.clients {
		if c == client {
			playerID = id
			break
		}
	}

	if playerID == "" {
		return nil
	}

	delete(r.state.Players, playerID)
	delete(r.clients, playerID)
	r.replicator.Forget(playerID)
	client.Room = nil

	Logger.Info("player left room", zap.String("room", r.ID), zap.String("player", playerID), zap.Bool("consented", consented))

	r.broadcastPlayerRemoved(playerID)
	r.notifyMetadata()

	if len(r.state.Players) == 0 {
		r.tickTimer.Stop()

		if r.onEmpty != nil {
			r.onEmpty()
		}
	}

	return nil
}

// HandleMessage implements transport.RoomMember, dispatching move/dash/
// shoot per spec §4.2, plus the leave message shared with the hub's kill
// path.
func (r *Room) HandleMessage(client *transport.Client, m *wire.Message) error {
	playerID := r.playerIDFor(client)

	if playerID == "" {
		return client.Send(wire.New("room_not_joined_error"))
	}

	switch m.Type {
	case "room_bye":
		return r.Leave(client, true)

	case "move":
		return r.handleMove(playerID, m)

	case "dash":
		return r.handleDash(playerID, m)

	case "shoot":
		return r.handleShoot(playerID, m)
	}

	return client.Send(wire.New("room_unknown_message_error"))
}

func (r *Room) playerIDFor(client *transport.Client) string {
	for id, c := range r.clients {
		if c == client {
			return id
		}
	}

	return ""
}

// handleMove updates a live player's pose. Ignored if the player is dead
// or missing (spec §4.2) — not an error, just a silent drop.
func (r *Room) handleMove(playerID string, m *wire.Message) error {
	p := r.state.Players[playerID]

	if p == nil || p.IsDead {
		return nil
	}

	x, xErr := m.GetNumber("x")
	y, yErr := m.GetNumber("y")
	vx, vxErr := m.GetNumber("velocityX")
	vy, vyErr := m.GetNumber("velocityY")
	flipX, flipErr := m.GetBool("flipX")

	if xErr != nil || yErr != nil || vxErr != nil || vyErr != nil || flipErr != nil {
		// Input validation failure: log and drop, no reply (spec §7).
		Logger.Debug("dropping malformed move message", zap.String("player", playerID))
		return nil
	}

	p.X, p.Y = x, y
	p.VX, p.VY = vx, vy
	p.FlipX = flipX

	return nil
}

// handleDash sets the transient VFX-only dashing flag (spec §4.2).
func (r *Room) handleDash(playerID string, m *wire.Message) error {
	p := r.state.Players[playerID]

	if p == nil || p.IsDead {
		return nil
	}

	isDashing, err := m.GetBool("isDashing")

	if err != nil {
		Logger.Debug("dropping malformed dash message", zap.String("player", playerID))
		return nil
	}

	p.IsDashing = isDashing

	return nil
}

// handleShoot validates and creates a bullet, scheduling its lifetime
// safety-net timer (spec §4.1).
func (r *Room) handleShoot(playerID string, m *wire.Message) error {
	x, xErr := m.GetNumber("x")
	y, yErr := m.GetNumber("y")

	if xErr != nil || yErr != nil {
		Logger.Debug("dropping malformed shoot message", zap.String("player", playerID))
		return nil
	}

	b := r.state.Shoot(playerID, x, y)

	if b == nil {
		return nil
	}

	r.broadcastBulletAdded(b)
	r.scheduleBulletExpiry(b.ID)

	return nil
}

func (r *Room) scheduleBulletExpiry(id string) {
	r.bulletTimers[id] = transport.SingleTimer(
		r.scheduler,
		time.Duration(r.sim.BulletLifetimeMs)*time.Millisecond,
		func() {
			delete(r.bulletTimers, id)

			if removal, ok := r.state.RemoveBulletByID(id); ok {
				r.broadcastBulletRemoved(removal)
			}
		},
	)
}

func (r *Room) cancelBulletTimer(id string) {
	if t, ok := r.bulletTimers[id]; ok {
		t.Stop()
		delete(r.bulletTimers, id)
	}
}

// Dispose releases all of this room's timers, for transport.RoomMember's
// onDispose-equivalent teardown (spec §4.2).
func (r *Room) Dispose() {
	r.tickTimer.Stop()

	for _, t := range r.bulletTimers {
		t.Stop()
	}
}
