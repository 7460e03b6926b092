// Package roommgr owns the set of live rooms and the matchmaking-surface
// messages ("room_create", "room_join") a client sends before joining one,
// generalizing the teacher's LobbyManager/LobbyActivity join flow to the
// room package's team-deathmatch rooms.
package roommgr

import (
	"time"

	"go.uber.org/zap"

	"brawlroom/config"
	"brawlroom/metrics"
	"brawlroom/room"
	"brawlroom/transport"
	"brawlroom/wire"
)

// Logger is the package-level structured logger.
var Logger = zap.Must(zap.NewDevelopment())

// Manager creates and tracks rooms, and implements transport.Router so it
// can be wired straight into a transport.Hub.
type Manager struct {
	scheduler transport.Scheduler
	sim       config.Sim

	rooms map[string]*room.Room
}

// New returns a manager with no rooms, scheduling every room it creates on
// scheduler.
func New(scheduler transport.Scheduler, sim config.Sim) *Manager {
	return &Manager{
		scheduler: scheduler,
		sim:       sim,
		rooms:     make(map[string]*room.Room),
	}
}

// CreateRoom creates and registers a new, empty room.
func (mgr *Manager) CreateRoom() *room.Room {
	id := randomRoomID()

	for _, exists := mgr.rooms[id]; exists; _, exists = mgr.rooms[id] {
		id = randomRoomID()
	}

	r := room.New(id, mgr.sim, mgr.scheduler)

	r.OnMetadataChange(func(room.Metadata) {
		mgr.updateCounts()
	})

	r.OnEmpty(func() { mgr.Forget(id) })
	r.OnKill(metrics.RecordKill)
	r.OnMatchEnd(metrics.RecordMatchEnd)
	r.OnTick(func(elapsedMs float64) {
		metrics.RecordTick(time.Duration(elapsedMs * float64(time.Millisecond)))
	})

	mgr.rooms[id] = r

	Logger.Info("created room", zap.String("room", id))

	mgr.updateCounts()

	return r
}

// updateCounts refreshes the room/player count gauges.
func (mgr *Manager) updateCounts() {
	players := 0

	for _, r := range mgr.rooms {
		meta := r.Metadata()
		players += meta.RedCount + meta.BlueCount
	}

	metrics.SetRoomCount(len(mgr.rooms))
	metrics.SetPlayerCount(players)
}

// FindJoinableRoom returns the first room that is not yet ended and has
// room for another player, or false if none qualifies.
func (mgr *Manager) FindJoinableRoom() (*room.Room, bool) {
	for _, r := range mgr.rooms {
		meta := r.Metadata()

		if meta.GameState == "ended" {
			continue
		}

		if meta.RedCount+meta.BlueCount >= mgr.sim.MaxClients {
			continue
		}

		return r, true
	}

	return nil, false
}

// Get returns the room with the given id, or false if none exists.
func (mgr *Manager) Get(id string) (*room.Room, bool) {
	r, ok := mgr.rooms[id]
	return r, ok
}

// Rooms returns every currently-tracked room, for the HTTP listing surface.
func (mgr *Manager) Rooms() []*room.Room {
	out := make([]*room.Room, 0, len(mgr.rooms))

	for _, r := range mgr.rooms {
		out = append(out, r)
	}

	return out
}

// Forget deletes the given room id from the manager, stopping any new
// players from joining it.
func (mgr *Manager) Forget(id string) {
	Logger.Info("forgetting room", zap.String("room", id))

	delete(mgr.rooms, id)

	mgr.updateCounts()
}

// HandleCreate implements transport.Router: it creates a fresh room and
// immediately joins the requesting client to it.
func (mgr *Manager) HandleCreate(c *transport.Client) error {
	r := mgr.CreateRoom()

	return r.Join(c, randomPlayerID(), randomDisplayName())
}

// HandleJoin implements transport.Router: it joins the requesting client
// to the named room, or replies with an error if it doesn't exist.
func (mgr *Manager) HandleJoin(c *transport.Client, roomID string) error {
	r, ok := mgr.Get(roomID)

	if !ok {
		return c.Send(wire.New("room_not_found_error").Add("roomId", roomID))
	}

	return r.Join(c, randomPlayerID(), randomDisplayName())
}
