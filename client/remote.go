package client

import (
	"math"

	"go.uber.org/zap"

	"brawlroom/room"
)

// RemotePlayer is the client-side visual mirror of one non-local player
// (spec §4.4). Health, FlipX, IsDashing, and IsDead mirror the server
// immediately; X/Y interpolate toward TargetX/TargetY every frame.
type RemotePlayer struct {
	ID, Name string
	Team     room.Team

	X, Y             float64
	TargetX, TargetY float64

	FlipX     bool
	IsDashing bool
	IsDead    bool
	Health    int
}

// NetworkQuality reports the color band for this player's current
// prediction distance, per spec §6's "client controls" network-quality
// indicator: green ≤ 50px, yellow ≤ 100px, red otherwise. This is the
// REDESIGN FLAG fix — TargetX/TargetY are always the real last server
// sample, never stubbed zeros.
func (rp *RemotePlayer) NetworkQuality() string {
	dist := math.Hypot(rp.X-rp.TargetX, rp.Y-rp.TargetY)

	switch {
	case dist <= 50:
		return "green"
	case dist <= 100:
		return "yellow"
	default:
		return "red"
	}
}

// Interpolator owns every remote player's visual state (spec §4.4).
type Interpolator struct {
	players map[string]*RemotePlayer

	// smoothingRate is the per-Step blend factor toward the target
	// position; spec §4.4 references "exponential smoothing ~0.2 per
	// frame at 60 Hz" as a reasonable default.
	smoothingRate float64

	OnDeathEdge   func(rp *RemotePlayer)
	OnRespawnEdge func(rp *RemotePlayer)
}

// NewInterpolator returns an interpolator using the given per-frame
// smoothing rate (0 < rate ≤ 1); 0.2 is the spec's reference value.
func NewInterpolator(smoothingRate float64) *Interpolator {
	return &Interpolator{
		players:       make(map[string]*RemotePlayer),
		smoothingRate: smoothingRate,
	}
}

// Add creates a new RemotePlayer from a player-added event. This is the
// ONLY path that creates a remote visual (spec §9: player-updated must
// never create one).
func (ip *Interpolator) Add(p PlayerAdded) *RemotePlayer {
	rp := &RemotePlayer{
		ID: p.ID, Name: p.Name, Team: p.Team,
		X: p.X, Y: p.Y, TargetX: p.X, TargetY: p.Y,
		FlipX: p.FlipX, IsDashing: p.IsDashing, IsDead: p.IsDead, Health: p.Health,
	}

	ip.players[p.ID] = rp

	return rp
}

// Update applies a player-updated event to an existing remote player. If
// the player doesn't exist yet, the update is dropped and logged — per
// spec §9, an "updated before added" ordering is a queueing bug to
// surface, not a reason to synthesize a visual.
func (ip *Interpolator) Update(p PlayerUpdated) {
	rp, ok := ip.players[p.ID]

	if !ok {
		Logger.Debug("dropping player-updated for unknown remote player", zap.String("player", p.ID))
		return
	}

	wasDead := rp.IsDead

	rp.TargetX, rp.TargetY = p.X, p.Y
	rp.FlipX = p.FlipX
	rp.IsDashing = p.IsDashing
	rp.Health = p.Health
	rp.IsDead = p.IsDead

	if !wasDead && rp.IsDead {
		rp.X, rp.Y = rp.TargetX, rp.TargetY

		if ip.OnDeathEdge != nil {
			ip.OnDeathEdge(rp)
		}
	} else if wasDead && !rp.IsDead {
		if ip.OnRespawnEdge != nil {
			ip.OnRespawnEdge(rp)
		}
	}
}

// Remove deletes the remote player with the given id.
func (ip *Interpolator) Remove(id string) {
	delete(ip.players, id)
}

// Get returns the remote player with the given id, if any.
func (ip *Interpolator) Get(id string) (*RemotePlayer, bool) {
	rp, ok := ip.players[id]
	return rp, ok
}

// All returns every tracked remote player.
func (ip *Interpolator) All() []*RemotePlayer {
	out := make([]*RemotePlayer, 0, len(ip.players))

	for _, rp := range ip.players {
		out = append(out, rp)
	}

	return out
}

// Step advances every remote player's visual position one frame toward
// its target, by exponential smoothing scaled for dtSeconds against the
// reference 60Hz frame rate.
func (ip *Interpolator) Step(dtSeconds float64) {
	rate := 1 - math.Pow(1-ip.smoothingRate, dtSeconds*60)

	for _, rp := range ip.players {
		if rp.IsDead {
			continue
		}

		rp.X += (rp.TargetX - rp.X) * rate
		rp.Y += (rp.TargetY - rp.Y) * rate
	}
}
