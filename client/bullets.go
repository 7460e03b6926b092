package client

import (
	"brawlroom/config"
	"brawlroom/room"
)

// BulletVisual is one tracked remote bullet's travel state (spec §4.6).
// Only bullets owned by someone other than the local player are tracked
// here; the local player's own in-flight bullets live in an external
// weapon/bullet pool reachable through LocalBulletPool.
type BulletVisual struct {
	ID        string
	OwnerID   string
	OwnerTeam room.Team

	X, Y float64

	startX, targetX float64

	travelMs, elapsedMs float64
}

// Color returns the bullet's display color by owner team, falling back to
// red when the owner is unknown (spec §4.6).
func (bv *BulletVisual) Color() string {
	if bv.OwnerTeam == room.TeamBlue {
		return "blue"
	}

	return "red"
}

// LocalBulletPool is the external weapon system's view of the local
// player's own in-flight bullets, used to reconcile a bullet-removed event
// against a shot this client itself fired (spec §4.6).
type LocalBulletPool interface {
	// FindNear returns the id of an active local bullet within 50px of x,
	// or false if none qualifies.
	FindNear(x float64) (id string, ok bool)

	// Deactivate retires the local bullet with the given id.
	Deactivate(id string)
}

// BulletTracker owns every tracked remote bullet visual (spec §4.6).
type BulletTracker struct {
	sim           config.Sim
	localPlayerID string

	visuals map[string]*BulletVisual

	OnImpact func(x, y float64)
}

// NewBulletTracker returns a tracker for bullets not owned by
// localPlayerID.
func NewBulletTracker(sim config.Sim, localPlayerID string) *BulletTracker {
	return &BulletTracker{
		sim:           sim,
		localPlayerID: localPlayerID,
		visuals:       make(map[string]*BulletVisual),
	}
}

// Added spawns a tracked visual for a bullet-added event, unless it's the
// local player's own shot (those are handled by the external bullet pool
// immediately, with no round-trip needed).
func (bt *BulletTracker) Added(b BulletAdded) {
	if b.OwnerID == bt.localPlayerID {
		return
	}

	travelMs := bt.sim.BulletLifetimeMs
	nextX := b.X + b.VX*(travelMs/1000)

	bt.visuals[b.ID] = &BulletVisual{
		ID: b.ID, OwnerID: b.OwnerID, OwnerTeam: b.OwnerTeam,
		X: b.X, Y: b.Y,
		startX: b.X, targetX: nextX,
		travelMs: travelMs,
	}
}

// Removed retires a tracked visual, or — if this wasn't a visual we were
// tracking — searches pool for a matching local bullet, per spec §4.6.
func (bt *BulletTracker) Removed(removal BulletRemoved, pool LocalBulletPool) {
	if v, ok := bt.visuals[removal.ID]; ok {
		delete(bt.visuals, removal.ID)

		if bt.OnImpact != nil {
			bt.OnImpact(v.X, v.Y)
		}

		return
	}

	if removal.OwnerID != bt.localPlayerID || pool == nil {
		return
	}

	if id, ok := pool.FindNear(removal.X); ok {
		pool.Deactivate(id)

		if bt.OnImpact != nil {
			bt.OnImpact(removal.X, removal.Y)
		}
	}
}

// Step advances every tracked visual's predicted travel by dtMs.
func (bt *BulletTracker) Step(dtMs float64) {
	for _, v := range bt.visuals {
		v.elapsedMs += dtMs

		t := v.elapsedMs / v.travelMs

		if t > 1 {
			t = 1
		}

		v.X = v.startX + (v.targetX-v.startX)*t
	}
}

// All returns every currently-tracked bullet visual.
func (bt *BulletTracker) All() []*BulletVisual {
	out := make([]*BulletVisual, 0, len(bt.visuals))

	for _, v := range bt.visuals {
		out = append(out, v)
	}

	return out
}
