package room

import (
	"sort"

	"brawlroom/wire"
)

// KillEvent describes a player-killed broadcast (spec §6).
type KillEvent struct {
	KillerID, VictimID     string
	KillerName, VictimName string
}

// MatchEndEvent describes a match-ended broadcast (spec §6).
type MatchEndEvent struct {
	WinningTeam         Team
	ScoreRed, ScoreBlue int
}

// BulletRemoval snapshots a bullet's last known position at the instant it
// was removed, so the "bullet-removed" broadcast (spec §6) carries enough
// information for the client's bullet visual tracking (spec §4.6) to find
// and retire the matching visual.
type BulletRemoval struct {
	ID      string
	X, Y    float64
	OwnerID string
}

// TickResult carries the discrete events produced by one Tick call, for
// the caller (Room.runTick) to broadcast. Continuous player state (positions,
// health, ...) is instead picked up by the replication diff on the next
// broadcast pass — see replicate.go.
type TickResult struct {
	Kills          []KillEvent
	MatchEnded     *MatchEndEvent
	RemovedBullets []BulletRemoval
}

// Tick advances the simulation by dtMs milliseconds, following the
// per-tick order mandated by spec §4.1. A non-finite or missing delta
// skips the tick entirely rather than advance with corrupted state
// (spec §7).
func (s *State) Tick(dtMs float64) TickResult {
	var result TickResult

	if !wire.IsFinite(dtMs) {
		return result
	}

	// 1. Early exit unless playing.
	if s.GameState != StatePlaying {
		return result
	}

	// 2. Advance the game clock.
	s.GameTimeMs += dtMs

	// 3. Respawn countdown.
	for _, p := range s.Players {
		if !p.IsDead || p.RespawnMs <= 0 {
			continue
		}

		p.RespawnMs -= dtMs

		if p.RespawnMs <= 0 {
			p.respawn(s.Spawns)
		}
	}

	// 4. Bullet CCD; collect indices to remove as we go.
	toRemove := make([]int, 0, len(s.Bullets))

	for i, b := range s.Bullets {
		hitKill, hitMatchEnd, remove := s.stepBullet(b, dtMs)

		if hitKill != nil {
			result.Kills = append(result.Kills, *hitKill)
		}

		if hitMatchEnd != nil {
			result.MatchEnded = hitMatchEnd
		}

		if remove {
			toRemove = append(toRemove, i)
			result.RemovedBullets = append(result.RemovedBullets, BulletRemoval{
				ID: b.ID, X: b.X, Y: b.Y, OwnerID: b.OwnerID,
			})
		}

		// Once the match has ended, the remainder of this tick still
		// runs to completion (spec §4.1's tie-break note), but the
		// early-exit guard on the NEXT tick (step 1) is what actually
		// stops further simulation.
	}

	// 5. Dedup, sort descending, splice out.
	s.removeBulletsAt(dedupDescending(toRemove))

	return result
}

// stepBullet runs one tick of continuous collision detection for a single
// bullet, per spec §4.1. It returns a kill event if the bullet caused one,
// a match-end event if that kill crossed the win threshold, and whether
// the bullet should be removed.
func (s *State) stepBullet(b *Bullet, dtMs float64) (*KillEvent, *MatchEndEvent, bool) {
	if !wire.IsFinite(b.X) || !wire.IsFinite(b.Y) || !wire.IsFinite(b.VX) {
		// Corrupted bullet state: remove it rather than let it
		// propagate garbage (spec §7).
		return nil, nil, true
	}

	b.RemainingMs -= dtMs

	if b.RemainingMs <= 0 {
		return nil, nil, true
	}

	movement := b.VX * (dtMs / 1000)
	prevX := b.X
	nextX := prevX + movement

	sweptMinX := min2(prevX, nextX) - s.sim.BulletWidth/2
	sweptMaxX := max2(prevX, nextX) + s.sim.BulletWidth/2
	sweptMinY := b.Y - s.sim.BulletHeight/2
	sweptMaxY := b.Y + s.sim.BulletHeight/2

	for _, p := range s.Players {
		if p.Team == b.OwnerTeam || p.ID == b.OwnerID || p.IsDead {
			continue
		}

		pMinX := p.X - s.sim.PlayerHalfWidth
		pMaxX := p.X + s.sim.PlayerHalfWidth
		pMinY := p.Y - 2*s.sim.PlayerHalfHeight
		pMaxY := p.Y

		if !aabbOverlap(sweptMinX, sweptMaxX, sweptMinY, sweptMaxY, pMinX, pMaxX, pMinY, pMaxY) {
			continue
		}

		kill, matchEnd := s.resolveHit(b, p)

		return kill, matchEnd, true
	}

	// No hit: advance, then check platform/off-world removal.
	b.X = nextX

	for _, plat := range s.Platforms {
		if aabbOverlap(sweptMinX, sweptMaxX, sweptMinY, sweptMaxY, plat.MinX, plat.MaxX, plat.MinY, plat.MaxY) {
			return nil, nil, true
		}
	}

	if b.X < s.sim.WorldMinX || b.X > s.sim.WorldMaxX {
		return nil, nil, true
	}

	return nil, nil, false
}

// resolveHit applies bullet damage to victim, handling death, respawn
// scheduling, scoring, and match end exactly as spec §4.1 describes.
func (s *State) resolveHit(b *Bullet, victim *Player) (*KillEvent, *MatchEndEvent) {
	victim.Health -= s.sim.BulletDamage

	if victim.Health > 0 {
		return nil, nil
	}

	victim.Health = 0
	victim.IsDead = true
	victim.RespawnMs = s.sim.RespawnMs

	killer := s.Players[b.OwnerID]

	killerName := b.OwnerID

	if killer != nil {
		killerName = killer.Name
	}

	kill := &KillEvent{
		KillerID:   b.OwnerID,
		VictimID:   victim.ID,
		KillerName: killerName,
		VictimName: victim.Name,
	}

	if b.OwnerTeam == TeamRed {
		s.ScoreRed++
	} else {
		s.ScoreBlue++
	}

	var matchEnd *MatchEndEvent

	// Tie-break: only the kill that first crosses the win threshold sets
	// winningTeam and ends the match (spec §4.1/§9). Because gameState
	// flips to ended here, the next tick's step-1 guard stops further
	// simulation — but any bullets later in THIS tick's slice still
	// resolve, per spec's explicit tie-break note.
	if s.GameState == StatePlaying {
		if s.ScoreRed >= s.sim.WinScore || s.ScoreBlue >= s.sim.WinScore {
			s.GameState = StateEnded

			if s.ScoreRed >= s.sim.WinScore {
				s.WinningTeam = TeamRed
			} else {
				s.WinningTeam = TeamBlue
			}

			matchEnd = &MatchEndEvent{WinningTeam: s.WinningTeam, ScoreRed: s.ScoreRed, ScoreBlue: s.ScoreBlue}
		}
	}

	return kill, matchEnd
}

// Shoot validates and creates a bullet fired by owner, per spec §4.1. It
// returns nil if the shot is invalid (non-finite position) or owner is
// unknown/dead. The server always computes velocity itself; any
// client-supplied velocity is ignored.
func (s *State) Shoot(ownerID string, x, y float64) *Bullet {
	owner, ok := s.Players[ownerID]

	if !ok || owner.IsDead || s.GameState != StatePlaying {
		return nil
	}

	if !wire.IsFinite(x) || !wire.IsFinite(y) {
		return nil
	}

	vx := s.sim.BulletSpeed

	if owner.FlipX {
		vx = -vx
	}

	if !wire.IsFinite(vx) {
		return nil
	}

	b := &Bullet{
		ID:          s.nextBulletID(ownerID),
		X:           x,
		Y:           y,
		VX:          vx,
		OwnerID:     ownerID,
		OwnerTeam:   owner.Team,
		RemainingMs: s.sim.BulletLifetimeMs,
	}

	s.Bullets = append(s.Bullets, b)

	return b
}

// RemoveBulletByID removes the bullet with the given id, if present, and
// reports its last position. It is a no-op (ok == false) if the bullet is
// already gone — this is what makes the lifetime-expiration safety-net
// timer idempotent against the tick's own removal (spec §5).
func (s *State) RemoveBulletByID(id string) (removal BulletRemoval, ok bool) {
	for i, b := range s.Bullets {
		if b.ID == id {
			removal = BulletRemoval{ID: b.ID, X: b.X, Y: b.Y, OwnerID: b.OwnerID}
			s.removeBulletsAt([]int{i})
			return removal, true
		}
	}

	return BulletRemoval{}, false
}

func (s *State) removeBulletsAt(descendingIndices []int) {
	for _, i := range descendingIndices {
		s.Bullets = append(s.Bullets[:i], s.Bullets[i+1:]...)
	}
}

// dedupDescending returns the distinct values of idx sorted descending, so
// repeated splice-outs never shift an index out from under a later
// removal (spec §4.1 step 5).
func dedupDescending(idx []int) []int {
	seen := make(map[int]struct{}, len(idx))

	out := idx[:0:0]

	for _, i := range idx {
		if _, ok := seen[i]; ok {
			continue
		}

		seen[i] = struct{}{}
		out = append(out, i)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(out)))

	return out
}

func aabbOverlap(minAx, maxAx, minAy, maxAy, minBx, maxBx, minBy, maxBy float64) bool {
	return minAx <= maxBx && maxAx >= minBx && minAy <= maxBy && maxAy >= minBy
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}

	return b
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}

	return b
}
