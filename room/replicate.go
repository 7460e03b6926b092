package room

// playerSnapshot is an immutable, value-typed copy of the fields of Player
// that are replicated to clients. Diffing value copies (rather than the
// live pointers) is what lets replicator.Diff compare "last broadcast" against
// "current" without the comparison racing a concurrent mutation — though
// under spec §5's single-worker rule there never is one, this still keeps
// the diff pure and easy to test.
type playerSnapshot struct {
	Team                   Team
	X, Y                   float64
	VX, VY                 float64
	FlipX                  bool
	Health                 int
	IsDead                 bool
	RespawnMs              float64
	IsDashing              bool
}

func snapshotOf(p *Player) playerSnapshot {
	return playerSnapshot{
		Team: p.Team, X: p.X, Y: p.Y, VX: p.VX, VY: p.VY, FlipX: p.FlipX,
		Health: p.Health, IsDead: p.IsDead, RespawnMs: p.RespawnMs, IsDashing: p.IsDashing,
	}
}

// Diff is the set of player-level replication events produced by
// comparing two snapshots of room state (spec §6's "replicated state
// broadcast as diffs").
type Diff struct {
	Added   []PlayerView
	Updated []PlayerView
	Removed []string // player ids
}

// PlayerView is the read-only wire view of a player used in diffs.
type PlayerView struct {
	ID, Name               string
	Team                   Team
	X, Y                   float64
	VX, VY                 float64
	FlipX                  bool
	Health                 int
	IsDead                 bool
	RespawnMs              float64
	IsDashing              bool
}

func viewOf(p *Player) PlayerView {
	return PlayerView{
		ID: p.ID, Name: p.Name, Team: p.Team, X: p.X, Y: p.Y, VX: p.VX, VY: p.VY,
		FlipX: p.FlipX, Health: p.Health, IsDead: p.IsDead, RespawnMs: p.RespawnMs, IsDashing: p.IsDashing,
	}
}

// replicator tracks the last snapshot broadcast for each player so
// subsequent ticks only need to send what changed.
type replicator struct {
	last map[string]playerSnapshot
}

func newReplicator() *replicator {
	return &replicator{last: make(map[string]playerSnapshot)}
}

// Diff computes the add/update/remove set between the replicator's last
// broadcast snapshot and the room's current state, then adopts the
// current state as the new baseline.
func (r *replicator) Diff(s *State) Diff {
	var d Diff

	seen := make(map[string]struct{}, len(s.Players))

	for id, p := range s.Players {
		seen[id] = struct{}{}

		cur := snapshotOf(p)

		prev, existed := r.last[id]

		if !existed {
			d.Added = append(d.Added, viewOf(p))
		} else if prev != cur {
			d.Updated = append(d.Updated, viewOf(p))
		}

		r.last[id] = cur
	}

	for id := range r.last {
		if _, ok := seen[id]; !ok {
			d.Removed = append(d.Removed, id)
			delete(r.last, id)
		}
	}

	return d
}

// Forget removes id from the replicator's baseline without waiting for the
// next Diff call, used when a player leaves mid-tick so their removal is
// broadcast immediately rather than on the next tick.
func (r *replicator) Forget(id string) {
	delete(r.last, id)
}
