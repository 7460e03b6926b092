package room

import (
	"strconv"

	"brawlroom/config"
)

// State is the full authoritative state of one match (spec §3). Every
// field here is mutated only by the owning room's single worker — see
// spec §5.
type State struct {
	Players map[string]*Player
	Bullets []*Bullet

	ScoreRed, ScoreBlue int

	GameState GameState

	// GameTimeMs is monotonically nondecreasing milliseconds since the
	// match started playing.
	GameTimeMs float64

	// WinningTeam is meaningful iff GameState == StateEnded.
	WinningTeam Team

	Platforms []Platform
	Spawns    SpawnPoints

	sim config.Sim

	// bulletSeq is a per-owner monotonic counter used to build bullet
	// ids, replacing the teacher-lineage's owner+timestamp scheme (see
	// SPEC_FULL's REDESIGN FLAG note: two shots in the same millisecond
	// must not collide).
	bulletSeq map[string]uint64
}

// NewState returns an empty, waiting room state using sim for all balance
// constants and platforms/spawns for the match geometry.
func NewState(sim config.Sim, platforms []Platform) *State {
	return &State{
		Players:   make(map[string]*Player),
		Bullets:   make([]*Bullet, 0, 16),
		GameState: StateWaiting,
		Platforms: platforms,
		Spawns: SpawnPoints{
			RedX: sim.RedSpawnX, RedY: sim.RedSpawnY,
			BlueX: sim.BlueSpawnX, BlueY: sim.BlueSpawnY,
		},
		sim:       sim,
		bulletSeq: make(map[string]uint64),
	}
}

// TeamCounts returns the number of connected players on each team,
// regardless of alive/dead state (used for join-balancing, spec §4.2).
func (s *State) TeamCounts() (red, blue int) {
	for _, p := range s.Players {
		if p.Team == TeamRed {
			red++
		} else {
			blue++
		}
	}

	return
}

// BalanceTeam returns the team a newly-joining player should be assigned
// to: whichever team currently has fewer players, with ties going to red
// (spec §4.2).
func (s *State) BalanceTeam() Team {
	red, blue := s.TeamCounts()

	if blue < red {
		return TeamBlue
	}

	return TeamRed
}

// nextBulletID returns a fresh, collision-free id for a bullet fired by
// ownerID.
func (s *State) nextBulletID(ownerID string) string {
	s.bulletSeq[ownerID]++

	seq := s.bulletSeq[ownerID]

	return ownerID + "-" + strconv.FormatUint(seq, 10)
}

// Metadata is the searchable-by-lobby room summary from spec §6.
type Metadata struct {
	RedCount, BlueCount int
	GameState           string
}

// Metadata returns the current room metadata snapshot.
func (s *State) Metadata() Metadata {
	red, blue := s.TeamCounts()

	return Metadata{RedCount: red, BlueCount: blue, GameState: s.GameState.String()}
}
