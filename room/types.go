// Package room implements the authoritative room simulation: fixed-tick
// physics and combat for up to config.Sim.MaxClients players split across
// two teams (spec §§2-4).
package room

// A Team is one of the two sides of a match.
type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
)

// String returns the wire representation of t.
func (t Team) String() string {
	if t == TeamRed {
		return "red"
	}

	return "blue"
}

// Opponent returns the team t is fighting against.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}

	return TeamRed
}

// A GameState is the lifecycle stage of a room's match.
type GameState uint8

const (
	StateWaiting GameState = iota
	StatePlaying
	StateEnded
)

// String returns the wire representation of s.
func (s GameState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePlaying:
		return "playing"
	default:
		return "ended"
	}
}

// A Player is the authoritative server-side record for one connected
// combatant (spec §3).
type Player struct {
	ID   string
	Name string
	Team Team

	X, Y   float64
	VX, VY float64
	FlipX  bool

	Health    int
	IsDead    bool
	RespawnMs float64
	IsDashing bool
}

// spawnPosition returns where p should appear after joining or respawning.
func (p *Player) spawnPosition(spawns SpawnPoints) (x, y float64) {
	if p.Team == TeamRed {
		return spawns.RedX, spawns.RedY
	}

	return spawns.BlueX, spawns.BlueY
}

// respawn resets p to full health at its team's spawn point. It is the
// only place health is restored to 100 outside of room creation, per
// spec §3's invariant that respawn and only respawn restores health.
func (p *Player) respawn(spawns SpawnPoints) {
	p.Health = 100
	p.IsDead = false
	p.RespawnMs = 0
	p.VX, p.VY = 0, 0
	p.X, p.Y = p.spawnPosition(spawns)
}

// A Bullet is the authoritative server-side record for one in-flight shot
// (spec §3). Vertical velocity is always zero in this game; bullets only
// ever travel horizontally.
type Bullet struct {
	ID string

	X, Y float64
	VX   float64

	OwnerID   string
	OwnerTeam Team

	// RemainingMs counts down to zero; at zero the bullet expires even if
	// it never collided with anything (spec §3's lifetime-expiration
	// removal condition).
	RemainingMs float64
}

// SpawnPoints is the static per-team spawn geometry (spec §6).
type SpawnPoints struct {
	RedX, RedY   float64
	BlueX, BlueY float64
}

// A Platform is a static axis-aligned rectangle that bullets collide
// against (spec §4.1's "platform hit" removal condition). The match's
// platform layout never changes after room creation.
type Platform struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether the point (x, y) lies within p.
func (p Platform) Contains(x, y float64) bool {
	return x >= p.MinX && x <= p.MaxX && y >= p.MinY && y <= p.MaxY
}

// DefaultPlatforms returns the match's static platform geometry: a ground
// strip running the width of the level plus two elevated side ledges and a
// central high ground, laid out symmetrically around the midline (x=1500)
// so neither team gets natural cover.
func DefaultPlatforms() []Platform {
	return []Platform{
		{MinX: -100, MinY: 560, MaxX: 3100, MaxY: 620},  // ground
		{MinX: 700, MinY: 380, MaxX: 1100, MaxY: 420},   // red-side ledge
		{MinX: 1900, MinY: 380, MaxX: 2300, MaxY: 420},  // blue-side ledge
		{MinX: 1350, MinY: 260, MaxX: 1650, MaxY: 300},  // center high ground
	}
}
