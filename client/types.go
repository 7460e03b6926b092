// Package client is the client-side network session, remote-entity
// interpolation, local prediction/reconciliation, and bullet visual
// tracking described in spec §§4.3-4.6. Asset loading, rendering, sound,
// and input binding are external collaborators; this package only decides
// WHEN and WHERE, never HOW to draw or play anything.
package client

import "brawlroom/room"

// PlayerAdded mirrors a player-added replication event.
type PlayerAdded struct {
	ID, Name  string
	Team      room.Team
	X, Y      float64
	VX, VY    float64
	FlipX     bool
	Health    int
	IsDead    bool
	RespawnMs float64
	IsDashing bool
}

// PlayerUpdated mirrors a player-updated replication event; same shape as
// PlayerAdded.
type PlayerUpdated = PlayerAdded

// BulletAdded mirrors a bullet-added event.
type BulletAdded struct {
	ID        string
	X, Y      float64
	VX        float64
	OwnerID   string
	OwnerTeam room.Team
}

// BulletRemoved mirrors a bullet-removed event.
type BulletRemoved struct {
	ID      string
	X, Y    float64
	OwnerID string
}

// KillEvent mirrors a player-killed event.
type KillEvent struct {
	KillerID, VictimID     string
	KillerName, VictimName string
}

// MatchEndedEvent mirrors a match-ended event.
type MatchEndedEvent struct {
	WinningTeam         room.Team
	ScoreRed, ScoreBlue int
}

// TeamAssigned mirrors a team-assigned event.
type TeamAssigned struct {
	Team       room.Team
	PlayerID   string
	RoomID     string
	PlayerName string
}

// LocalPlayerServerUpdate is the authoritative update fed into
// reconciliation, derived from a player-updated event whose id matches the
// session's local player (spec §4.3/§4.5).
type LocalPlayerServerUpdate struct {
	X, Y      float64
	Health    int
	IsDead    bool
	RespawnMs float64
}
