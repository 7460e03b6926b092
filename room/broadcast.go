package room

import (
	"go.uber.org/zap"

	"brawlroom/transport"
	"brawlroom/wire"
)

// broadcast sends m to every currently-joined client, logging (not
// failing) individual send errors — one client's backed-up socket must
// never stall the room worker (spec §5).
func (r *Room) broadcast(m *wire.Message) {
	for id, c := range r.clients {
		if err := c.Send(m); err != nil {
			Logger.Warn("dropping broadcast to client", zap.String("room", r.ID), zap.String("player", id), zap.Error(err))
		}
	}
}

func (r *Room) broadcastDiff() {
	d := r.replicator.Diff(r.state)

	for _, p := range d.Added {
		r.broadcast(playerMessage("player-added", p))
	}

	for _, p := range d.Updated {
		r.broadcast(playerMessage("player-updated", p))
	}

	for _, id := range d.Removed {
		r.broadcast(wire.New("player-removed").Add("playerId", id))
	}
}

func playerMessage(typ string, p PlayerView) *wire.Message {
	return wire.New(typ).
		Add("playerId", p.ID).
		Add("playerName", p.Name).
		Add("team", p.Team.String()).
		Add("x", p.X).
		Add("y", p.Y).
		Add("velocityX", p.VX).
		Add("velocityY", p.VY).
		Add("flipX", p.FlipX).
		Add("health", p.Health).
		Add("isDead", p.IsDead).
		Add("respawnMs", p.RespawnMs).
		Add("isDashing", p.IsDashing)
}

// sendExistingState catches a newly joined client up on everything the
// room's shared replicator baseline will never tell it about: the
// replicator only reports a player as "Added" the first time it ever sees
// that id, so without this, a client joining after others would see those
// players jump straight to "Updated" (and the client-side interpolator drops
// updates for a player it never saw added — spec §8). The same applies to
// bullets, which are announced once at fire time and never replayed.
func (r *Room) sendExistingState(client *transport.Client, exceptPlayerID string) {
	for id, p := range r.state.Players {
		if id == exceptPlayerID {
			continue
		}

		if err := client.Send(playerMessage("player-added", viewOf(p))); err != nil {
			Logger.Warn("failed to send catch-up player-added", zap.String("room", r.ID), zap.String("player", id), zap.Error(err))
		}
	}

	for _, b := range r.state.Bullets {
		if err := client.Send(bulletAddedMessage(b)); err != nil {
			Logger.Warn("failed to send catch-up bullet-added", zap.String("room", r.ID), zap.String("bullet", b.ID), zap.Error(err))
		}
	}
}

func (r *Room) broadcastPlayerRemoved(playerID string) {
	r.broadcast(wire.New("player-removed").Add("playerId", playerID))
}

func (r *Room) broadcastKill(k KillEvent) {
	r.broadcast(
		wire.New("player-killed").
			Add("killerId", k.KillerID).
			Add("victimId", k.VictimID).
			Add("killerName", k.KillerName).
			Add("victimName", k.VictimName),
	)
}

func (r *Room) broadcastMatchEnd(e MatchEndEvent) {
	r.broadcast(
		wire.New("match-ended").
			Add("winningTeam", e.WinningTeam.String()).
			Add("scoreRed", e.ScoreRed).
			Add("scoreBlue", e.ScoreBlue),
	)
}

func bulletAddedMessage(b *Bullet) *wire.Message {
	return wire.New("bullet-added").
		Add("bulletId", b.ID).
		Add("x", b.X).
		Add("y", b.Y).
		Add("velocityX", b.VX).
		Add("ownerId", b.OwnerID).
		Add("ownerTeam", b.OwnerTeam.String())
}

func (r *Room) broadcastBulletAdded(b *Bullet) {
	r.broadcast(bulletAddedMessage(b))
}

func (r *Room) broadcastBulletRemoved(removal BulletRemoval) {
	r.broadcast(
		wire.New("bullet-removed").
			Add("bulletId", removal.ID).
			Add("x", removal.X).
			Add("y", removal.Y).
			Add("ownerId", removal.OwnerID),
	)
}
