package client

import (
	"math"

	"brawlroom/config"
)

// LocalPredictor holds the local player's predicted position, health, and
// the in-flight reconciliation error against the last authoritative
// server update (spec §4.5). The movement state machine that drives X/Y
// each frame from raw input is an external, trusted subsystem; this type
// only owns reconciliation.
type LocalPredictor struct {
	sim config.Sim

	X, Y float64

	predictionErrorX, predictionErrorY float64

	isDashing          bool
	dashGraceRemaining float64

	health      int
	isDead      bool
	hasBaseline bool

	OnHit     func()
	OnDeath   func()
	OnRespawn func()
}

// DashSnapGraceSeconds is the "small window after" spec §4.5 calls for: the
// wide dashing snap threshold keeps applying for this long after a dash
// ends, so a reconciliation landing just after SetDashing(false) still
// bleeds off instead of teleporting.
const DashSnapGraceSeconds = 0.25

// NewLocalPredictor returns a predictor seeded at (x, y) with full health.
func NewLocalPredictor(sim config.Sim, x, y float64) *LocalPredictor {
	return &LocalPredictor{sim: sim, X: x, Y: y, health: 100}
}

// SetPosition is called by the external movement system every frame
// before reconciliation; it's the "raw" locally-simulated position.
func (lp *LocalPredictor) SetPosition(x, y float64) {
	lp.X, lp.Y = x, y
}

// SetDashing toggles the wider snap threshold used while dashing (spec
// §4.5's "tolerance for server/client desync during high-speed moves"). The
// wide threshold lingers for DashSnapGraceSeconds after dashing stops.
func (lp *LocalPredictor) SetDashing(dashing bool) {
	lp.isDashing = dashing

	if !dashing {
		lp.dashGraceRemaining = DashSnapGraceSeconds
	}
}

// PredictionError returns the remaining reconciliation error, for the
// caller to display as a network-quality indicator alongside remote
// players.
func (lp *LocalPredictor) PredictionError() (ex, ey float64) {
	return lp.predictionErrorX, lp.predictionErrorY
}

// Reconcile applies an authoritative server update: dead-band, bleed-off,
// or snap, per spec §4.5, plus the health/death/respawn side effects.
func (lp *LocalPredictor) Reconcile(update LocalPlayerServerUpdate) {
	lp.reconcilePosition(update.X, update.Y)
	lp.reconcileHealth(update.Health, update.IsDead)
}

func (lp *LocalPredictor) reconcilePosition(serverX, serverY float64) {
	ex := serverX - lp.X
	ey := serverY - lp.Y

	dist := math.Hypot(ex, ey)

	snapThreshold := lp.sim.SnapThresholdPx

	if lp.isDashing || lp.dashGraceRemaining > 0 {
		snapThreshold = lp.sim.SnapThresholdDashingPx
	}

	switch {
	case dist <= lp.sim.ReconcileDeadBandPx:
		lp.predictionErrorX, lp.predictionErrorY = 0, 0

	case dist <= snapThreshold:
		lp.predictionErrorX, lp.predictionErrorY = ex, ey

	default:
		lp.X, lp.Y = serverX, serverY
		lp.predictionErrorX, lp.predictionErrorY = 0, 0
	}
}

func (lp *LocalPredictor) reconcileHealth(newHealth int, isDead bool) {
	if !lp.hasBaseline {
		lp.health, lp.isDead, lp.hasBaseline = newHealth, isDead, true
		return
	}

	if newHealth < lp.health && newHealth > 0 && lp.OnHit != nil {
		lp.OnHit()
	}

	if !lp.isDead && isDead && lp.OnDeath != nil {
		lp.OnDeath()
	} else if lp.isDead && !isDead && lp.OnRespawn != nil {
		lp.OnRespawn()
	}

	lp.health, lp.isDead = newHealth, isDead
}

// Update bleeds off any stored reconciliation error toward zero, moving
// the visible position a little closer to the last server truth each
// frame, until both components fall under 0.1px (spec §4.5).
func (lp *LocalPredictor) Update(dtSeconds float64) {
	if lp.dashGraceRemaining > 0 {
		lp.dashGraceRemaining -= dtSeconds

		if lp.dashGraceRemaining < 0 {
			lp.dashGraceRemaining = 0
		}
	}

	if lp.predictionErrorX == 0 && lp.predictionErrorY == 0 {
		return
	}

	decay := 1 - lp.sim.ReconcileRatePerSecond*dtSeconds

	newErrX := lp.predictionErrorX * decay
	newErrY := lp.predictionErrorY * decay

	lp.X += lp.predictionErrorX - newErrX
	lp.Y += lp.predictionErrorY - newErrY

	lp.predictionErrorX, lp.predictionErrorY = newErrX, newErrY

	if math.Abs(lp.predictionErrorX) < 0.1 && math.Abs(lp.predictionErrorY) < 0.1 {
		lp.predictionErrorX, lp.predictionErrorY = 0, 0
	}
}

// RespawnCeilingSeconds returns the ceiling of respawnMs/1000, the display
// value spec §4.5 mandates.
func RespawnCeilingSeconds(respawnMs float64) int {
	if respawnMs <= 0 {
		return 0
	}

	return int(math.Ceil(respawnMs / 1000))
}

