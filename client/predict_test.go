package client

import (
	"math"
	"testing"

	"brawlroom/config"
)

func TestReconcilePositionDeadBandIgnoresSmallError(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 100, 100)

	lp.Reconcile(LocalPlayerServerUpdate{X: 102, Y: 100, Health: 100})

	ex, ey := lp.PredictionError()

	if ex != 0 || ey != 0 {
		t.Fatalf("expected dead-band error to be cleared, got (%v, %v)", ex, ey)
	}

	if lp.X != 100 {
		t.Fatalf("expected position to stay put inside the dead band, got %v", lp.X)
	}
}

func TestReconcilePositionBleedsOffMidRangeError(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 100, 100)

	lp.Reconcile(LocalPlayerServerUpdate{X: 150, Y: 100, Health: 100})

	ex, _ := lp.PredictionError()

	if ex != 50 {
		t.Fatalf("expected stored prediction error of 50px, got %v", ex)
	}

	if lp.X != 100 {
		t.Fatalf("expected no instant jump for a bleed-off correction, got %v", lp.X)
	}

	for i := 0; i < 5000; i++ {
		lp.Update(1.0 / 60)
	}

	ex, ey := lp.PredictionError()

	if ex != 0 || ey != 0 {
		t.Fatalf("expected prediction error to fully decay, got (%v, %v)", ex, ey)
	}

	if math.Abs(lp.X-150) > 0.1 {
		t.Fatalf("expected position to converge to server truth, got %v", lp.X)
	}
}

func TestReconcilePositionSnapsBeyondThreshold(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 0, 0)

	lp.Reconcile(LocalPlayerServerUpdate{X: 500, Y: 0, Health: 100})

	if lp.X != 500 {
		t.Fatalf("expected an instant snap beyond the threshold, got %v", lp.X)
	}

	ex, ey := lp.PredictionError()

	if ex != 0 || ey != 0 {
		t.Fatalf("expected no residual error after a snap, got (%v, %v)", ex, ey)
	}
}

func TestReconcilePositionUsesWiderThresholdWhileDashing(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 0, 0)
	lp.SetDashing(true)

	// 150px is within SnapThresholdDashingPx (300) but beyond the normal
	// SnapThresholdPx (100): dashing should bleed this off, not snap.
	lp.Reconcile(LocalPlayerServerUpdate{X: 150, Y: 0, Health: 100})

	if lp.X != 0 {
		t.Fatalf("expected the dashing threshold to avoid a snap, got %v", lp.X)
	}

	ex, _ := lp.PredictionError()

	if ex != 150 {
		t.Fatalf("expected the full error stored for bleed-off, got %v", ex)
	}
}

func TestReconcilePositionUsesWiderThresholdJustAfterDashing(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 0, 0)

	lp.SetDashing(true)
	lp.SetDashing(false)

	// Still within the grace window: 150px should bleed off, not snap, the
	// same as mid-dash.
	lp.Reconcile(LocalPlayerServerUpdate{X: 150, Y: 0, Health: 100})

	if lp.X != 0 {
		t.Fatalf("expected the post-dash grace window to avoid a snap, got %v", lp.X)
	}

	ex, _ := lp.PredictionError()

	if ex != 150 {
		t.Fatalf("expected the full error stored for bleed-off, got %v", ex)
	}
}

func TestReconcilePositionSnapsAfterGraceWindowExpires(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 0, 0)

	lp.SetDashing(true)
	lp.SetDashing(false)

	for i := 0; i < 60; i++ {
		lp.Update(1.0 / 60) // well past DashSnapGraceSeconds
	}

	lp.Reconcile(LocalPlayerServerUpdate{X: 150, Y: 0, Health: 100})

	if lp.X != 150 {
		t.Fatalf("expected a normal-threshold snap once the grace window lapses, got %v", lp.X)
	}
}

func TestReconcileHealthFiresHitDeathAndRespawnEdges(t *testing.T) {
	sim := config.DefaultSim()
	lp := NewLocalPredictor(sim, 0, 0)

	var hits, deaths, respawns int

	lp.OnHit = func() { hits++ }
	lp.OnDeath = func() { deaths++ }
	lp.OnRespawn = func() { respawns++ }

	// First update just seeds the baseline; it must not itself count as a hit.
	lp.Reconcile(LocalPlayerServerUpdate{X: 0, Y: 0, Health: 100, IsDead: false})

	if hits != 0 {
		t.Fatalf("expected the baseline update not to fire OnHit, got %d", hits)
	}

	lp.Reconcile(LocalPlayerServerUpdate{X: 0, Y: 0, Health: 90, IsDead: false})

	if hits != 1 {
		t.Fatalf("expected one OnHit after a health decrease, got %d", hits)
	}

	lp.Reconcile(LocalPlayerServerUpdate{X: 0, Y: 0, Health: 0, IsDead: true})

	if deaths != 1 {
		t.Fatalf("expected one OnDeath on the dead edge, got %d", deaths)
	}

	lp.Reconcile(LocalPlayerServerUpdate{X: 0, Y: 0, Health: 100, IsDead: false})

	if respawns != 1 {
		t.Fatalf("expected one OnRespawn on the alive edge, got %d", respawns)
	}
}

func TestRespawnCeilingSeconds(t *testing.T) {
	cases := []struct {
		ms   float64
		want int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{1000, 1},
		{1001, 2},
		{2999, 3},
		{3000, 3},
	}

	for _, c := range cases {
		if got := RespawnCeilingSeconds(c.ms); got != c.want {
			t.Errorf("RespawnCeilingSeconds(%v) = %v, want %v", c.ms, got, c.want)
		}
	}
}
