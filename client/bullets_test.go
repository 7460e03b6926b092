package client

import (
	"testing"

	"brawlroom/config"
	"brawlroom/room"
)

func TestBulletTrackerIgnoresLocalPlayersOwnBullets(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")

	bt.Added(BulletAdded{ID: "b1", OwnerID: "local", X: 0, VX: 900})

	if len(bt.All()) != 0 {
		t.Fatal("expected the local player's own bullet not to be tracked")
	}
}

func TestBulletTrackerPredictsTravelDistance(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")

	bt.Added(BulletAdded{ID: "b1", OwnerID: "remote", OwnerTeam: room.TeamBlue, X: 0, VX: 900})

	all := bt.All()

	if len(all) != 1 {
		t.Fatalf("expected one tracked bullet, got %d", len(all))
	}

	v := all[0]

	wantTarget := 0 + 900*(sim.BulletLifetimeMs/1000)

	if v.targetX != wantTarget {
		t.Fatalf("expected predicted target %v, got %v", wantTarget, v.targetX)
	}

	if v.Color() != "blue" {
		t.Fatalf("expected blue owner team to render blue, got %q", v.Color())
	}
}

func TestBulletTrackerStepInterpolatesTowardTarget(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")

	bt.Added(BulletAdded{ID: "b1", OwnerID: "remote", X: 0, VX: 1000})

	bt.Step(sim.BulletLifetimeMs / 2)

	all := bt.All()

	if all[0].X <= 0 {
		t.Fatalf("expected the bullet to have advanced partway, got %v", all[0].X)
	}

	bt.Step(sim.BulletLifetimeMs)

	all = bt.All()

	if all[0].X != all[0].targetX {
		t.Fatalf("expected the bullet to clamp at its predicted target, got %v vs %v", all[0].X, all[0].targetX)
	}
}

func TestBulletTrackerRemovedFiresImpactForTrackedBullet(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")
	bt.Added(BulletAdded{ID: "b1", OwnerID: "remote", X: 10, Y: 20, VX: 900})

	var impactX, impactY float64
	bt.OnImpact = func(x, y float64) { impactX, impactY = x, y }

	bt.Removed(BulletRemoved{ID: "b1", X: 10, Y: 20, OwnerID: "remote"}, nil)

	if impactX != 10 || impactY != 20 {
		t.Fatalf("expected impact reported at the bullet's last position, got (%v, %v)", impactX, impactY)
	}

	if len(bt.All()) != 0 {
		t.Fatal("expected the tracked visual to be retired after removal")
	}
}

type fakeLocalPool struct {
	nearID    string
	nearOK    bool
	deactivated string
}

func (p *fakeLocalPool) FindNear(x float64) (string, bool) {
	return p.nearID, p.nearOK
}

func (p *fakeLocalPool) Deactivate(id string) {
	p.deactivated = id
}

func TestBulletTrackerRemovedDelegatesLocalBulletsToPool(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")

	pool := &fakeLocalPool{nearID: "local-bullet-1", nearOK: true}

	var impactFired bool
	bt.OnImpact = func(x, y float64) { impactFired = true }

	bt.Removed(BulletRemoved{ID: "untracked", X: 5, Y: 5, OwnerID: "local"}, pool)

	if pool.deactivated != "local-bullet-1" {
		t.Fatalf("expected the pool to deactivate the matched local bullet, got %q", pool.deactivated)
	}

	if !impactFired {
		t.Fatal("expected an impact callback even for a locally-owned bullet")
	}
}

func TestBulletTrackerRemovedIgnoresUnmatchedForeignRemoval(t *testing.T) {
	sim := config.DefaultSim()
	bt := NewBulletTracker(sim, "local")

	pool := &fakeLocalPool{nearOK: false}

	var impactFired bool
	bt.OnImpact = func(x, y float64) { impactFired = true }

	bt.Removed(BulletRemoved{ID: "untracked", X: 5, Y: 5, OwnerID: "remote-someone-else"}, pool)

	if impactFired {
		t.Fatal("expected no impact for a removal that isn't ours and isn't tracked")
	}

	if pool.deactivated != "" {
		t.Fatal("expected the pool not to be touched for an unrelated owner")
	}
}
