package sim

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBearingBetween_CardinalDirections(t *testing.T) {
	origin := Position{}
	cases := []struct {
		to   Position
		want float64
	}{
		{Position{X: 0, Y: 10}, 0},
		{Position{X: 10, Y: 0}, 90},
		{Position{X: 0, Y: -10}, 180},
		{Position{X: -10, Y: 0}, 270},
	}
	for _, c := range cases {
		if got := bearingBetween(origin, c.to); !almostEqual(got, c.want) {
			t.Errorf("bearingBetween(origin, %+v) = %f, want %f", c.to, got, c.want)
		}
	}
}

func TestNormalizeBearing_WrapsIntoRange(t *testing.T) {
	if got := normalizeBearing(-30); !almostEqual(got, 330) {
		t.Errorf("normalizeBearing(-30) = %f, want 330", got)
	}
	if got := normalizeBearing(370); !almostEqual(got, 10) {
		t.Errorf("normalizeBearing(370) = %f, want 10", got)
	}
	if got := normalizeBearing(360); !almostEqual(got, 0) {
		t.Errorf("normalizeBearing(360) = %f, want 0", got)
	}
}

func TestBearingDelta_ShortestRotation(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{90, 90, 0},
		{350, 10, 20},   // across the wrap, clockwise
		{10, 350, -20},  // across the wrap, counter-clockwise
		{359.5, 0.5, 1}, // jitter straddling due north
		{0.5, 359.5, -1},
		{0, 180, 180},
		{180, 0, 180}, // the antipode maps to +180, never -180
	}
	for _, c := range cases {
		if got := bearingDelta(c.a, c.b); !almostEqual(got, c.want) {
			t.Errorf("bearingDelta(%g, %g) = %f, want %g", c.a, c.b, got, c.want)
		}
	}
}

func TestOffsetPosition_FollowsBearing(t *testing.T) {
	north := offsetPosition(Position{}, 0, 5)
	if !almostEqual(north.X, 0) || !almostEqual(north.Y, 5) {
		t.Errorf("offset north: %+v", north)
	}
	east := offsetPosition(Position{}, 90, 5)
	if !almostEqual(east.X, 5) || !almostEqual(east.Y, 0) {
		t.Errorf("offset east: %+v", east)
	}
}

func TestWorld_AppliesBufferedCommandsOnNextAdvance(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	w.BufferSteering(&SteeringCommand{Bearing: 90})
	w.BufferEvasion(&EvasionCue{Heading: 180})
	w.Advance(1)

	// Torpedo turned due east from (0,0) at speed 4.5.
	if got := distance(Position{X: 4.5, Y: 0}, w.torpedo.pos); got > 1e-9 {
		t.Errorf("torpedo at %+v, want (4.5, 0)", w.torpedo.pos)
	}
	// Ship turned due south from (0,60) at speed 3.
	if got := distance(Position{X: 0, Y: 57}, w.ship.pos); got > 1e-9 {
		t.Errorf("ship at %+v, want (0, 57)", w.ship.pos)
	}

	// Buffered commands are one-shot: the next advance holds the headings.
	w.Advance(2)
	if got := distance(Position{X: 9, Y: 0}, w.torpedo.pos); got > 1e-9 {
		t.Errorf("torpedo at %+v after holding heading, want (9, 0)", w.torpedo.pos)
	}
}

func TestWorld_ProximityKillHaltsAdvance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Geometry.TorpedoStart = Position{X: 0, Y: 58}
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	terminated := w.Advance(1)
	if !terminated || !w.Hit() {
		t.Fatalf("terminated=%v hit=%v, want a proximity kill with the torpedo closing from 2.0", terminated, w.Hit())
	}
	if w.TerminalDistance() > cfg.KillRadius {
		t.Errorf("terminal distance %f past the kill radius %f", w.TerminalDistance(), cfg.KillRadius)
	}
}

func TestWorld_DecoyTimingOffsetDelaysSplash(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	w.BufferDeploy(DeployCommand{
		Tick: 1, DecoyID: "decoy-1", Kind: DecoyFixed,
		Placement: Position{X: 0, Y: 55}, TimingOffset: 2,
	})

	w.Advance(1)
	if got := len(w.SenseAttack(1)); got != 1 {
		t.Fatalf("sweep at tick 1 has %d contacts, want only the ship", got)
	}
	w.Advance(2)
	if got := len(w.SenseAttack(2)); got != 1 {
		t.Fatalf("sweep at tick 2 has %d contacts before the timing offset elapsed", got)
	}
	w.Advance(3)
	if got := len(w.SenseAttack(3)); got != 2 {
		t.Fatalf("sweep at tick 3 has %d contacts, want ship plus the live decoy", got)
	}
}

func TestWorld_ExpiredDecoyLeavesTheSweep(t *testing.T) {
	cfg := DefaultConfig()
	// Park the torpedo far away so the run never terminates early.
	cfg.Geometry.TorpedoStart = Position{X: 0, Y: -500}
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	w.BufferDeploy(DeployCommand{
		Tick: 1, DecoyID: "decoy-1", Kind: DecoyFixed,
		Placement: Position{X: 0, Y: 55},
	})

	w.Advance(1)
	if got := len(w.SenseAttack(1)); got != 2 {
		t.Fatalf("sweep at tick 1 has %d contacts, want ship plus decoy", got)
	}
	for tick := int64(2); tick <= 1+fixedDecoyLifespan; tick++ {
		w.Advance(tick)
	}
	if got := len(w.SenseAttack(1 + fixedDecoyLifespan)); got != 1 {
		t.Errorf("sweep after decoy lifespan has %d contacts, want only the ship", got)
	}
}

func TestWorld_ClosingTorpedoReportsNegativeRadialVelocity(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	w.Advance(1)
	w.SenseDefense(1) // primes the previous-distance table
	w.Advance(2)
	rep := w.SenseDefense(2)[0]

	if rep.ContactID != "torpedo" {
		t.Fatalf("defense sweep reported %q", rep.ContactID)
	}
	if rep.RadialVelocity >= 0 {
		t.Errorf("radial velocity %f for a torpedo outrunning the ship, want negative", rep.RadialVelocity)
	}
}
