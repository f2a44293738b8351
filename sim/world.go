// Fixed external collaborators: entity kinematics, decoy kinematics and the
// detector. The decision core consumes these only through their message
// contracts (ContactReport in, SteeringCommand/DeployCommand out); nothing in
// this file makes a targeting or deployment decision.

package sim

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Position is a 2D surface position.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// distance returns the Euclidean distance between two positions.
func distance(a, b Position) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// bearingBetween returns the bearing (degrees, 0 = north, clockwise) from one
// position to another.
func bearingBetween(from, to Position) float64 {
	return normalizeBearing(math.Atan2(to.X-from.X, to.Y-from.Y) * 180 / math.Pi)
}

// offsetPosition returns p displaced dist units along bearing.
func offsetPosition(p Position, bearing, dist float64) Position {
	rad := bearing * math.Pi / 180
	return Position{X: p.X + dist*math.Sin(rad), Y: p.Y + dist*math.Cos(rad)}
}

// normalizeBearing maps a bearing into [0, 360).
func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// bearingDelta returns the signed smallest rotation from bearing a to
// bearing b, in (-180, 180]. A track jittering across the 0/360 wrap yields
// small deltas, never +-359.
func bearingDelta(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	switch {
	case d > 180:
		d -= 360
	case d <= -180:
		d += 360
	}
	return d
}

// velocityVector converts heading/speed to velocity components.
func velocityVector(heading, speed float64) (vx, vy float64) {
	rad := heading * math.Pi / 180
	return speed * math.Sin(rad), speed * math.Cos(rad)
}

// mover is any object the world advances each tick.
type mover struct {
	pos     Position
	heading float64
	speed   float64
}

func (m *mover) advance(ticks float64) {
	vx, vy := velocityVector(m.heading, m.speed)
	m.pos.X += vx * ticks
	m.pos.Y += vy * ticks
}

// Decoy signature parameters. A fixed decoy is a cheap static reflector with
// a fast-fading signature; a self-propelled decoy runs at ship speed and
// fades slowly, mimicking but not perfectly sustaining a ship signature.
const (
	fixedDecoySignal    = 0.85
	fixedDecoyDecay     = 0.04 // per tick
	fixedDecoyLifespan  = 30
	propDecoySignal     = 0.95
	propDecoyDecay      = 0.012
	propDecoyLifespan   = 45
	shipBaseSignal      = 1.0
	torpedoBaseSignal   = 0.6
	bearingNoiseSigma   = 0.8  // degrees
	rangeNoiseFrac      = 0.01 // fraction of true range
	hintRevealPAttack   = 0.25 // chance the attacker's feed includes a kind hint
	hintRevealPDefense  = 0.80 // chance the defender's feed tags the torpedo
	decoySalvoJitterMax = 0.3  // positional scatter applied at splash
)

// decoyObject is one live decoy in the water.
type decoyObject struct {
	mover
	id        string
	kind      DecoyKind
	liveAt    int64
	expiresAt int64
	signal    float64
	decay     float64
}

// World holds the true (un-sensed) engagement state and implements the
// maneuver and decoy-kinematics models. It buffers the commands emitted by
// the controllers during a tick and applies them on the next advance, so
// within-tick execution order of the controllers cannot change the physics.
type World struct {
	cfg Config
	rng *PartitionedRNG

	torpedo mover
	ship    mover
	decoys  []*decoyObject

	pendingSteer   *SteeringCommand
	pendingEvasion *EvasionCue
	pendingDeploys []DeployCommand

	// previous-tick distances per observer/source pair, for radial velocity
	prevDist map[string]float64

	hit              bool
	terminalDistance float64
}

// NewWorld sets up the initial engagement geometry. The torpedo starts on an
// intercept heading; the ship holds its scenario heading until cued.
func NewWorld(cfg Config, rng *PartitionedRNG) *World {
	w := &World{
		cfg:      cfg,
		rng:      rng,
		prevDist: make(map[string]float64),
	}
	w.ship = mover{pos: cfg.Geometry.ShipStart, heading: cfg.Geometry.ShipHeading, speed: cfg.Geometry.ShipSpeed}
	w.torpedo = mover{
		pos:     cfg.Geometry.TorpedoStart,
		heading: bearingBetween(cfg.Geometry.TorpedoStart, cfg.Geometry.ShipStart),
		speed:   cfg.Geometry.TorpedoSpeed,
	}
	w.terminalDistance = distance(w.torpedo.pos, w.ship.pos)
	return w
}

// BufferSteering stores the torpedo steering command for the next advance.
func (w *World) BufferSteering(cmd *SteeringCommand) { w.pendingSteer = cmd }

// BufferEvasion stores the ship evasion cue for the next advance.
func (w *World) BufferEvasion(cue *EvasionCue) { w.pendingEvasion = cue }

// BufferDeploy queues a deploy command; the decoy splashes once its timing
// offset elapses.
func (w *World) BufferDeploy(cmd DeployCommand) {
	w.pendingDeploys = append(w.pendingDeploys, cmd)
}

// Hit reports whether the proximity-kill condition fired.
func (w *World) Hit() bool { return w.hit }

// TerminalDistance returns the torpedo-to-ship distance at the last advance.
func (w *World) TerminalDistance() float64 { return w.terminalDistance }

// ShipState returns the defender's own-ship kinematic snapshot.
func (w *World) ShipState() OwnShipState {
	return OwnShipState{Position: w.ship.pos, Heading: w.ship.heading, Speed: w.ship.speed}
}

// Advance moves every object one tick and evaluates the proximity-kill
// condition. Returns true when the engagement has terminated.
func (w *World) Advance(tick int64) bool {
	if w.pendingEvasion != nil {
		w.ship.heading = w.pendingEvasion.Heading
		w.pendingEvasion = nil
	}
	if w.pendingSteer != nil {
		w.torpedo.heading = w.pendingSteer.Bearing
		w.pendingSteer = nil
	}

	w.ship.advance(1)
	w.torpedo.advance(1)

	w.spawnDueDecoys(tick)
	live := w.decoys[:0]
	for _, d := range w.decoys {
		if tick >= d.expiresAt {
			logrus.Debugf("[tick %d] %s expired", tick, d.id)
			continue
		}
		if tick >= d.liveAt {
			d.advance(1)
			d.signal = math.Max(0, d.signal-d.decay)
		}
		live = append(live, d)
	}
	w.decoys = live

	w.terminalDistance = distance(w.torpedo.pos, w.ship.pos)
	if w.terminalDistance <= w.cfg.KillRadius {
		logrus.Infof("[tick %d] proximity kill at distance %.2f", tick, w.terminalDistance)
		w.hit = true
		return true
	}
	return false
}

func (w *World) spawnDueDecoys(tick int64) {
	remaining := w.pendingDeploys[:0]
	for _, cmd := range w.pendingDeploys {
		if cmd.Tick+cmd.TimingOffset > tick {
			remaining = append(remaining, cmd)
			continue
		}
		d := &decoyObject{
			id:     cmd.DecoyID,
			kind:   cmd.Kind,
			liveAt: tick,
		}
		rng := w.rng.ForSubsystem(SubsystemDecoy(cmd.DecoyID))
		d.pos = Position{
			X: cmd.Placement.X + (rng.Float64()*2-1)*decoySalvoJitterMax,
			Y: cmd.Placement.Y + (rng.Float64()*2-1)*decoySalvoJitterMax,
		}
		switch cmd.Kind {
		case DecoyFixed:
			d.speed = 0
			d.signal = fixedDecoySignal
			d.decay = fixedDecoyDecay
			d.expiresAt = tick + fixedDecoyLifespan
		case DecoySelfPropelled:
			// runs off at ship speed on a diverging course
			d.speed = w.ship.speed
			d.heading = normalizeBearing(w.ship.heading + 90 + rng.Float64()*60)
			d.signal = propDecoySignal
			d.decay = propDecoyDecay
			d.expiresAt = tick + propDecoyLifespan
		}
		logrus.Debugf("[tick %d] %s live at (%.1f, %.1f)", tick, d.id, d.pos.X, d.pos.Y)
		w.decoys = append(w.decoys, d)
	}
	w.pendingDeploys = remaining
}

// senseOne builds a noisy contact report of src as seen by an observer.
func (w *World) senseOne(observerKey string, observer mover, srcID string, src mover, signal float64, truth string, hintP float64, rng ContactNoise) ContactReport {
	trueRange := distance(observer.pos, src.pos)
	trueBearing := bearingBetween(observer.pos, src.pos)

	key := observerKey + "/" + srcID
	radial := 0.0
	if prev, ok := w.prevDist[key]; ok {
		radial = trueRange - prev
	}
	w.prevDist[key] = trueRange

	hint := ""
	if rng.Float64() < hintP {
		hint = truth
	}
	return ContactReport{
		ContactID:      srcID,
		Bearing:        normalizeBearing(trueBearing + rng.NormFloat64()*bearingNoiseSigma),
		Range:          trueRange * (1 + rng.NormFloat64()*rangeNoiseFrac),
		RadialVelocity: radial,
		SignalStrength: math.Max(0, signal+rng.NormFloat64()*0.02),
		KindHint:       hint,
	}
}

// ContactNoise is the slice of rand.Rand the detector draws from. Narrow so
// tests can substitute a fixed source.
type ContactNoise interface {
	Float64() float64
	NormFloat64() float64
}

// SenseAttack produces the attacker's detection sweep: the ship and every
// live decoy, in a stable order (ship first, then decoys in deployment
// order). The torpedo never appears in its own feed.
func (w *World) SenseAttack(tick int64) []ContactReport {
	rng := w.rng.ForSubsystem(SubsystemAttackDetector)
	reports := []ContactReport{
		w.senseOne("atk", w.torpedo, "ship", w.ship, shipBaseSignal, "ship", hintRevealPAttack, rng),
	}
	for _, d := range w.decoys {
		if tick < d.liveAt {
			continue
		}
		reports = append(reports, w.senseOne("atk", w.torpedo, d.id, d.mover, d.signal, "decoy", hintRevealPAttack, rng))
	}
	return reports
}

// SenseDefense produces the defender's detection sweep: the inbound torpedo.
func (w *World) SenseDefense(tick int64) []ContactReport {
	rng := w.rng.ForSubsystem(SubsystemDefenseDetector)
	return []ContactReport{
		w.senseOne("def", w.ship, "torpedo", w.torpedo, torpedoBaseSignal, "torpedo", hintRevealPDefense, rng),
	}
}
