// The defender's threat assessment and decoy deployment controller. Decides,
// under the ledger's budget ceiling, whether/when/what decoys to deploy
// against an inbound torpedo, and cues the ship's evasive maneuvering.

package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// Torpedo behavior patterns inferred by the defender. The counter-strategy
// differs: a distance-priority torpedo is beaten by a fixed-angle sprint, a
// movement-tracking torpedo by confusion maneuvers.
const (
	PatternUnknown          = "unknown"
	PatternDistancePriority = "distance_priority"
	PatternMovementTracking = "movement_tracking"
)

// OwnShipState is the kinematic snapshot the defender receives each tick.
type OwnShipState struct {
	Position Position
	Heading  float64 // degrees
	Speed    float64
}

// DeployCommand orders one decoy into the water. Consumed by the external
// decoy-kinematics model; the ledger record was already appended when the
// command was created.
type DeployCommand struct {
	Tick         int64
	DecoyID      string
	Kind         DecoyKind
	Placement    Position
	TimingOffset int64 // ticks after Tick at which the decoy goes live
}

// EvasionCue steers the ship. Pattern names the strategy for the log and for
// tests; the maneuver model only reads Heading.
type EvasionCue struct {
	Tick    int64
	Heading float64
	Pattern string
}

// ThreatDecision is the controller's per-tick output. An empty Deployments
// slice is the explicit no-action result: either no threat warranted decoys
// or no affordable plan existed, both normal outcomes.
type ThreatDecision struct {
	Deployments []DeployCommand
	Evasion     *EvasionCue
}

// planStep is one decoy within a deployment plan.
type planStep struct {
	kind          DecoyKind
	bearingOffset float64 // degrees off the threat bearing, from the ship
	timingOffset  int64   // ticks after the commit tick
}

// deployPlan is a candidate set of decoys with its total marginal cost and a
// coarse deterrence rating (how much confusion the salvo is expected to buy).
type deployPlan struct {
	name       string
	steps      []planStep
	cost       float64
	deterrence int
}

// ThreatController is the Threat Assessment & Decoy Deployment Controller for
// one defending ship.
type ThreatController struct {
	cfg       ThreatConfig
	ledgerCfg LedgerConfig
	ledger    *Ledger
	contacts  *ContactTable
	silence   int64

	// torpedo pattern analysis
	pattern           string
	patternConfidence float64

	// fixed-angle escape against distance-priority torpedoes
	escapeAngle float64
	escapeSet   bool

	deployments    int
	lastDeployTick int64
}

// NewThreatController creates a controller backed by the given ledger. The
// ledger is owned by the defending side and shared with nothing else; this
// controller is its only writer.
func NewThreatController(cfg ThreatConfig, ledgerCfg LedgerConfig, clsCfg ClassifierConfig, scanInterval int64, ledger *Ledger) *ThreatController {
	return &ThreatController{
		cfg:            cfg,
		ledgerCfg:      ledgerCfg,
		ledger:         ledger,
		contacts:       NewContactTable(clsCfg.HistoryDepth, scanInterval),
		silence:        clsCfg.SilenceTimeout,
		pattern:        PatternUnknown,
		lastDeployTick: -1,
	}
}

// Pattern returns the inferred torpedo behavior pattern and its confidence.
func (tc *ThreatController) Pattern() (string, float64) {
	return tc.pattern, tc.patternConfidence
}

// threatScore is the inverted analogue of the attacker's classification: it
// rates how torpedo-like an inbound contact is. Closing rate, proximity,
// persistence and the detector's kind hint each contribute; the result is
// clamped to [0,1]. A contact with no history scores conservatively low.
func (tc *ThreatController) threatScore(c *Contact, own OwnShipState) float64 {
	closing := 0.0
	if c.RadialVelocity < 0 {
		closing = clamp01(-c.RadialVelocity / tc.cfg.ClosingRateScale)
	}
	proximity := clamp01(1.0 - c.Range/tc.cfg.RangeScale)
	persist := persistenceSignal(c)
	hint := 0.0
	if c.KindHint == "torpedo" {
		hint = 1.0
	}
	return clamp01(tc.cfg.ClosingWeight*closing +
		tc.cfg.ProximityWeight*proximity +
		tc.cfg.PersistenceWeight*persist +
		tc.cfg.HintWeight*hint)
}

// timeToImpact estimates ticks until the contact reaches the ship, assuming
// the current closing rate holds. Non-closing contacts never impact.
func timeToImpact(c *Contact) (int64, bool) {
	if c.RadialVelocity >= -1e-9 {
		return 0, false
	}
	return int64(math.Ceil(c.Range / -c.RadialVelocity)), true
}

// Step runs one defender tick. Reports are the defender's detection feed for
// this tick; the returned decision carries zero or more deploy commands plus
// an optional evasion cue.
func (tc *ThreatController) Step(tick int64, own OwnShipState, reports []ContactReport) ThreatDecision {
	for _, rep := range reports {
		tc.contacts.Observe(tick, rep)
	}
	tc.contacts.Prune(tick, tc.silence)

	threat := tc.worstThreat(own)
	if threat == nil {
		return ThreatDecision{} // nothing inbound: explicit no-action
	}
	score := tc.threatScore(threat, own)
	tc.analyzePattern(threat)

	if score < tc.cfg.EngagementThreshold {
		logrus.Debugf("[tick %d] threat %s below engagement threshold (%.3f < %.3f)",
			tick, threat.ID, score, tc.cfg.EngagementThreshold)
		return ThreatDecision{}
	}

	decision := ThreatDecision{
		Evasion: tc.evasionCue(tick, threat),
	}
	if tc.shouldDeploy(tick, threat) {
		decision.Deployments = tc.commitCheapestPlan(tick, own, threat)
	}
	return decision
}

// worstThreat selects the most dangerous inbound contact under the same
// deterministic tie-break discipline as the attacker: higher threat score,
// then smaller range, then earlier first detection.
func (tc *ThreatController) worstThreat(own OwnShipState) *Contact {
	var best *Contact
	var bestScore float64
	for _, c := range tc.contacts.Live() {
		s := tc.threatScore(c, own)
		if best == nil {
			best, bestScore = c, s
			continue
		}
		if s != bestScore {
			if s > bestScore {
				best, bestScore = c, s
			}
			continue
		}
		if betterCandidate(c, best) {
			best, bestScore = c, s
		}
	}
	return best
}

// shouldDeploy gates deployment on the reaction window and on re-deployment
// rules: after a salvo the controller holds fire until the torpedo is judged
// to have re-acquired the real ship (constant-bearing, decreasing-range).
func (tc *ThreatController) shouldDeploy(tick int64, threat *Contact) bool {
	tti, ok := timeToImpact(threat)
	if !ok || tti > tc.cfg.ReactionWindow {
		return false
	}
	if tc.deployments == 0 {
		return true
	}
	// Give an earlier salvo a few ticks to take effect before judging it.
	if tick-tc.lastDeployTick <= tc.silence {
		return false
	}
	if tc.reacquired(threat) {
		logrus.Infof("[tick %d] torpedo re-converged on own bearing, decoys judged failed", tick)
		return true
	}
	return false
}

// reacquired detects the earlier salvo's failure: the inbound contact holds a
// near-constant bearing while still closing, the collision-course signature.
func (tc *ThreatController) reacquired(threat *Contact) bool {
	if threat.RadialVelocity >= 0 || threat.BearingHistory.Len() < 3 {
		return false
	}
	bearings := threat.BearingHistory.Values()
	// Spread is measured as signed rotations off the first bearing, so a
	// track straddling the 0/360 wrap still reads as a narrow arc.
	lo, hi := 0.0, 0.0
	for _, b := range bearings[1:] {
		off := bearingDelta(bearings[0], b)
		lo = math.Min(lo, off)
		hi = math.Max(hi, off)
	}
	return hi-lo < tc.cfg.ReconvergenceArc
}

// candidatePlans enumerates every salvo of up to MaxSalvoSize decoys meeting
// the needed deterrence, in ascending cost order (ties: fewer decoys, then
// fixed-heavy first). The ordering is total and deterministic.
func (tc *ThreatController) candidatePlans(needed int) []deployPlan {
	var plans []deployPlan
	maxN := tc.cfg.MaxSalvoSize
	for nFixed := 0; nFixed <= maxN; nFixed++ {
		for nProp := 0; nFixed+nProp <= maxN; nProp++ {
			count := nFixed + nProp
			if count == 0 {
				continue
			}
			// A self-propelled decoy mimics ship motion and buys far
			// more confusion than a stationary one.
			deterrence := nFixed + 3*nProp
			if deterrence < needed {
				continue
			}
			plans = append(plans, deployPlan{
				name:       planName(nFixed, nProp),
				steps:      planSteps(nFixed, nProp),
				cost:       float64(nFixed)*tc.ledgerCfg.FixedCost + float64(nProp)*tc.ledgerCfg.SelfPropelledCost,
				deterrence: deterrence,
			})
		}
	}
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].cost != plans[j].cost {
			return plans[i].cost < plans[j].cost
		}
		if len(plans[i].steps) != len(plans[j].steps) {
			return len(plans[i].steps) < len(plans[j].steps)
		}
		return plans[i].name < plans[j].name
	})
	return plans
}

// neededDeterrence scales the required salvo strength with urgency: a torpedo
// inside half the reaction window demands a stronger screen.
func (tc *ThreatController) neededDeterrence(threat *Contact) int {
	if tti, ok := timeToImpact(threat); ok && tti <= tc.cfg.ReactionWindow/2 {
		return 3
	}
	return 2
}

// commitCheapestPlan walks the candidate plans in ascending cost order and
// commits to the first one the ledger accepts in full. Steps within a plan
// are charged in order; because the whole plan's cost was checked against the
// remaining budget first, acceptance is all-or-nothing. When nothing is
// affordable the controller returns no deployments and the ship relies on
// evasion alone.
func (tc *ThreatController) commitCheapestPlan(tick int64, own OwnShipState, threat *Contact) []DeployCommand {
	needed := tc.neededDeterrence(threat)
	for _, plan := range tc.candidatePlans(needed) {
		if plan.cost > tc.ledger.Remaining() {
			continue
		}
		cmds := make([]DeployCommand, 0, len(plan.steps))
		for _, step := range plan.steps {
			placement := offsetPosition(own.Position, normalizeBearing(threat.Bearing+step.bearingOffset), 3.0)
			decoyID, accepted := tc.ledger.RequestDeploy(step.kind, tc.ledgerCfg.KindCost(step.kind), tick, placement)
			if !accepted {
				// Remaining() said this fits; only a configuration
				// bug could land here. The partial plan is abandoned,
				// not deployed.
				logrus.Warnf("[tick %d] ledger refused step of affordable plan %s", tick, plan.name)
				return nil
			}
			cmds = append(cmds, DeployCommand{
				Tick:         tick,
				DecoyID:      decoyID,
				Kind:         step.kind,
				Placement:    placement,
				TimingOffset: step.timingOffset,
			})
		}
		tc.deployments++
		tc.lastDeployTick = tick
		logrus.Infof("[tick %d] committed plan %s (cost %.2f, %d decoys)", tick, plan.name, plan.cost, len(cmds))
		return cmds
	}
	logrus.Infof("[tick %d] no affordable deployment plan, evasion only", tick)
	return nil
}

// evasionCue picks the escape heading for this tick based on the inferred
// torpedo pattern. Zigzag alternation keys off the tick counter, never the
// wall clock, so replays are identical.
func (tc *ThreatController) evasionCue(tick int64, threat *Contact) *EvasionCue {
	approach := threat.Bearing
	away := normalizeBearing(approach + 180)

	switch {
	case tc.pattern == PatternDistancePriority && tc.patternConfidence > 0.2:
		if !tc.escapeSet {
			tc.escapeAngle = away
			tc.escapeSet = true
			logrus.Infof("[tick %d] escape heading fixed at %.1f against distance-priority torpedo", tick, tc.escapeAngle)
		}
		return &EvasionCue{Tick: tick, Heading: tc.escapeAngle, Pattern: PatternDistancePriority}
	case tc.pattern == PatternMovementTracking && tc.patternConfidence > 0.2:
		if threat.Range < 15 {
			// close aboard: zigzag
			offset := 45.0
			if (tick/4)%2 == 1 {
				offset = -45.0
			}
			return &EvasionCue{Tick: tick, Heading: normalizeBearing(away + offset), Pattern: PatternMovementTracking}
		}
		return &EvasionCue{Tick: tick, Heading: normalizeBearing(away + 60), Pattern: PatternMovementTracking}
	default:
		return &EvasionCue{Tick: tick, Heading: away, Pattern: PatternUnknown}
	}
}

// analyzePattern classifies the inbound torpedo's guidance behavior from its
// track: steady closure with a stable bearing is distance-priority, frequent
// bearing swings are movement-tracking. Confidence builds while the evidence
// repeats and resets when the verdict flips.
func (tc *ThreatController) analyzePattern(threat *Contact) {
	if threat.RangeHistory.Len() < 3 {
		return
	}
	rangeDeltas := deltas(threat.RangeHistory.Values())
	meanClosure := 0.0
	for _, d := range rangeDeltas {
		meanClosure += d
	}
	meanClosure /= float64(len(rangeDeltas))

	bearingDeltas := angularDeltas(threat.BearingHistory.Values())
	swings := 0
	for _, d := range bearingDeltas {
		if math.Abs(d) > 25 {
			swings++
		}
	}

	switch {
	case meanClosure < -0.5 && swings <= 1:
		if tc.pattern != PatternDistancePriority {
			tc.pattern = PatternDistancePriority
			tc.patternConfidence = 0.6
			tc.escapeSet = false
		} else {
			tc.patternConfidence = math.Min(tc.patternConfidence+0.2, 1.0)
		}
	case swings >= 2:
		if tc.pattern != PatternMovementTracking {
			tc.pattern = PatternMovementTracking
			tc.patternConfidence = 0.5
			tc.escapeSet = false
		} else {
			tc.patternConfidence = math.Min(tc.patternConfidence+0.15, 1.0)
		}
	}
}

func planName(nFixed, nProp int) string {
	name := ""
	for i := 0; i < nFixed; i++ {
		name += "F"
	}
	for i := 0; i < nProp; i++ {
		name += "P"
	}
	return name
}

// planSteps fans the salvo out around the threat bearing: alternating offsets
// so the decoys bracket the ship instead of stacking on one line. Each step
// goes live one tick after the previous.
func planSteps(nFixed, nProp int) []planStep {
	count := nFixed + nProp
	steps := make([]planStep, 0, count)
	for i := 0; i < count; i++ {
		kind := DecoyFixed
		if i >= nFixed {
			kind = DecoySelfPropelled
		}
		offset := float64(30 * ((i + 1) / 2))
		if i%2 == 1 {
			offset = -offset
		}
		steps = append(steps, planStep{
			kind:          kind,
			bearingOffset: offset,
			timingOffset:  int64(i),
		})
	}
	return steps
}
