// Per-contact target-likelihood scoring. Four signals, each in [0,1], are
// combined into a confidence by a configurable weighted sum and then mapped to
// a classification band. Decoys are allowed non-physical signature changes, so
// kinematic implausibility is the strongest decoy indicator available.

package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// persistenceHorizon is the continuous-detection span (ticks) at which
	// the persistence signal saturates at 1.0.
	persistenceHorizon = 20.0

	// rangeJumpLimit is the largest per-observation range change a real
	// contact can produce. Ship speed is fixed at 3.0 and the torpedo
	// closes at bounded speed; anything beyond this is non-physical.
	rangeJumpLimit = 6.0

	// salvoWindow is the first-seen spread (ticks) within which co-appearing
	// contacts are treated as one abrupt salvo.
	salvoWindow = 1
)

// ContactScorer computes the target-likelihood confidence for contacts and
// maps confidences to classification bands.
type ContactScorer struct {
	cfg ClassifierConfig
}

// NewContactScorer creates a scorer with the given weights and thresholds.
// The caller is expected to have validated cfg already.
func NewContactScorer(cfg ClassifierConfig) *ContactScorer {
	return &ContactScorer{cfg: cfg}
}

// Score computes the target-likelihood confidence for contact c given the
// full set of live peers (used for the population-context signal). The result
// is clamped to [0,1]. A contact with no usable history lands mid-band, which
// classifies as Unknown, the most conservative answer.
func (s *ContactScorer) Score(c *Contact, peers []*Contact) float64 {
	motion := motionConsistencySignal(c)
	persist := persistenceSignal(c)
	trend := signalTrendSignal(c)
	pop := populationContextSignal(c, peers)

	conf := s.cfg.MotionWeight*motion +
		s.cfg.PersistenceWeight*persist +
		s.cfg.SignalWeight*trend +
		s.cfg.PopulationWeight*pop
	return clamp01(conf)
}

// Classify maps a confidence to its band. Thresholds are inclusive lower
// bounds: a confidence exactly at a boundary lands in the higher band.
func (s *ContactScorer) Classify(conf float64) Classification {
	switch {
	case conf >= s.cfg.ConfirmThreshold:
		return ConfirmedTarget
	case conf >= s.cfg.TargetThreshold:
		return LikelyTarget
	case conf >= s.cfg.DecoyThreshold:
		return Unknown
	default:
		return LikelyDecoy
	}
}

// Rescore recomputes confidence and classification for every live contact.
// Contacts are visited in first-seen order so repeated evaluation with
// identical inputs yields identical results.
func (s *ContactScorer) Rescore(table *ContactTable) {
	live := table.Live()
	for _, c := range live {
		c.Confidence = s.Score(c, live)
		c.Classification = s.Classify(c.Confidence)
	}
}

// motionConsistencySignal scores how physically plausible the contact's
// track is. Low variance of the range/bearing rates and steady closure score
// high; a range jump beyond what any real hull can produce scores near zero.
func motionConsistencySignal(c *Contact) float64 {
	n := c.RangeHistory.Len()
	if n < 2 {
		return 0.5 // no rate information yet
	}
	rangeDeltas := deltas(c.RangeHistory.Values())
	for _, d := range rangeDeltas {
		if math.Abs(d) > rangeJumpLimit {
			return 0.05 // non-physical jump
		}
	}
	if len(rangeDeltas) < 2 {
		return 0.5
	}
	bearingDeltas := angularDeltas(c.BearingHistory.Values())

	rangeVar := stat.Variance(rangeDeltas, nil)
	bearingVar := stat.Variance(bearingDeltas, nil)
	base := 1.0 / (1.0 + 2.0*rangeVar + 0.05*bearingVar)

	meanClosure := stat.Mean(rangeDeltas, nil)
	switch {
	case meanClosure < -0.05:
		// monotonic-ish closure: what a tracked ship (or an inbound
		// torpedo, on the defender's side) looks like
		base = 0.5*base + 0.5
	case math.Abs(meanClosure) <= 0.05:
		// non-advancing range profile: the fixed-decoy signature
		base *= 0.55
	}
	return clamp01(base)
}

// persistenceSignal scores continuous detection history, saturating at
// persistenceHorizon ticks. Zero history scores zero.
func persistenceSignal(c *Contact) float64 {
	return clamp01(float64(c.ConsecutiveTicks) / persistenceHorizon)
}

// signalTrendSignal fits a line to the signal-strength history. Sustained or
// growing strength scores high; decay (the self-propelled decoy giveaway)
// pulls the score down in proportion to the relative slope.
func signalTrendSignal(c *Contact) float64 {
	n := c.SignalHistory.Len()
	if n < 2 {
		return 0.5
	}
	ys := c.SignalHistory.Values()
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	mean := stat.Mean(ys, nil)
	if mean <= 0 {
		return 0.0
	}
	rel := slope / mean // relative strength change per observation
	return clamp01(0.9 + 10.0*rel)
}

// populationContextSignal penalizes contacts that appeared as part of an
// abrupt multi-contact salvo. Defenders are cost-constrained, so a burst of
// simultaneous births is far more likely to be decoys than ships.
func populationContextSignal(c *Contact, peers []*Contact) float64 {
	coAppearing := 0
	for _, p := range peers {
		if p.ID == c.ID {
			continue
		}
		if absInt64(p.FirstSeenTick-c.FirstSeenTick) <= salvoWindow {
			coAppearing++
		}
	}
	return 1.0 / (1.0 + 0.4*float64(coAppearing))
}

func deltas(vals []float64) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		out[i-1] = vals[i] - vals[i-1]
	}
	return out
}

// angularDeltas is deltas for bearing samples: each step is the smallest
// signed rotation between consecutive bearings, so a track crossing the
// 0/360 wrap does not read as a wild swing.
func angularDeltas(vals []float64) []float64 {
	if len(vals) < 2 {
		return nil
	}
	out := make([]float64, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		out[i-1] = bearingDelta(vals[i-1], vals[i])
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
