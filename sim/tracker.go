// The attacker's target acquisition and tracking controller: a per-torpedo
// state machine that turns the adversarial contact stream into one committed
// terminal aim point, re-targeting as the evidence changes.

package sim

import (
	"github.com/sirupsen/logrus"
)

// TrackerState is the acquisition state machine's current state.
type TrackerState string

const (
	StateSearch     TrackerState = "SEARCH"     // no lock; scoring all live contacts
	StateTracking   TrackerState = "TRACKING"   // holding a lock, open to a better rival
	StateTerminal   TrackerState = "TERMINAL"   // homing; never leaves except to TERMINATED
	StateTerminated TrackerState = "TERMINATED" // absorbing: proximity kill or simulation end
)

// TrackLock is the torpedo's committed targeting decision. At most one exists
// at any time. It holds a contact id, never the contact itself: dangling ids
// are resolved against the table each tick and force the lost transition.
type TrackLock struct {
	ContactID    string
	LockedAtTick int64
	LockStrength float64 // confidence of the locked contact at last evaluation
}

// SteeringCommand is the tracker's per-tick output, consumed by the external
// maneuver model. Terminal marks the homing phase.
type SteeringCommand struct {
	Tick      int64
	ContactID string
	Bearing   float64
	Terminal  bool
}

// Tracker is the Target Acquisition & Tracking Controller for one torpedo.
// All decisions are pure functions of the live contact table plus the
// tracker's own persistent state; given identical input histories two
// trackers emit identical command sequences.
type Tracker struct {
	cfg      TrackerConfig
	scorer   *ContactScorer
	contacts *ContactTable
	silence  int64

	state TrackerState
	lock  *TrackLock

	// last bearing steered toward; terminal homing falls back to it when
	// the locked contact drops out of the feed
	lastBearing float64
}

// NewTracker creates a tracker in SEARCH with an empty contact table.
func NewTracker(cfg TrackerConfig, clsCfg ClassifierConfig, scanInterval int64) *Tracker {
	return &Tracker{
		cfg:      cfg,
		scorer:   NewContactScorer(clsCfg),
		contacts: NewContactTable(clsCfg.HistoryDepth, scanInterval),
		silence:  clsCfg.SilenceTimeout,
		state:    StateSearch,
	}
}

// State returns the current state machine state.
func (tr *Tracker) State() TrackerState { return tr.state }

// Lock returns the current track lock, or nil when searching.
func (tr *Tracker) Lock() *TrackLock { return tr.lock }

// Contacts exposes the tracker's contact table for inspection.
func (tr *Tracker) Contacts() *ContactTable { return tr.contacts }

// lockable reports whether the lock invariant permits a lock on c.
func lockable(c *Contact) bool {
	return c.Classification == LikelyTarget || c.Classification == ConfirmedTarget
}

// betterCandidate reports whether a outranks b under the deterministic
// tie-break: higher confidence, then smaller range, then earlier first
// detection. No randomness anywhere.
func betterCandidate(a, b *Contact) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Range != b.Range {
		return a.Range < b.Range
	}
	return a.FirstSeenTick < b.FirstSeenTick
}

// bestQualified returns the best live contact satisfying the lock invariant
// and the acquisition threshold, excluding the contact with id skip.
// Returns nil when no contact qualifies (a normal outcome, not an error).
func (tr *Tracker) bestQualified(skip string) *Contact {
	var best *Contact
	for _, c := range tr.contacts.Live() {
		if c.ID == skip || !lockable(c) || c.Confidence < tr.cfg.AcquisitionConfidence {
			continue
		}
		if best == nil || betterCandidate(c, best) {
			best = c
		}
	}
	return best
}

// Step runs one tick: fold in the detection sweep, prune silent contacts,
// rescore, and advance the state machine. The returned command is nil only
// while searching with no qualified candidate (the torpedo drifts on its last
// heading, which is the maneuver model's concern).
func (tr *Tracker) Step(tick int64, reports []ContactReport) *SteeringCommand {
	if tr.state == StateTerminated {
		return nil
	}

	for _, rep := range reports {
		tr.contacts.Observe(tick, rep)
	}
	pruned := tr.contacts.Prune(tick, tr.silence)
	tr.scorer.Rescore(tr.contacts)

	// A lock referencing a pruned contact is a lost track, not an error.
	if tr.lock != nil && tr.contacts.Get(tr.lock.ContactID) == nil {
		if tr.state != StateTerminal {
			logrus.Debugf("[tick %d] lock %s lost (contact silent %v)", tick, tr.lock.ContactID, pruned)
			tr.dropLock()
		}
	}

	// Lock invariant: a lock whose contact degraded to LIKELY_DECOY must be
	// dropped before this tick's steering command is issued.
	if tr.lock != nil && tr.state == StateTracking {
		if locked := tr.contacts.Get(tr.lock.ContactID); locked != nil && !lockable(locked) {
			logrus.Infof("[tick %d] lock %s reclassified %s, dropping", tick, locked.ID, locked.Classification)
			tr.dropLock()
		}
	}

	switch tr.state {
	case StateSearch:
		return tr.stepSearch(tick)
	case StateTracking:
		return tr.stepTracking(tick)
	case StateTerminal:
		return tr.stepTerminal(tick)
	}
	return nil
}

func (tr *Tracker) stepSearch(tick int64) *SteeringCommand {
	best := tr.bestQualified("")
	if best == nil {
		return nil // drift on last known heading
	}
	tr.acquire(tick, best)
	return tr.stepTracking(tick)
}

func (tr *Tracker) stepTracking(tick int64) *SteeringCommand {
	locked := tr.contacts.Get(tr.lock.ContactID)
	if locked == nil {
		// Dropped this tick (lost or reclassified); a replacement may
		// qualify immediately, otherwise back to search.
		return tr.stepSearch(tick)
	}
	tr.lock.LockStrength = locked.Confidence

	// Anti-thrash: a rival takes the lock only by beating it by more than
	// the hysteresis margin.
	if rival := tr.bestQualified(locked.ID); rival != nil &&
		rival.Confidence > locked.Confidence+tr.cfg.HysteresisMargin {
		logrus.Infof("[tick %d] re-lock %s -> %s (%.3f > %.3f + %.3f)",
			tick, locked.ID, rival.ID, rival.Confidence, locked.Confidence, tr.cfg.HysteresisMargin)
		tr.acquire(tick, rival)
		locked = rival
	}

	tr.lastBearing = locked.Bearing
	if locked.Range <= tr.cfg.HomingRange {
		logrus.Infof("[tick %d] terminal homing on %s at range %.2f", tick, locked.ID, locked.Range)
		tr.state = StateTerminal
		return tr.stepTerminal(tick)
	}
	return &SteeringCommand{Tick: tick, ContactID: locked.ID, Bearing: locked.Bearing}
}

func (tr *Tracker) stepTerminal(tick int64) *SteeringCommand {
	bearing := tr.lastBearing
	contactID := ""
	if tr.lock != nil {
		contactID = tr.lock.ContactID
		if locked := tr.contacts.Get(tr.lock.ContactID); locked != nil {
			bearing = locked.Bearing
			tr.lastBearing = bearing
		}
	}
	return &SteeringCommand{Tick: tick, ContactID: contactID, Bearing: bearing, Terminal: true}
}

func (tr *Tracker) acquire(tick int64, c *Contact) {
	tr.lock = &TrackLock{ContactID: c.ID, LockedAtTick: tick, LockStrength: c.Confidence}
	tr.lastBearing = c.Bearing
	tr.state = StateTracking
}

func (tr *Tracker) dropLock() {
	tr.lock = nil
	if tr.state == StateTracking {
		tr.state = StateSearch
	}
}

// Terminate moves the state machine into its absorbing state. Called by the
// simulation on proximity kill or when the time bound is reached.
func (tr *Tracker) Terminate() {
	tr.state = StateTerminated
	tr.lock = nil
}
