package sim

import (
	"testing"
)

// signalOnlyClassifier weights the signal-trend signal alone, which lets a
// test steer a contact's confidence directly through its reported signal
// strengths: constant strength scores 0.9, growing strength saturates at 1.0.
func signalOnlyClassifier() ClassifierConfig {
	return NewClassifierConfig(0, 0, 1.0, 0, 0.35, 0.70, 0.90, 5, 8)
}

func feedConstant(tr *Tracker, from, to int64, id string, rng float64, signal float64) *SteeringCommand {
	var cmd *SteeringCommand
	for tick := from; tick <= to; tick++ {
		cmd = tr.Step(tick, []ContactReport{{ContactID: id, Range: rng, SignalStrength: signal}})
	}
	return cmd
}

func TestTracker_AcquiresQualifiedContact(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	if tr.State() != StateSearch {
		t.Fatalf("initial state %s, want SEARCH", tr.State())
	}

	var cmd *SteeringCommand
	for tick := int64(1); tick <= 8; tick++ {
		cmd = tr.Step(tick, []ContactReport{{
			ContactID:      "ship",
			Bearing:        10,
			Range:          60 - 1.5*float64(tick),
			RadialVelocity: -1.5,
			SignalStrength: 1.0,
		}})
	}
	if tr.State() != StateTracking {
		t.Fatalf("state after steady closure: %s, want TRACKING", tr.State())
	}
	lock := tr.Lock()
	if lock == nil || lock.ContactID != "ship" {
		t.Fatalf("lock = %+v, want lock on ship", lock)
	}
	if cmd == nil || cmd.ContactID != "ship" || cmd.Terminal {
		t.Errorf("steering command = %+v, want non-terminal command on ship", cmd)
	}
}

func TestTracker_PrefersCloserOfEqualConfidence(t *testing.T) {
	// Two contacts with identical histories except absolute range produce
	// identical confidences; the tie-break must pick the closer one.
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	for tick := int64(1); tick <= 8; tick++ {
		tr.Step(tick, []ContactReport{
			{ContactID: "far", Range: 60 - 1.5*float64(tick), SignalStrength: 1.0},
			{ContactID: "near", Range: 50 - 1.5*float64(tick), SignalStrength: 1.0},
		})
	}
	lock := tr.Lock()
	if lock == nil {
		t.Fatal("no lock acquired")
	}
	if lock.ContactID != "near" {
		t.Errorf("locked %s, want the closer contact", lock.ContactID)
	}
}

func TestBetterCandidate_TieBreakOrder(t *testing.T) {
	hiConf := &Contact{ID: "a", Confidence: 0.9, Range: 50, FirstSeenTick: 5}
	loConf := &Contact{ID: "b", Confidence: 0.8, Range: 10, FirstSeenTick: 1}
	if !betterCandidate(hiConf, loConf) {
		t.Error("higher confidence must outrank smaller range")
	}

	near := &Contact{ID: "c", Confidence: 0.8, Range: 20, FirstSeenTick: 5}
	far := &Contact{ID: "d", Confidence: 0.8, Range: 40, FirstSeenTick: 1}
	if !betterCandidate(near, far) {
		t.Error("equal confidence: smaller range must win")
	}

	early := &Contact{ID: "e", Confidence: 0.8, Range: 30, FirstSeenTick: 2}
	late := &Contact{ID: "f", Confidence: 0.8, Range: 30, FirstSeenTick: 7}
	if !betterCandidate(early, late) {
		t.Error("equal confidence and range: earlier first detection must win")
	}
}

func TestTracker_LocksVeteranCloserOverErraticNewcomer(t *testing.T) {
	// Twenty ticks of smooth closure hold the lock against a two-tick-old
	// contact with a non-physical range jump appearing late in the run.
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	for tick := int64(1); tick <= 20; tick++ {
		reports := []ContactReport{{
			ContactID:      "steady",
			Range:          60 - 1.5*float64(tick),
			RadialVelocity: -1.5,
			SignalStrength: 1.0,
		}}
		if tick >= 19 {
			rng := 40.0
			if tick == 20 {
				rng = 55.0
			}
			reports = append(reports, ContactReport{ContactID: "jumper", Range: rng, SignalStrength: 0.9})
		}
		tr.Step(tick, reports)
	}

	lock := tr.Lock()
	if lock == nil || lock.ContactID != "steady" {
		t.Fatalf("lock = %+v, want the persistent closer", lock)
	}
	if c := tr.Contacts().Get("steady"); c.Classification != ConfirmedTarget {
		t.Errorf("persistent closer classified %s, want CONFIRMED_TARGET", c.Classification)
	}
}

func TestTracker_HysteresisHoldsLockAgainstMarginalRival(t *testing.T) {
	trkCfg := TrackerConfig{AcquisitionConfidence: 0.70, HysteresisMargin: 0.10, HomingRange: 2.0}
	tr := NewTracker(trkCfg, signalOnlyClassifier(), 1)

	// Lock A at constant signal (confidence 0.9).
	feedConstant(tr, 1, 2, "A", 40, 1.0)
	if lock := tr.Lock(); lock == nil || lock.ContactID != "A" {
		t.Fatalf("lock = %+v, want lock on A", tr.Lock())
	}

	// B's growing signal saturates its confidence at 1.0, exactly 0.1 over
	// A's 0.9: that does not exceed the margin, so the lock must hold.
	sig := 0.5
	for tick := int64(3); tick <= 8; tick++ {
		tr.Step(tick, []ContactReport{
			{ContactID: "A", Range: 40, SignalStrength: 1.0},
			{ContactID: "B", Range: 40, SignalStrength: sig},
		})
		sig += 0.1
	}
	if lock := tr.Lock(); lock == nil || lock.ContactID != "A" {
		t.Errorf("lock moved to %+v; rival within hysteresis margin must not take it", tr.Lock())
	}
}

func TestTracker_RelocksWhenRivalClearsMargin(t *testing.T) {
	// Same feed as the hysteresis test but with a smaller margin: now the
	// rival's 1.0 beats 0.9 + 0.05 and takes the lock.
	trkCfg := TrackerConfig{AcquisitionConfidence: 0.70, HysteresisMargin: 0.05, HomingRange: 2.0}
	tr := NewTracker(trkCfg, signalOnlyClassifier(), 1)

	feedConstant(tr, 1, 2, "A", 40, 1.0)

	sig := 0.5
	for tick := int64(3); tick <= 8; tick++ {
		tr.Step(tick, []ContactReport{
			{ContactID: "A", Range: 40, SignalStrength: 1.0},
			{ContactID: "B", Range: 40, SignalStrength: sig},
		})
		sig += 0.1
	}
	if lock := tr.Lock(); lock == nil || lock.ContactID != "B" {
		t.Errorf("lock = %+v, want re-lock on B after clearing the margin", tr.Lock())
	}
}

func TestTracker_DropsLockOnDecoyReclassification(t *testing.T) {
	trkCfg := TrackerConfig{AcquisitionConfidence: 0.70, HysteresisMargin: 0.10, HomingRange: 2.0}
	tr := NewTracker(trkCfg, signalOnlyClassifier(), 1)

	feedConstant(tr, 1, 2, "A", 40, 1.0)
	if tr.State() != StateTracking {
		t.Fatalf("state %s, want TRACKING", tr.State())
	}

	// Sharp signal decay drives A's confidence to zero: LIKELY_DECOY. The
	// lock must be dropped before a steering command is issued.
	tr.Step(3, []ContactReport{{ContactID: "A", Range: 40, SignalStrength: 0.6}})
	cmd := tr.Step(4, []ContactReport{{ContactID: "A", Range: 40, SignalStrength: 0.3}})

	if tr.State() != StateSearch {
		t.Errorf("state %s, want SEARCH after the lock degraded to a decoy", tr.State())
	}
	if tr.Lock() != nil {
		t.Errorf("lock %+v still held on a LIKELY_DECOY contact", tr.Lock())
	}
	if cmd != nil {
		t.Errorf("steering command %+v issued toward a dropped lock", cmd)
	}
}

func TestTracker_LostContactForcesSearch(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	for tick := int64(1); tick <= 6; tick++ {
		tr.Step(tick, []ContactReport{{
			ContactID:      "ship",
			Range:          60 - 1.5*float64(tick),
			SignalStrength: 1.0,
		}})
	}
	if tr.State() != StateTracking {
		t.Fatalf("state %s, want TRACKING before the contact goes silent", tr.State())
	}

	// Silence past the prune timeout: the contact is lost, not an error,
	// and the tracker re-enters search.
	var cmd *SteeringCommand
	for tick := int64(7); tick <= 13; tick++ {
		cmd = tr.Step(tick, nil)
	}
	if tr.State() != StateSearch {
		t.Errorf("state %s, want SEARCH after losing the only contact", tr.State())
	}
	if tr.Lock() != nil {
		t.Errorf("dangling lock %+v on a pruned contact", tr.Lock())
	}
	if cmd != nil {
		t.Errorf("steering command %+v while searching with no candidate", cmd)
	}
}

func TestTracker_TerminalIsSticky(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	// Close at just under the non-physical jump limit so the contact stays
	// credible while the range collapses through the homing threshold.
	var cmd *SteeringCommand
	for tick := int64(1); tick <= 11; tick++ {
		cmd = tr.Step(tick, []ContactReport{{
			ContactID:      "ship",
			Bearing:        42,
			Range:          60 - 5.5*float64(tick-1),
			RadialVelocity: -5.5,
			SignalStrength: 1.0,
		}})
	}
	if tr.State() != StateTerminal {
		t.Fatalf("state %s, want TERMINAL inside homing range", tr.State())
	}
	if cmd == nil || !cmd.Terminal {
		t.Fatalf("command %+v, want terminal homing command", cmd)
	}

	// Even when the contact vanishes from the feed, terminal homing holds
	// on the last known bearing; the state machine never regresses.
	for tick := int64(12); tick <= 20; tick++ {
		cmd = tr.Step(tick, nil)
		if cmd == nil || !cmd.Terminal {
			t.Fatalf("tick %d: command %+v, want terminal command on last bearing", tick, cmd)
		}
		if cmd.Bearing != 42 {
			t.Fatalf("tick %d: bearing %.1f, want the last observed 42", tick, cmd.Bearing)
		}
	}
	if tr.State() != StateTerminal {
		t.Errorf("state %s, want TERMINAL to persist", tr.State())
	}
}

func TestTracker_TerminatedIsAbsorbing(t *testing.T) {
	cfg := DefaultConfig()
	tr := NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval)

	feedConstant(tr, 1, 6, "ship", 40, 1.0)
	tr.Terminate()

	if tr.State() != StateTerminated {
		t.Fatalf("state %s, want TERMINATED", tr.State())
	}
	cmd := tr.Step(7, []ContactReport{{ContactID: "ship", Range: 40, SignalStrength: 1.0}})
	if cmd != nil {
		t.Errorf("command %+v emitted after termination", cmd)
	}
	if tr.State() != StateTerminated {
		t.Errorf("state %s left the absorbing state", tr.State())
	}
}
