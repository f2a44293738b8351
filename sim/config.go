package sim

import "fmt"

// DecoyKind identifies an expendable decoy variant.
type DecoyKind string

const (
	DecoyFixed         DecoyKind = "FIXED"          // stationary, cheap
	DecoySelfPropelled DecoyKind = "SELF_PROPELLED" // mimics ship motion, expensive
)

// ClassifierConfig groups the per-contact scoring weights and classification
// thresholds. Thresholds are inclusive lower bounds of the higher band:
// confidence < DecoyThreshold        → LikelyDecoy
// [DecoyThreshold, TargetThreshold)  → Unknown
// [TargetThreshold, ConfirmThreshold)→ LikelyTarget
// >= ConfirmThreshold                → ConfirmedTarget
type ClassifierConfig struct {
	MotionWeight      float64 `yaml:"motion_weight"`      // weight of the motion-consistency signal
	PersistenceWeight float64 `yaml:"persistence_weight"` // weight of the detection-history signal
	SignalWeight      float64 `yaml:"signal_weight"`      // weight of the signal-strength trend signal
	PopulationWeight  float64 `yaml:"population_weight"`  // weight of the salvo-context penalty signal

	DecoyThreshold   float64 `yaml:"decoy_threshold"`   // below this → LikelyDecoy
	TargetThreshold  float64 `yaml:"target_threshold"`  // at/above this → LikelyTarget
	ConfirmThreshold float64 `yaml:"confirm_threshold"` // at/above this → ConfirmedTarget

	SilenceTimeout int64 `yaml:"silence_timeout"` // ticks without detection before a contact is pruned
	HistoryDepth   int   `yaml:"history_depth"`   // ring buffer capacity per contact (signal/range samples)
}

// TrackerConfig groups the acquisition state machine parameters.
type TrackerConfig struct {
	AcquisitionConfidence float64 `yaml:"acquisition_confidence"` // Search → Tracking threshold
	HysteresisMargin      float64 `yaml:"hysteresis_margin"`      // rival must beat the lock by more than this
	HomingRange           float64 `yaml:"homing_range"`           // Tracking → Terminal range threshold
}

// ThreatConfig groups the defender's threat scoring weights and deployment
// policy parameters.
type ThreatConfig struct {
	ClosingWeight     float64 `yaml:"closing_weight"`     // weight of the closing-rate signal
	ProximityWeight   float64 `yaml:"proximity_weight"`   // weight of the proximity signal
	PersistenceWeight float64 `yaml:"persistence_weight"` // weight of the detection-history signal
	HintWeight        float64 `yaml:"hint_weight"`        // weight of the detector's torpedo kind hint
	ClosingRateScale  float64 `yaml:"closing_rate_scale"` // closing rate (units/tick) that saturates the closing signal
	RangeScale        float64 `yaml:"range_scale"`        // range at/beyond which proximity contributes nothing

	EngagementThreshold float64 `yaml:"engagement_threshold"` // threat score that arms the deployment logic
	ReactionWindow      int64   `yaml:"reaction_window"`      // max estimated time-to-impact (ticks) to trigger
	ReconvergenceArc    float64 `yaml:"reconvergence_arc"`    // bearing arc (degrees) treated as re-acquisition of the ship
	MaxSalvoSize        int     `yaml:"max_salvo_size"`       // most decoys in a single plan
}

// LedgerConfig groups the deployment cost accounting parameters.
type LedgerConfig struct {
	CostCeiling       float64 `yaml:"cost_ceiling"`        // hard cumulative cost ceiling (10.0 in all scenarios)
	FixedCost         float64 `yaml:"fixed_cost"`          // per-deployment cost of a FIXED decoy
	SelfPropelledCost float64 `yaml:"self_propelled_cost"` // per-deployment cost of a SELF_PROPELLED decoy
}

// GeometryConfig fixes the initial engagement geometry. Ship speed is 3.0 by
// the game rule; the classifier's motion signal leans on that.
type GeometryConfig struct {
	TorpedoStart Position `yaml:"torpedo_start"`
	TorpedoSpeed float64  `yaml:"torpedo_speed"`
	ShipStart    Position `yaml:"ship_start"`
	ShipSpeed    float64  `yaml:"ship_speed"`
	ShipHeading  float64  `yaml:"ship_heading"`
}

// Config is the full scenario-supplied static configuration.
// Validate must pass before any simulated tick runs.
type Config struct {
	Classifier ClassifierConfig `yaml:"classifier"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	Threat     ThreatConfig     `yaml:"threat"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Geometry   GeometryConfig   `yaml:"geometry"`

	KillRadius   float64 `yaml:"kill_radius"`   // terminal distance at/below which the torpedo scores a hit
	ScanInterval int64   `yaml:"scan_interval"` // ticks between detector sweeps
	Horizon      int64   `yaml:"horizon"`       // simulation end time in ticks
}

// NewClassifierConfig constructs a ClassifierConfig from explicit values.
func NewClassifierConfig(motionW, persistW, signalW, popW, decoyT, targetT, confirmT float64, silence int64, depth int) ClassifierConfig {
	return ClassifierConfig{
		MotionWeight:      motionW,
		PersistenceWeight: persistW,
		SignalWeight:      signalW,
		PopulationWeight:  popW,
		DecoyThreshold:    decoyT,
		TargetThreshold:   targetT,
		ConfirmThreshold:  confirmT,
		SilenceTimeout:    silence,
		HistoryDepth:      depth,
	}
}

// DefaultConfig returns the baseline engagement parameters. Scenario files
// override individual fields; Validate still applies to the result.
func DefaultConfig() Config {
	return Config{
		Classifier: ClassifierConfig{
			MotionWeight:      0.30,
			PersistenceWeight: 0.30,
			SignalWeight:      0.25,
			PopulationWeight:  0.15,
			DecoyThreshold:    0.35,
			TargetThreshold:   0.70,
			ConfirmThreshold:  0.90,
			SilenceTimeout:    5,
			HistoryDepth:      8,
		},
		Tracker: TrackerConfig{
			AcquisitionConfidence: 0.70,
			HysteresisMargin:      0.10,
			HomingRange:           8.0,
		},
		Threat: ThreatConfig{
			ClosingWeight:       0.35,
			ProximityWeight:     0.25,
			PersistenceWeight:   0.20,
			HintWeight:          0.20,
			ClosingRateScale:    6.0,
			RangeScale:          60.0,
			EngagementThreshold: 0.60,
			ReactionWindow:      20,
			ReconvergenceArc:    12.0,
			MaxSalvoSize:        4,
		},
		Ledger: LedgerConfig{
			CostCeiling:       10.0,
			FixedCost:         1.0,
			SelfPropelledCost: 2.5,
		},
		Geometry: GeometryConfig{
			TorpedoStart: Position{X: 0, Y: 0},
			TorpedoSpeed: 4.5,
			ShipStart:    Position{X: 0, Y: 60},
			ShipSpeed:    3.0,
			ShipHeading:  0,
		},
		KillRadius:   2.0,
		ScanInterval: 1,
		Horizon:      300,
	}
}

// Validate checks configuration consistency. Inconsistent values are fatal at
// scenario-load time; they are surfaced to the caller, never clamped.
func (c *Config) Validate() error {
	cl := c.Classifier
	if cl.MotionWeight < 0 || cl.PersistenceWeight < 0 || cl.SignalWeight < 0 || cl.PopulationWeight < 0 {
		return fmt.Errorf("classifier weights must be non-negative, got %v/%v/%v/%v",
			cl.MotionWeight, cl.PersistenceWeight, cl.SignalWeight, cl.PopulationWeight)
	}
	weightSum := cl.MotionWeight + cl.PersistenceWeight + cl.SignalWeight + cl.PopulationWeight
	if weightSum < cl.ConfirmThreshold {
		return fmt.Errorf("classifier weights sum to %.3f; no contact could ever reach the confirm threshold %.3f",
			weightSum, cl.ConfirmThreshold)
	}
	if !(cl.DecoyThreshold < cl.TargetThreshold && cl.TargetThreshold < cl.ConfirmThreshold) {
		return fmt.Errorf("classification thresholds must ascend: decoy=%.3f target=%.3f confirm=%.3f",
			cl.DecoyThreshold, cl.TargetThreshold, cl.ConfirmThreshold)
	}
	if cl.DecoyThreshold < 0 || cl.ConfirmThreshold > 1 {
		return fmt.Errorf("classification thresholds must lie in [0,1]")
	}
	if cl.SilenceTimeout <= 0 {
		return fmt.Errorf("contact silence timeout must be positive, got %d", cl.SilenceTimeout)
	}
	if cl.HistoryDepth < 2 {
		return fmt.Errorf("contact history depth must be at least 2, got %d", cl.HistoryDepth)
	}

	if c.Tracker.AcquisitionConfidence <= 0 || c.Tracker.AcquisitionConfidence > 1 {
		return fmt.Errorf("acquisition confidence must lie in (0,1], got %.3f", c.Tracker.AcquisitionConfidence)
	}
	if c.Tracker.HysteresisMargin < 0 {
		return fmt.Errorf("hysteresis margin must be non-negative, got %.3f", c.Tracker.HysteresisMargin)
	}
	if c.Tracker.HomingRange <= 0 {
		return fmt.Errorf("homing range must be positive, got %.3f", c.Tracker.HomingRange)
	}

	th := c.Threat
	if th.ClosingWeight < 0 || th.ProximityWeight < 0 || th.PersistenceWeight < 0 || th.HintWeight < 0 {
		return fmt.Errorf("threat weights must be non-negative, got %v/%v/%v/%v",
			th.ClosingWeight, th.ProximityWeight, th.PersistenceWeight, th.HintWeight)
	}
	threatSum := th.ClosingWeight + th.ProximityWeight + th.PersistenceWeight + th.HintWeight
	if threatSum < th.EngagementThreshold {
		return fmt.Errorf("threat weights sum to %.3f; no contact could ever reach the engagement threshold %.3f",
			threatSum, th.EngagementThreshold)
	}
	if th.ClosingRateScale <= 0 || th.RangeScale <= 0 {
		return fmt.Errorf("threat scales must be positive, got closing-rate=%.3f range=%.3f",
			th.ClosingRateScale, th.RangeScale)
	}
	if c.Threat.ReactionWindow <= 0 {
		return fmt.Errorf("reaction window must be positive, got %d", c.Threat.ReactionWindow)
	}
	if c.Threat.MaxSalvoSize < 1 {
		return fmt.Errorf("max salvo size must be at least 1, got %d", c.Threat.MaxSalvoSize)
	}

	lg := c.Ledger
	if lg.FixedCost <= 0 || lg.SelfPropelledCost <= 0 {
		return fmt.Errorf("decoy costs must be positive, got fixed=%.3f self-propelled=%.3f",
			lg.FixedCost, lg.SelfPropelledCost)
	}
	if lg.CostCeiling < min(lg.FixedCost, lg.SelfPropelledCost) {
		return fmt.Errorf("cost ceiling %.3f is below the cheapest decoy kind (%.3f); no deployment could ever be accepted",
			lg.CostCeiling, min(lg.FixedCost, lg.SelfPropelledCost))
	}

	if c.Geometry.TorpedoSpeed <= 0 || c.Geometry.ShipSpeed <= 0 {
		return fmt.Errorf("speeds must be positive, got torpedo=%.3f ship=%.3f",
			c.Geometry.TorpedoSpeed, c.Geometry.ShipSpeed)
	}
	if c.KillRadius <= 0 {
		return fmt.Errorf("kill radius must be positive, got %.3f", c.KillRadius)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %d", c.ScanInterval)
	}
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	return nil
}

// KindCost returns the configured cost of a decoy kind.
// Panics on an unrecognized kind (programmer error, not scenario error).
func (l LedgerConfig) KindCost(kind DecoyKind) float64 {
	switch kind {
	case DecoyFixed:
		return l.FixedCost
	case DecoySelfPropelled:
		return l.SelfPropelledCost
	default:
		panic(fmt.Sprintf("unknown decoy kind %q", kind))
	}
}
