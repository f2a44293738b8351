package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClassifierConfig_FieldEquivalence(t *testing.T) {
	got := NewClassifierConfig(0.3, 0.3, 0.25, 0.15, 0.35, 0.7, 0.9, 5, 8)
	want := ClassifierConfig{
		MotionWeight:      0.3,
		PersistenceWeight: 0.3,
		SignalWeight:      0.25,
		PopulationWeight:  0.15,
		DecoyThreshold:    0.35,
		TargetThreshold:   0.7,
		ConfirmThreshold:  0.9,
		SilenceTimeout:    5,
		HistoryDepth:      8,
	}
	assert.Equal(t, want, got)
}

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration failed validation: %v", err)
	}
}

func TestValidate_RejectsInconsistentConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Classifier.MotionWeight = -0.1 }},
		{"weights below confirm threshold", func(c *Config) {
			c.Classifier.MotionWeight = 0.1
			c.Classifier.PersistenceWeight = 0.1
			c.Classifier.SignalWeight = 0.1
			c.Classifier.PopulationWeight = 0.1
		}},
		{"thresholds out of order", func(c *Config) { c.Classifier.TargetThreshold = 0.95 }},
		{"confirm threshold above one", func(c *Config) {
			c.Classifier.ConfirmThreshold = 1.5
			c.Classifier.MotionWeight = 1.6 // keep the weight-sum check out of the way
		}},
		{"zero silence timeout", func(c *Config) { c.Classifier.SilenceTimeout = 0 }},
		{"history depth too small", func(c *Config) { c.Classifier.HistoryDepth = 1 }},
		{"zero acquisition confidence", func(c *Config) { c.Tracker.AcquisitionConfidence = 0 }},
		{"negative hysteresis", func(c *Config) { c.Tracker.HysteresisMargin = -0.01 }},
		{"zero homing range", func(c *Config) { c.Tracker.HomingRange = 0 }},
		{"negative threat weight", func(c *Config) { c.Threat.ClosingWeight = -0.1 }},
		{"threat weights below engagement threshold", func(c *Config) {
			c.Threat.ClosingWeight = 0.1
			c.Threat.ProximityWeight = 0.1
			c.Threat.PersistenceWeight = 0.1
			c.Threat.HintWeight = 0.1
		}},
		{"zero closing-rate scale", func(c *Config) { c.Threat.ClosingRateScale = 0 }},
		{"zero range scale", func(c *Config) { c.Threat.RangeScale = 0 }},
		{"zero reaction window", func(c *Config) { c.Threat.ReactionWindow = 0 }},
		{"zero salvo size", func(c *Config) { c.Threat.MaxSalvoSize = 0 }},
		{"non-positive decoy cost", func(c *Config) { c.Ledger.FixedCost = 0 }},
		{"ceiling below cheapest kind", func(c *Config) { c.Ledger.CostCeiling = 0.5 }},
		{"zero torpedo speed", func(c *Config) { c.Geometry.TorpedoSpeed = 0 }},
		{"zero ship speed", func(c *Config) { c.Geometry.ShipSpeed = 0 }},
		{"zero kill radius", func(c *Config) { c.KillRadius = 0 }},
		{"zero scan interval", func(c *Config) { c.ScanInterval = 0 }},
		{"zero horizon", func(c *Config) { c.Horizon = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("%s passed validation", tc.name)
			}
		})
	}
}

func TestKindCost_KnownKinds(t *testing.T) {
	lg := DefaultConfig().Ledger
	if got := lg.KindCost(DecoyFixed); got != 1.0 {
		t.Errorf("KindCost(FIXED) = %f, want 1.0", got)
	}
	if got := lg.KindCost(DecoySelfPropelled); got != 2.5 {
		t.Errorf("KindCost(SELF_PROPELLED) = %f, want 2.5", got)
	}
}

func TestKindCost_PanicsOnUnknownKind(t *testing.T) {
	lg := DefaultConfig().Ledger
	assert.Panics(t, func() { lg.KindCost(DecoyKind("TOWED_ARRAY")) })
}
