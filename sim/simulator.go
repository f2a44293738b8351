// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Simulator wires the kernel, the fixed collaborators and the decision core
// into one engagement run. The ledger is owned by the defending side and is
// the only shared mutable state; the threat controller is its only writer.
type Simulator struct {
	Config  Config
	Kernel  *Kernel
	World   *World
	Tracker *Tracker
	Threat  *ThreatController
	Ledger  *Ledger
	Metrics *Metrics

	// CommandLog records every emitted command in execution order. Two runs
	// with the same configuration and seed produce identical logs.
	CommandLog []string

	outcome *Outcome
}

// NewSimulator builds a simulator for one engagement. Returns an error when
// the configuration fails validation; no tick runs in that case.
func NewSimulator(cfg Config, key SimulationKey) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario configuration: %w", err)
	}

	rng := NewPartitionedRNG(key)
	ledger := NewLedger(cfg.Ledger.CostCeiling)

	s := &Simulator{
		Config:  cfg,
		Kernel:  NewKernel(cfg.Horizon),
		World:   NewWorld(cfg, rng),
		Tracker: NewTracker(cfg.Tracker, cfg.Classifier, cfg.ScanInterval),
		Threat:  NewThreatController(cfg.Threat, cfg.Ledger, cfg.Classifier, cfg.ScanInterval, ledger),
		Ledger:  ledger,
		Metrics: &Metrics{},
	}

	world := &worldEntity{sim: s}
	detector := &detectorEntity{sim: s, interval: cfg.ScanInterval}
	torpedo := &torpedoEntity{sim: s}
	ship := &shipEntity{sim: s}

	// Registration order fixes same-tick execution order: movement, then
	// sensing, then decisions.
	s.Kernel.Register(world)
	s.Kernel.Register(detector)
	s.Kernel.Register(torpedo)
	s.Kernel.Register(ship)

	s.Kernel.Connect(PortDetectionsAttack, torpedo)
	s.Kernel.Connect(PortDetectionsDefense, ship)
	s.Kernel.Connect(PortSteering, world)
	s.Kernel.Connect(PortDeploy, world)
	s.Kernel.Connect(PortEvasion, world)

	return s, nil
}

func (s *Simulator) record(line string) {
	s.CommandLog = append(s.CommandLog, line)
}

// Run drives the engagement to proximity kill or the time bound and computes
// the outcome exactly once. Subsequent calls return the same outcome.
func (s *Simulator) Run() Outcome {
	if s.outcome != nil {
		return *s.outcome
	}
	logrus.Infof("starting engagement: horizon=%d killRadius=%.2f ceiling=%.2f",
		s.Config.Horizon, s.Config.KillRadius, s.Config.Ledger.CostCeiling)

	s.Kernel.Run()
	s.Tracker.Terminate()

	evaluator := NewOutcomeEvaluator(s.Config.KillRadius)
	outcome := evaluator.Evaluate(s.World.TerminalDistance(), s.Ledger)
	s.outcome = &outcome
	logrus.Infof("engagement finished: %s", outcome)
	return outcome
}
