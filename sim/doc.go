// Package sim provides the discrete-event engagement simulation between an
// attacking torpedo and a decoy-defended surface ship.
//
// # Reading Guide
//
// Start with these three files to understand the decision core:
//   - contact.go: Contact lifecycle (first detection → updates → silence pruning)
//   - tracker.go: The attacker's acquisition state machine (Search → Tracking → Terminal)
//   - threat.go: The defender's deployment policy and evasion cueing
//
// # Architecture
//
// The package splits into a decision core and a fixed harness:
//   - Core: classifier.go, tracker.go, threat.go, ledger.go, outcome.go.
//     Pure per-tick decision functions plus each controller's persistent
//     state (lock, ledger tally). No goroutines, no blocking, no wall clock.
//   - Harness: kernel.go (DEVS-style entity contract and event loop),
//     world.go (kinematics and the detector), entities.go (entity variants
//     whose transition hooks invoke the core), simulator.go (wiring).
//
// Every decision path is deterministic: same-tick events execute in insertion
// order, contact evaluation follows a documented tie-break, and the only
// randomness (detector noise) comes from a PartitionedRNG seeded per
// subsystem. Two runs with the same seed and scenario produce byte-identical
// command sequences and the same final Outcome.
//
// # Key Interfaces
//
//   - Entity: time advance / internal transition / external transition /
//     output, dispatched by the Kernel
//   - ContactScorer: per-contact target-likelihood scoring (classifier.go)
//   - ContactNoise: the narrow slice of math/rand the detector draws from,
//     substitutable in tests
package sim
