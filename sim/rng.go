package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible engagement run. Two runs
// with the same SimulationKey and identical configuration MUST produce
// bit-for-bit identical command sequences and outcomes.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

const (
	// SubsystemAttackDetector seeds the attacker-side sensor noise.
	SubsystemAttackDetector = "detector_attack"

	// SubsystemDefenseDetector seeds the defender-side sensor noise.
	SubsystemDefenseDetector = "detector_defense"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, so adding noise draws to one side's detector can never perturb
// the other side's stream.
//
// Derivation: masterSeed XOR fnv1a64(subsystemName).
// Thread-safety: NOT thread-safe. The simulation is single-threaded.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same name always returns the same cached *rand.Rand.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// SubsystemDecoy returns the noise subsystem name for one decoy's signature
// emulation, keyed by its ledger id.
func SubsystemDecoy(decoyID string) string {
	return fmt.Sprintf("decoy_%s", decoyID)
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
