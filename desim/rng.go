package desim

import (
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible run: two runs with the
// same SimulationKey, Config, and object set must produce bit-for-bit
// identical schedules, since the engine's own ordering is already
// deterministic (see queue.go) and the only remaining source of randomness
// is whatever user models draw from their assigned *rand.Rand.
type SimulationKey int64

// NewSimulationKey wraps a Config.RandomSeed value as a SimulationKey, or
// draws one from math/rand's global source if seed is nil -- in which case the run
// is reproducible only if the caller records the resulting key.
func NewSimulationKey(seed *int64) SimulationKey {
	if seed != nil {
		return SimulationKey(*seed)
	}
	return SimulationKey(rand.Int63())
}

// defaultSubsystem names the RNG handed out for a bare ForSubsystem(""),
// which uses the master seed directly, as a single-subsystem model would.
const defaultSubsystem = ""

// PartitionedRNG hands out a deterministic, isolated *rand.Rand per named
// subsystem, so independently-evolving parts of a model (an object class,
// an input generator, a routing policy) don't perturb each other's draws
// just because one of them is called more or fewer times during a run.
//
// Derivation: the default subsystem uses the master seed directly (so a
// single-subsystem model's output is unaffected by partitioning); every
// other subsystem XORs the master seed with an FNV-1a hash of its name.
//
// Not safe for concurrent use; a Simulator dispatches one event batch at a
// time from a single goroutine, so this is never a practical constraint.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, subsystems: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the *rand.Rand for the named subsystem, creating and
// caching it on first use. The same name always returns the same instance.
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	var derivedSeed int64
	if name == defaultSubsystem {
		derivedSeed = int64(p.key)
	} else {
		derivedSeed = int64(p.key) ^ fnv1a64(name)
	}
	rng := rand.New(rand.NewSource(derivedSeed))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey this PartitionedRNG was derived from.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
