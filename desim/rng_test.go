package desim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionedRNG_SameSubsystemReturnsSameInstance(t *testing.T) {
	p := NewPartitionedRNG(SimulationKey(42))
	a := p.ForSubsystem("objects")
	b := p.ForSubsystem("objects")
	assert.Same(t, a, b)
}

func TestPartitionedRNG_DifferentSubsystemsAreIsolated(t *testing.T) {
	p := NewPartitionedRNG(SimulationKey(42))
	defaultRng := p.ForSubsystem(defaultSubsystem)
	other := p.ForSubsystem("objects")
	assert.NotSame(t, defaultRng, other)
}

func TestPartitionedRNG_DeterministicAcrossInstancesWithSameKey(t *testing.T) {
	p1 := NewPartitionedRNG(SimulationKey(7))
	p2 := NewPartitionedRNG(SimulationKey(7))
	assert.Equal(t, p1.ForSubsystem("objects").Int63(), p2.ForSubsystem("objects").Int63())
}

func TestNewSimulationKey_UsesProvidedSeed(t *testing.T) {
	seed := int64(123)
	assert.Equal(t, SimulationKey(123), NewSimulationKey(&seed))
}
