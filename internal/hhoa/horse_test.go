package hhoa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/rng"
)

func testInstance(t *testing.T, jobs, machines int, seed int64) *flowshop.Instance {
	t.Helper()
	return flowshop.RandomInstance(jobs, machines, 1, 20, rng.New(seed))
}

func flatInstance(t *testing.T) *flowshop.Instance {
	t.Helper()
	inst, err := flowshop.NewInstance("flat", 3, 2, []int{1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	return inst
}

func TestCalculateFitness(t *testing.T) {
	assert.Equal(t, -42.0, calculateFitness(42))
	assert.Equal(t, fitnessSentinel, calculateFitness(0))
	assert.Equal(t, fitnessSentinel, calculateFitness(-5))
}

func TestNewHorse(t *testing.T) {
	h, err := NewHorse(testInstance(t, 6, 3, 1), rng.New(2))
	require.NoError(t, err)
	assert.True(t, h.Solution().IsValid())
	assert.Equal(t, 0.8, h.GrazingAbility())
	assert.Equal(t, 1.0, h.Stamina())
	assert.Equal(t, h.Makespan(), h.BestMakespan())
	assert.Equal(t, -float64(h.Makespan()), h.Fitness())
}

func TestNewHorseNilRng(t *testing.T) {
	_, err := NewHorse(testInstance(t, 3, 2, 1), nil)
	require.Error(t, err)
}

func TestHorseCloneIndependence(t *testing.T) {
	h, err := NewHorse(testInstance(t, 6, 3, 3), rng.New(4))
	require.NoError(t, err)

	c := h.Clone()
	require.Equal(t, h.Solution().Sequence(), c.Solution().Sequence())

	c.Solution().MustSwap(0, 1)
	assert.NotEqual(t, h.Solution().Sequence(), c.Solution().Sequence())
}

func TestSetSolutionUpdatesBestAndStagnation(t *testing.T) {
	// Две работы, две машины: порядок [0,1] даёт makespan 7, [1,0] — 9.
	inst, err := flowshop.NewInstance("t", 2, 2, []int{2, 3, 4, 1})
	require.NoError(t, err)
	h, err := NewHorse(inst, rng.New(6))
	require.NoError(t, err)

	good, err := flowshop.NewSolutionFrom([]int{0, 1}, inst)
	require.NoError(t, err)
	bad, err := flowshop.NewSolutionFrom([]int{1, 0}, inst)
	require.NoError(t, err)

	// Стартуем с худшего порядка, чтобы улучшение было строгим.
	h.solution = bad.Clone()
	h.updateFitness()
	h.best = h.solution.Clone()
	h.bestFitness = h.fitness
	require.Equal(t, 9, h.BestMakespan())

	h.SetSolution(good)
	assert.Equal(t, 7, h.BestMakespan())
	assert.Equal(t, 0, h.StagnationCounter())

	h.SetSolution(bad)
	assert.Equal(t, 9, h.Makespan())
	assert.Equal(t, 7, h.BestMakespan())
	assert.Equal(t, 1, h.StagnationCounter())

	h.SetSolution(bad)
	assert.Equal(t, 2, h.StagnationCounter())
}

func TestGrazeNeverWorsens(t *testing.T) {
	h, err := NewHorse(testInstance(t, 10, 5, 7), rng.New(8))
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		before := h.Makespan()
		_, err := h.Graze(1.0)
		require.NoError(t, err)
		assert.LessOrEqual(t, h.Makespan(), before)
		assert.True(t, h.Solution().IsValid())
	}
}

func TestGrazeRejectsBadIntensity(t *testing.T) {
	h, err := NewHorse(testInstance(t, 5, 2, 9), rng.New(10))
	require.NoError(t, err)

	_, err = h.Graze(0)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = h.Graze(1.5)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRoamLeavesHorseUntouched(t *testing.T) {
	h, err := NewHorse(testInstance(t, 8, 3, 11), rng.New(12))
	require.NoError(t, err)

	seq := h.Solution().Sequence()
	best := h.BestMakespan()
	for i := 0; i < 50; i++ {
		candidate, err := h.Roam(0.3)
		require.NoError(t, err)
		assert.True(t, candidate.IsValid())
	}
	assert.Equal(t, seq, h.Solution().Sequence())
	assert.Equal(t, best, h.BestMakespan())
}

func TestRoamRejectsBadRate(t *testing.T) {
	h, err := NewHorse(testInstance(t, 5, 2, 13), rng.New(14))
	require.NoError(t, err)

	_, err = h.Roam(-0.1)
	assert.ErrorIs(t, err, ErrConfiguration)
	_, err = h.Roam(1.1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestFollowLeaderProducesValidSolution(t *testing.T) {
	inst := testInstance(t, 8, 3, 15)
	r := rng.New(16)
	h, err := NewHorse(inst, r)
	require.NoError(t, err)
	leader, err := NewHorse(inst, r)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		candidate, err := h.FollowLeader(leader, 0.7)
		require.NoError(t, err)
		require.True(t, candidate.IsValid())
	}
}

func TestMateWithProducesValidSolution(t *testing.T) {
	inst := testInstance(t, 8, 3, 17)
	r := rng.New(18)
	a, err := NewHorse(inst, r)
	require.NoError(t, err)
	b, err := NewHorse(inst, r)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		offspring, err := a.MateWith(b, 0.8)
		require.NoError(t, err)
		require.True(t, offspring.IsValid())
	}
}

func TestMutateZeroRateIsNoop(t *testing.T) {
	h, err := NewHorse(testInstance(t, 8, 3, 19), rng.New(20))
	require.NoError(t, err)

	seq := h.Solution().Sequence()
	for i := 0; i < 20; i++ {
		require.NoError(t, h.Mutate(0))
	}
	assert.Equal(t, seq, h.Solution().Sequence())
}

func TestMutateKeepsPermutationValid(t *testing.T) {
	h, err := NewHorse(testInstance(t, 8, 3, 21), rng.New(22))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, h.Mutate(1))
		require.True(t, h.Solution().IsValid())
	}
	require.ErrorIs(t, h.Mutate(1.5), ErrConfiguration)
}

func TestIncreaseAgeDecaysToFloor(t *testing.T) {
	h, err := NewHorse(testInstance(t, 5, 2, 23), rng.New(24))
	require.NoError(t, err)

	h.IncreaseAge()
	assert.Equal(t, 1.0, h.Age())
	assert.InDelta(t, 0.8*0.995, h.GrazingAbility(), 1e-12)
	assert.InDelta(t, 0.998, h.Stamina(), 1e-12)

	for i := 0; i < 5000; i++ {
		h.IncreaseAge()
	}
	assert.Equal(t, 0.1, h.GrazingAbility())
	assert.Equal(t, 0.1, h.Stamina())
}

func TestRejuvenate(t *testing.T) {
	h, err := NewHorse(testInstance(t, 5, 2, 25), rng.New(26))
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		h.IncreaseAge()
	}
	for i := 0; i < 100; i++ {
		h.Rejuvenate()
		assert.Equal(t, 0.0, h.Age())
		assert.Equal(t, 0, h.StagnationCounter())
		assert.GreaterOrEqual(t, h.GrazingAbility(), 0.8)
		assert.LessOrEqual(t, h.GrazingAbility(), 1.0)
		assert.GreaterOrEqual(t, h.Stamina(), 0.8)
		assert.LessOrEqual(t, h.Stamina(), 1.0)
	}
}

func TestIsStagnant(t *testing.T) {
	inst, err := flowshop.NewInstance("t", 2, 2, []int{2, 3, 4, 1})
	require.NoError(t, err)
	h, err := NewHorse(inst, rng.New(28))
	require.NoError(t, err)

	require.False(t, h.IsStagnant(2))
	worse, err := flowshop.NewSolutionFrom([]int{1, 0}, inst)
	require.NoError(t, err)
	h.SetSolution(worse.Clone())
	h.SetSolution(worse.Clone())
	assert.True(t, h.IsStagnant(2))
}
