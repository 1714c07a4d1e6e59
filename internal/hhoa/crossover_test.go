package hhoa

import (
	"testing"

	"github.com/stretchr/testify/require"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/rng"
)

func randomParents(t *testing.T, jobs int, r *rng.Source) (*flowshop.Solution, *flowshop.Solution) {
	t.Helper()
	inst := flowshop.RandomInstance(jobs, 3, 1, 9, r)
	p1, err := flowshop.NewSolution(inst)
	require.NoError(t, err)
	p2, err := flowshop.NewSolution(inst)
	require.NoError(t, err)
	p1.InitializeRandom(r)
	p2.InitializeRandom(r)
	return p1, p2
}

func TestOrderCrossoverProducesPermutation(t *testing.T) {
	r := rng.New(100)
	for jobs := 2; jobs <= 12; jobs++ {
		p1, p2 := randomParents(t, jobs, r)
		for i := 0; i < 200; i++ {
			offspring := orderCrossover(p1, p2, r)
			require.True(t, offspring.IsValid(),
				"потомок OX должен быть перестановкой (jobs=%d)", jobs)
		}
	}
}

func TestOrderCrossoverSingleJob(t *testing.T) {
	r := rng.New(101)
	inst := flowshop.RandomInstance(1, 2, 1, 9, r)
	p, err := flowshop.NewSolution(inst)
	require.NoError(t, err)

	offspring := orderCrossover(p, p, r)
	require.Equal(t, []int{0}, offspring.Sequence())
}

func TestOrderCrossoverKeepsSegment(t *testing.T) {
	// С одинаковыми родителями потомок обязан совпасть с ними.
	r := rng.New(102)
	inst := flowshop.RandomInstance(8, 3, 1, 9, r)
	p, err := flowshop.NewSolutionFrom([]int{3, 1, 4, 0, 5, 7, 2, 6}, inst)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		offspring := orderCrossover(p, p, r)
		require.Equal(t, p.Sequence(), offspring.Sequence())
	}
}

func TestPositionCrossoverProducesPermutation(t *testing.T) {
	r := rng.New(103)
	for jobs := 2; jobs <= 12; jobs++ {
		p1, p2 := randomParents(t, jobs, r)
		for i := 0; i < 200; i++ {
			offspring := positionCrossover(p1, p2, r)
			require.True(t, offspring.IsValid(),
				"потомок позиционного кроссовера должен быть перестановкой (jobs=%d)", jobs)
		}
	}
}

func TestPositionCrossoverSingleJob(t *testing.T) {
	r := rng.New(104)
	inst := flowshop.RandomInstance(1, 2, 1, 9, r)
	p, err := flowshop.NewSolution(inst)
	require.NoError(t, err)

	offspring := positionCrossover(p, p, r)
	require.Equal(t, []int{0}, offspring.Sequence())
}

func TestCrossoverDoesNotMutateParents(t *testing.T) {
	r := rng.New(105)
	p1, p2 := randomParents(t, 10, r)
	s1, s2 := p1.Sequence(), p2.Sequence()

	for i := 0; i < 100; i++ {
		orderCrossover(p1, p2, r)
		positionCrossover(p1, p2, r)
	}
	require.Equal(t, s1, p1.Sequence())
	require.Equal(t, s2, p2.Sequence())
}
