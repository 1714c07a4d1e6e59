package hhoa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/opt"
	"horseHerd/internal/rng"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 5
	cfg.MaxIterations = 10
	return cfg
}

func TestNewValidatesInputs(t *testing.T) {
	inst := flatInstance(t)

	badCfg := smallConfig()
	badCfg.MutationRate = 2
	_, err := New(inst, badCfg, rng.New(1))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New(inst, smallConfig(), nil)
	assert.Error(t, err)

	badInst := &flowshop.Instance{Jobs: 2, Machines: 2, ProcTimes: []int{1}}
	_, err = New(badInst, smallConfig(), rng.New(1))
	assert.ErrorIs(t, err, flowshop.ErrValidation)
}

func TestBestSolutionBeforeOptimize(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(1))
	require.NoError(t, err)

	_, err = s.BestSolution()
	assert.ErrorIs(t, err, ErrState)
	_, err = s.BestMakespan()
	assert.ErrorIs(t, err, ErrState)
}

func TestOptimizeFlatInstance(t *testing.T) {
	// Все времена единичные: любой порядок оптимален, makespan = 4.
	s, err := New(flatInstance(t), smallConfig(), rng.New(1))
	require.NoError(t, err)

	best, err := s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, best.Makespan())
	assert.True(t, best.IsValid())

	stats := s.Statistics()
	require.Len(t, stats.BestMakespanHistory, 10)
	for _, v := range stats.BestMakespanHistory {
		assert.Equal(t, 4, v)
	}
	assert.Equal(t, opt.ReasonBudget, s.TerminationReason())
}

func TestOptimizeNRejectsNonPositive(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(1))
	require.NoError(t, err)

	_, err = s.OptimizeN(context.Background(), 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestOptimizeSeedReproducibility(t *testing.T) {
	run := func() ([]int, int) {
		inst := flowshop.RandomInstance(8, 4, 1, 20, rng.New(7))
		cfg := DefaultConfig()
		cfg.PopulationSize = 8
		cfg.MaxIterations = 15
		s, err := New(inst, cfg, rng.New(42))
		require.NoError(t, err)
		best, err := s.Optimize(context.Background())
		require.NoError(t, err)
		return s.Statistics().BestMakespanHistory, best.Makespan()
	}

	historyA, bestA := run()
	historyB, bestB := run()
	assert.Equal(t, historyA, historyB)
	assert.Equal(t, bestA, bestB)
}

func TestOptimizeHistoryNonIncreasing(t *testing.T) {
	inst := flowshop.RandomInstance(10, 5, 1, 30, rng.New(3))
	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.MaxIterations = 30
	s, err := New(inst, cfg, rng.New(4))
	require.NoError(t, err)

	_, err = s.Optimize(context.Background())
	require.NoError(t, err)

	history := s.Statistics().BestMakespanHistory
	require.NotEmpty(t, history)
	for i := 1; i < len(history); i++ {
		require.LessOrEqual(t, history[i], history[i-1],
			"лучший makespan не должен расти между поколениями")
	}
}

func TestTerminationCallbackWins(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxIterations = 50
	s, err := New(flatInstance(t), cfg, rng.New(5))
	require.NoError(t, err)

	s.SetTerminationCallback(func(iteration int, best *flowshop.Solution) bool {
		return iteration >= 3
	})

	_, err = s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, opt.ReasonCallback, s.TerminationReason())
	assert.Len(t, s.Statistics().BestMakespanHistory, 4)
	assert.Equal(t, 3, s.Statistics().IterationsExecuted)
}

func TestTerminationPatience(t *testing.T) {
	// Плоский экземпляр никогда не улучшается: стагнация растёт каждое
	// поколение и срабатывает раньше бюджета итераций.
	cfg := smallConfig()
	cfg.MaxIterations = 1000
	cfg.TerminationPatience = 5
	s, err := New(flatInstance(t), cfg, rng.New(6))
	require.NoError(t, err)

	_, err = s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, opt.ReasonPatience, s.TerminationReason())
	assert.Len(t, s.Statistics().BestMakespanHistory, 5)
}

func TestIterationCallbackReceivesSnapshot(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(8))
	require.NoError(t, err)

	var iterations []int
	var lastStats *Statistics
	s.SetIterationCallback(func(iteration int, best *flowshop.Solution, stats *Statistics) {
		iterations = append(iterations, iteration)
		lastStats = stats
	})

	_, err = s.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, iterations)
	require.NotNil(t, lastStats)
	// Колбэк получает снимок, а не внутреннее состояние.
	lastStats.BestMakespanHistory[0] = -1
	assert.NotEqual(t, -1, s.Statistics().BestMakespanHistory[0])
}

func TestOptimizeToTarget(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(9))
	require.NoError(t, err)

	best, err := s.OptimizeToTarget(context.Background(), 4, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, best.Makespan())
	assert.Equal(t, opt.ReasonTarget, s.TerminationReason())
	assert.Len(t, s.Statistics().BestMakespanHistory, 1)
	assert.Equal(t, 0, s.Statistics().IterationsExecuted)
}

func TestOptimizeToTargetBudgetExhausted(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(10))
	require.NoError(t, err)

	// Недостижимая цель: останавливаемся по бюджету.
	best, err := s.OptimizeToTarget(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, best.Makespan())
	assert.Equal(t, opt.ReasonBudget, s.TerminationReason())
	assert.Len(t, s.Statistics().BestMakespanHistory, 5)
}

func TestOptimizeContextCancellation(t *testing.T) {
	s, err := New(flatInstance(t), smallConfig(), rng.New(11))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, err := s.Optimize(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, best)
	assert.True(t, best.IsValid())
	assert.Equal(t, opt.ReasonContext, s.TerminationReason())
}

func TestReset(t *testing.T) {
	cfg := smallConfig()
	s, err := New(flatInstance(t), cfg, rng.New(12))
	require.NoError(t, err)

	_, err = s.Optimize(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	assert.Equal(t, cfg, s.Parameters())
	assert.Empty(t, s.Statistics().BestMakespanHistory)
	_, err = s.BestSolution()
	assert.ErrorIs(t, err, ErrState)
}

func TestAdaptiveParametersEarlyStage(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxIterations = 100
	s, err := New(flatInstance(t), cfg, rng.New(13))
	require.NoError(t, err)
	require.NoError(t, s.initialize())

	s.updateAdaptiveParameters(0, 0.5, 0)
	assert.InDelta(t, cfg.RoamingRate*1.1, s.cfg.RoamingRate, 1e-12)
	assert.InDelta(t, cfg.ExplorationRate*1.1, s.cfg.ExplorationRate, 1e-12)

	// Множители ограничены независимыми потолками.
	for i := 0; i < 100; i++ {
		s.updateAdaptiveParameters(0, 0.5, 0)
	}
	assert.LessOrEqual(t, s.cfg.RoamingRate, 0.5)
	assert.LessOrEqual(t, s.cfg.ExplorationRate, 0.5)
}

func TestAdaptiveParametersLateStageAndStagnation(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxIterations = 100
	s, err := New(flatInstance(t), cfg, rng.New(14))
	require.NoError(t, err)
	require.NoError(t, s.initialize())

	s.updateAdaptiveParameters(80, 0.05, 0)
	assert.InDelta(t, cfg.GrazingIntensity*1.05, s.cfg.GrazingIntensity, 1e-12)
	assert.InDelta(t, cfg.FollowingRate*1.05, s.cfg.FollowingRate, 1e-12)

	before := s.cfg.MutationRate
	s.updateAdaptiveParameters(50, 0.05, cfg.MaxStagnation)
	assert.Greater(t, s.cfg.MutationRate, before)
	assert.LessOrEqual(t, s.cfg.MutationRate, 0.3)
}

func TestRunnerSolve(t *testing.T) {
	cfg := smallConfig()
	rn, err := NewRunner(cfg, rng.New(15))
	require.NoError(t, err)

	inst := flowshop.RandomInstance(6, 3, 1, 20, rng.New(16))
	res, err := rn.Solve(context.Background(), inst)
	require.NoError(t, err)

	assert.NoError(t, flowshop.ValidatePermutation(res.Permutation, inst.Jobs))
	assert.Greater(t, res.Makespan, 0)
	assert.Equal(t, opt.ReasonBudget, res.Reason)
	assert.Equal(t, cfg.PopulationSize, res.Meta["population"])
}

func TestRunnerValidation(t *testing.T) {
	bad := smallConfig()
	bad.PopulationSize = 0
	_, err := NewRunner(bad, rng.New(17))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewRunner(smallConfig(), nil)
	assert.Error(t, err)
}
