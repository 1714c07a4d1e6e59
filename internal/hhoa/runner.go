package hhoa

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/opt"
	"horseHerd/internal/rng"
)

// Runner связывает пару (конфигурация, генератор) с интерфейсом opt.Optimizer.
// Используется в фабриках бенчмарка.
type Runner struct {
	Cfg Config
	Rng *rng.Source
	Log *zap.Logger
}

// NewRunner возвращает новый раннер с валидацией конфигурации.
func NewRunner(cfg Config, r *rng.Source) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Runner{Cfg: cfg, Rng: r}, nil
}

// Solve — реализация эвристики для одного экземпляра задачи.
func (rn *Runner) Solve(ctx context.Context, inst *flowshop.Instance) (opt.Result, error) {
	var opts []Option
	if rn.Log != nil {
		opts = append(opts, WithLogger(rn.Log))
	}
	s, err := New(inst, rn.Cfg, rn.Rng, opts...)
	if err != nil {
		return opt.Result{}, err
	}

	best, err := s.Optimize(ctx)
	if best == nil {
		return opt.Result{}, err
	}

	res := opt.Result{
		Permutation: best.Sequence(),
		Makespan:    best.Makespan(),
		Iterations:  s.stats.IterationsExecuted,
		Duration:    s.stats.ExecutionTime,
		Reason:      s.reason,
		Meta: map[string]any{
			"population":   rn.Cfg.PopulationSize,
			"adaptive":     rn.Cfg.AdaptiveParameters,
			"improvements": s.stats.TotalImprovements,
		},
	}
	return res, err
}
