// Package hhoa реализует оптимизацию перестановочного flow-shop расписания
// алгоритмом табуна лошадей: популяция особей с поведением пастьбы,
// блуждания, следования за лидером, спаривания и мутации, управляемая
// поколенческим циклом с адаптивной настройкой параметров.
package hhoa

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/opt"
	"horseHerd/internal/rng"
)

// IterationCallback вызывается после каждого поколения.
type IterationCallback func(iteration int, best *flowshop.Solution, stats *Statistics)

// TerminationCallback может принудительно остановить поиск; если колбэк
// зарегистрирован, его решение приоритетнее остальных условий остановки.
type TerminationCallback func(iteration int, best *flowshop.Solution) bool

// Solver — верхнеуровневый оптимизатор: владеет табуном, рабочей копией
// параметров и статистикой запуска.
type Solver struct {
	inst *flowshop.Instance
	base Config
	cfg  Config
	rng  *rng.Source
	log  *zap.Logger
	herd *Herd

	stats       Statistics
	startTime   time.Time
	initialized bool
	reason      opt.Reason

	iterationCallback   IterationCallback
	terminationCallback TerminationCallback
}

type Option func(*Solver)

// WithLogger подключает структурное логирование; по умолчанию zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}

// New валидирует экземпляр и конфигурацию и создаёт оптимизатор.
func New(inst *flowshop.Instance, cfg Config, r *rng.Source, opts ...Option) (*Solver, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	s := &Solver{
		inst: inst,
		base: cfg,
		cfg:  cfg,
		rng:  r,
		log:  zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}

	herd, err := NewHerd(inst, cfg.PopulationSize, r, s.log)
	if err != nil {
		return nil, err
	}
	s.herd = herd
	return s, nil
}

func (s *Solver) SetIterationCallback(cb IterationCallback)     { s.iterationCallback = cb }
func (s *Solver) SetTerminationCallback(cb TerminationCallback) { s.terminationCallback = cb }

// Parameters возвращает рабочие параметры (после адаптации они могут
// отличаться от заданных при создании).
func (s *Solver) Parameters() Config { return s.cfg }

func (s *Solver) Statistics() *Statistics { return &s.stats }

func (s *Solver) Herd() *Herd { return s.herd }

// TerminationReason объясняет, чем закончился последний запуск.
func (s *Solver) TerminationReason() opt.Reason { return s.reason }

// BestSolution возвращает копию лучшего найденного решения.
func (s *Solver) BestSolution() (*flowshop.Solution, error) {
	if !s.initialized {
		return nil, fmt.Errorf("%w: алгоритм не инициализирован", ErrState)
	}
	return s.herd.BestSolution()
}

func (s *Solver) BestMakespan() (int, error) {
	best, err := s.BestSolution()
	if err != nil {
		return 0, err
	}
	return best.Makespan(), nil
}

// Reset восстанавливает исходные параметры и пересоздаёт табун.
func (s *Solver) Reset() error {
	s.cfg = s.base
	s.stats = Statistics{}
	s.reason = ""
	s.initialized = false

	herd, err := NewHerd(s.inst, s.cfg.PopulationSize, s.rng, s.log)
	if err != nil {
		return err
	}
	s.herd = herd
	return nil
}

// Optimize запускает поиск на MaxIterations поколений.
func (s *Solver) Optimize(ctx context.Context) (*flowshop.Solution, error) {
	return s.OptimizeN(ctx, s.cfg.MaxIterations)
}

// OptimizeN запускает поиск на заданное число поколений.
func (s *Solver) OptimizeN(ctx context.Context, iterations int) (*flowshop.Solution, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf(
			"%w: количество итераций должно быть > 0 (получено %d)",
			ErrConfiguration, iterations,
		)
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}

	stagnation := 0
	best, err := s.herd.BestSolution()
	if err != nil {
		return nil, err
	}
	bestMakespan := best.Makespan()

	for iteration := 0; iteration < iterations; iteration++ {
		if err := ctx.Err(); err != nil {
			s.reason = opt.ReasonContext
			s.finalize()
			return best, err
		}

		if iteration%10 == 0 {
			s.log.Info("поколение",
				zap.Int("iteration", iteration),
				zap.Int("of", iterations),
				zap.Int("best_makespan", bestMakespan),
			)
		}

		if err := s.executeGeneration(iteration); err != nil {
			return nil, err
		}
		s.recordStatistics()

		best, err = s.herd.BestSolution()
		if err != nil {
			return nil, err
		}
		if best.Makespan() < bestMakespan {
			bestMakespan = best.Makespan()
			stagnation = 0
			s.stats.TotalImprovements++
			s.log.Info("найдено улучшение",
				zap.Int("iteration", iteration),
				zap.Int("makespan", bestMakespan),
			)
		} else {
			stagnation++
		}

		if s.cfg.AdaptiveParameters {
			s.updateAdaptiveParameters(iteration, s.herd.Diversity(), stagnation)
		}

		if s.iterationCallback != nil {
			s.iterationCallback(iteration, best, s.stats.Clone())
		}

		if reason, stop := s.shouldTerminate(iteration, stagnation, best); stop {
			s.reason = reason
			s.log.Info("досрочная остановка",
				zap.Int("iteration", iteration),
				zap.String("reason", string(reason)),
			)
			break
		}

		s.herd.NextGeneration()
		s.stats.IterationsExecuted = iteration + 1
	}

	if s.reason == "" {
		s.reason = opt.ReasonBudget
	}
	s.finalize()
	return s.herd.BestSolution()
}

// OptimizeToTarget ищет до достижения makespan <= target; maxIterations —
// жёсткий предел. Адаптация, колбэк остановки и терпение не участвуют.
func (s *Solver) OptimizeToTarget(ctx context.Context, target, maxIterations int) (*flowshop.Solution, error) {
	if maxIterations <= 0 {
		maxIterations = s.cfg.MaxIterations
	}
	if err := s.initialize(); err != nil {
		return nil, err
	}

	s.log.Info("поиск до целевого значения", zap.Int("target", target))

	for iteration := 0; iteration < maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			s.reason = opt.ReasonContext
			s.finalize()
			best, _ := s.herd.BestSolution()
			return best, err
		}

		if err := s.executeGeneration(iteration); err != nil {
			return nil, err
		}
		s.recordStatistics()

		best, err := s.herd.BestSolution()
		if err != nil {
			return nil, err
		}
		if best.Makespan() <= target {
			s.reason = opt.ReasonTarget
			s.log.Info("целевое значение достигнуто", zap.Int("iteration", iteration))
			break
		}

		if s.iterationCallback != nil {
			s.iterationCallback(iteration, best, s.stats.Clone())
		}

		s.herd.NextGeneration()
		s.stats.IterationsExecuted = iteration + 1
	}

	if s.reason == "" {
		s.reason = opt.ReasonBudget
	}
	s.finalize()
	return s.herd.BestSolution()
}

// executeGeneration — десять фаз одного поколения в фиксированном порядке.
func (s *Solver) executeGeneration(iteration int) error {
	if _, err := s.herd.PerformGrazing(s.cfg.GrazingIntensity); err != nil {
		return err
	}
	if _, err := s.herd.PerformRoaming(s.cfg.RoamingRate, s.cfg.ExplorationRate); err != nil {
		return err
	}
	if _, err := s.herd.PerformFollowing(s.cfg.FollowingRate); err != nil {
		return err
	}
	if _, err := s.herd.PerformMating(s.cfg.MatingRate, s.cfg.CrossoverRate); err != nil {
		return err
	}
	if _, err := s.herd.PerformMutation(s.cfg.MutationRate); err != nil {
		return err
	}

	s.herd.AgeHorses()

	if iteration%10 == 0 {
		s.stats.Replacements += s.herd.ReplaceWeakHorses(s.cfg.ReplacementRate)
	}
	if iteration%s.cfg.MaxStagnation == 0 {
		s.stats.Rejuvenations += s.herd.RejuvenateStagnantHorses(s.cfg.MaxStagnation)
	}
	if iteration%s.cfg.EliteImprovementFreq == 0 {
		if _, err := s.herd.ImproveElite(s.cfg.EliteCount); err != nil {
			return err
		}
	}

	if s.herd.UpdateLeader() {
		s.stats.LeaderChanges++
	}
	s.herd.CalculateDiversity()

	if s.herd.Diversity() < s.cfg.DiversityThreshold {
		s.applyDiversityPreservation()
	}
	return nil
}

func (s *Solver) shouldTerminate(iteration, stagnation int, best *flowshop.Solution) (opt.Reason, bool) {
	// Решение зарегистрированного колбэка окончательно
	if s.terminationCallback != nil {
		if s.terminationCallback(iteration, best) {
			return opt.ReasonCallback, true
		}
		return "", false
	}
	if iteration >= s.cfg.MaxIterations-1 {
		return opt.ReasonBudget, true
	}
	if stagnation >= s.cfg.TerminationPatience {
		return opt.ReasonPatience, true
	}
	return "", false
}

// updateAdaptiveParameters корректирует рабочие параметры; правила
// применяются по порядку, каждый множитель ограничивается независимо.
func (s *Solver) updateAdaptiveParameters(iteration int, diversity float64, stagnation int) {
	progress := float64(iteration) / float64(s.cfg.MaxIterations)

	if progress < 0.3 {
		// Ранняя стадия: усилить исследование
		s.cfg.RoamingRate = math.Min(0.5, s.cfg.RoamingRate*1.1)
		s.cfg.ExplorationRate = math.Min(0.5, s.cfg.ExplorationRate*1.1)
	} else if progress > 0.7 {
		// Поздняя стадия: усилить эксплуатацию
		s.cfg.GrazingIntensity = math.Min(0.9, s.cfg.GrazingIntensity*1.05)
		s.cfg.FollowingRate = math.Min(0.9, s.cfg.FollowingRate*1.05)
	}

	if diversity < s.cfg.DiversityThreshold {
		s.cfg.MutationRate = math.Min(0.3, s.cfg.MutationRate*1.2)
		s.cfg.ReplacementRate = math.Min(0.2, s.cfg.ReplacementRate*1.1)
	} else if diversity > 0.1 {
		s.cfg.GrazingIntensity = math.Min(0.9, s.cfg.GrazingIntensity*1.1)
	}

	if stagnation > s.cfg.MaxStagnation/2 {
		s.cfg.MutationRate = math.Min(0.3, s.cfg.MutationRate*1.15)
	}
}

// applyDiversityPreservation принудительно заменяет около 20% популяции
// случайными особями и разгоняет мутацию.
func (s *Solver) applyDiversityPreservation() {
	num := int(float64(s.cfg.PopulationSize) * 0.2)
	if num < 1 {
		num = 1
	}
	s.herd.ReplaceWeakHorses(float64(num) / float64(s.cfg.PopulationSize))
	s.cfg.MutationRate = math.Min(0.4, s.cfg.MutationRate*1.5)
	s.log.Debug("применена защита разнообразия", zap.Float64("diversity", s.herd.Diversity()))
}

func (s *Solver) recordStatistics() {
	best, err := s.herd.BestSolution()
	if err != nil {
		return
	}
	s.stats.BestMakespanHistory = append(s.stats.BestMakespanHistory, best.Makespan())
	s.stats.DiversityHistory = append(s.stats.DiversityHistory, s.herd.Diversity())
	s.stats.AverageFitnessHistory = append(s.stats.AverageFitnessHistory, s.herd.AverageFitness())
}

func (s *Solver) initialize() error {
	s.startTime = time.Now()
	s.stats = Statistics{}
	s.reason = ""

	if err := s.herd.Initialize(s.cfg.RandomRatio); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func (s *Solver) finalize() {
	s.stats.ExecutionTime = time.Since(s.startTime)
	s.log.Info("оптимизация завершена",
		zap.Duration("elapsed", s.stats.ExecutionTime),
		zap.Int("iterations", s.stats.IterationsExecuted),
	)
}
