package hhoa

import (
	"fmt"
	"math"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/rng"
)

// fitnessSentinel подставляется вместо -makespan при неположительном значении
// целевой функции, чтобы сравнения приспособленности оставались тотальными.
const fitnessSentinel = -1_000_000.0

// Horse — одна особь табуна: текущее решение, личный рекорд и поведенческие
// характеристики. Копирование особи всегда глубокое: каждая особь ведёт поиск
// независимо.
type Horse struct {
	solution *flowshop.Solution
	best     *flowshop.Solution

	fitness     float64
	bestFitness float64

	age            float64
	grazingAbility float64
	stamina        float64
	leader         bool
	stagnation     int

	rng *rng.Source
}

// NewHorse создаёт особь со случайной перестановкой.
func NewHorse(inst *flowshop.Instance, r *rng.Source) (*Horse, error) {
	if r == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	sol, err := flowshop.NewSolution(inst)
	if err != nil {
		return nil, err
	}
	h := &Horse{
		solution:       sol,
		grazingAbility: 0.8,
		stamina:        1.0,
		rng:            r,
	}
	h.InitializeRandom()
	return h, nil
}

// Clone возвращает глубокую копию особи. Поток случайных чисел общий.
func (h *Horse) Clone() *Horse {
	return &Horse{
		solution:       h.solution.Clone(),
		best:           h.best.Clone(),
		fitness:        h.fitness,
		bestFitness:    h.bestFitness,
		age:            h.age,
		grazingAbility: h.grazingAbility,
		stamina:        h.stamina,
		leader:         h.leader,
		stagnation:     h.stagnation,
		rng:            h.rng,
	}
}

func (h *Horse) Solution() *flowshop.Solution     { return h.solution }
func (h *Horse) BestSolution() *flowshop.Solution { return h.best }
func (h *Horse) Fitness() float64                 { return h.fitness }
func (h *Horse) BestFitness() float64             { return h.bestFitness }
func (h *Horse) Makespan() int                    { return h.solution.Makespan() }
func (h *Horse) BestMakespan() int                { return h.best.Makespan() }
func (h *Horse) Age() float64                     { return h.age }
func (h *Horse) GrazingAbility() float64          { return h.grazingAbility }
func (h *Horse) Stamina() float64                 { return h.stamina }
func (h *Horse) IsLeader() bool                   { return h.leader }
func (h *Horse) StagnationCounter() int           { return h.stagnation }

func (h *Horse) setLeader(v bool) { h.leader = v }

func (h *Horse) IsStagnant(maxStagnation int) bool {
	return h.stagnation >= maxStagnation
}

// InitializeRandom перемешивает текущее решение и сбрасывает личный рекорд.
func (h *Horse) InitializeRandom() {
	h.solution.InitializeRandom(h.rng)
	h.updateFitness()
	h.best = h.solution.Clone()
	h.bestFitness = h.fitness
}

// InitializeGreedy строит решение жадной эвристикой и сбрасывает личный рекорд.
func (h *Horse) InitializeGreedy() {
	h.solution.InitializeGreedy()
	h.updateFitness()
	h.best = h.solution.Clone()
	h.bestFitness = h.fitness
}

// SetSolution заменяет текущее решение. Личный рекорд обновляется только при
// строгом улучшении; иначе растёт счётчик стагнации.
func (h *Horse) SetSolution(s *flowshop.Solution) {
	h.solution = s.Clone()
	h.updateFitness()
	if h.updateBest() {
		h.stagnation = 0
	} else {
		h.stagnation++
	}
}

func (h *Horse) updateFitness() {
	h.fitness = calculateFitness(h.solution.Makespan())
}

func (h *Horse) updateBest() bool {
	if h.fitness > h.bestFitness {
		h.best = h.solution.Clone()
		h.bestFitness = h.fitness
		return true
	}
	return false
}

func calculateFitness(makespan int) float64 {
	if makespan > 0 {
		return -float64(makespan)
	}
	return fitnessSentinel
}

// Graze — локальный поиск ("пастьба"). Эффективная вероятность равна
// intensity * grazingAbility * stamina; с ней запускается 2-opt поиск, а с
// коэффициентом 0.7 от неё — поиск перестановкой-вставкой. Оба поиска
// принимают первое улучшающее движение.
func (h *Horse) Graze(intensity float64) (bool, error) {
	if intensity <= 0 || intensity > 1 {
		return false, fmt.Errorf(
			"%w: интенсивность пастьбы должна быть в диапазоне (0,1] (получено %f)",
			ErrConfiguration, intensity,
		)
	}

	improved := false
	effective := intensity * h.grazingAbility * h.stamina

	if h.rng.Float64() < effective {
		if h.applyTwoOpt() {
			improved = true
		}
	}
	if h.rng.Float64() < effective*0.7 {
		if h.applyRelocationSearch() {
			improved = true
		}
	}

	if improved {
		h.updateFitness()
		h.updateBest()
	}
	return improved, nil
}

// applyTwoOpt перебирает пары позиций i<j и принимает первый улучшающий обмен.
func (h *Horse) applyTwoOpt() bool {
	current := h.solution.Makespan()
	n := h.solution.Jobs()
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			h.solution.MustSwap(i, j)
			if h.solution.Makespan() < current {
				return true
			}
			h.solution.MustSwap(i, j)
		}
	}
	return false
}

// applyRelocationSearch перебирает пары (откуда, куда) и принимает первое
// улучшающее перемещение.
func (h *Horse) applyRelocationSearch() bool {
	current := h.solution.Makespan()
	n := h.solution.Jobs()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			candidate := h.solution.Clone()
			candidate.MustRelocate(i, j)
			if candidate.Makespan() < current {
				h.solution = candidate
				return true
			}
		}
	}
	return false
}

// Roam строит нового кандидата серией случайных движений над копией текущего
// решения. Состояние особи не меняется: принятие решает вызывающая сторона.
func (h *Horse) Roam(explorationRate float64) (*flowshop.Solution, error) {
	if explorationRate < 0 || explorationRate > 1 {
		return nil, fmt.Errorf(
			"%w: коэффициент исследования должен быть в диапазоне [0,1] (получено %f)",
			ErrConfiguration, explorationRate,
		)
	}

	moves := int(math.Round(explorationRate * float64(h.solution.Jobs()) * 0.5))
	if moves < 1 {
		moves = 1
	}

	candidate := h.solution
	for i := 0; i < moves; i++ {
		if h.rng.Bool(0.5) {
			candidate = candidate.SwapNeighbor(h.rng)
		} else {
			candidate = candidate.RelocateNeighbor(h.rng)
		}
	}
	return candidate, nil
}

// FollowLeader скрещивает текущее решение с личным рекордом лидера: с
// вероятностью followingRate порядковым кроссовером, иначе позиционным.
func (h *Horse) FollowLeader(leader *Horse, followingRate float64) (*flowshop.Solution, error) {
	if followingRate < 0 || followingRate > 1 {
		return nil, fmt.Errorf(
			"%w: вероятность следования должна быть в диапазоне [0,1] (получено %f)",
			ErrConfiguration, followingRate,
		)
	}
	if h.rng.Float64() < followingRate {
		return orderCrossover(h.solution, leader.best, h.rng), nil
	}
	return positionCrossover(h.solution, leader.best, h.rng), nil
}

// MateWith скрещивает личные рекорды двух особей. С вероятностью crossoverRate
// применяется один из кроссоверов (поровну), иначе возвращается копия одного
// из родителей.
func (h *Horse) MateWith(mate *Horse, crossoverRate float64) (*flowshop.Solution, error) {
	if crossoverRate < 0 || crossoverRate > 1 {
		return nil, fmt.Errorf(
			"%w: вероятность кроссовера должна быть в диапазоне [0,1] (получено %f)",
			ErrConfiguration, crossoverRate,
		)
	}
	if h.rng.Float64() < crossoverRate {
		if h.rng.Bool(0.5) {
			return orderCrossover(h.best, mate.best, h.rng), nil
		}
		return positionCrossover(h.best, mate.best, h.rng), nil
	}
	if h.rng.Bool(0.5) {
		return h.best.Clone(), nil
	}
	return mate.best.Clone(), nil
}

// Mutate с вероятностью mutationRate применяет одно случайное движение к
// текущему решению. Счётчик стагнации не затрагивается.
func (h *Horse) Mutate(mutationRate float64) error {
	if mutationRate < 0 || mutationRate > 1 {
		return fmt.Errorf(
			"%w: вероятность мутации должна быть в диапазоне [0,1] (получено %f)",
			ErrConfiguration, mutationRate,
		)
	}
	if h.rng.Float64() < mutationRate {
		if h.rng.Bool(0.5) {
			h.solution = h.solution.SwapNeighbor(h.rng)
		} else {
			h.solution = h.solution.RelocateNeighbor(h.rng)
		}
		h.updateFitness()
		h.updateBest()
	}
	return nil
}

// IncreaseAge — старение: способности медленно деградируют до пола 0.1.
func (h *Horse) IncreaseAge() {
	h.age++
	h.grazingAbility *= 0.995
	h.stamina *= 0.998
	if h.grazingAbility < 0.1 {
		h.grazingAbility = 0.1
	}
	if h.stamina < 0.1 {
		h.stamina = 0.1
	}
}

// Rejuvenate сбрасывает возраст и стагнацию, способности берутся заново
// из [0.8, 1.0].
func (h *Horse) Rejuvenate() {
	h.age = 0
	h.grazingAbility = 0.8 + h.rng.Float64()*0.2
	h.stamina = 0.8 + h.rng.Float64()*0.2
	h.stagnation = 0
}
