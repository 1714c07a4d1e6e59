package hhoa

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/rng"
)

// Herd владеет популяцией фиксированного размера и снимком лидера.
// Лидер хранится отдельной глубокой копией: он должен переживать замещение
// особей, поэтому не может быть ссылкой внутрь популяции.
type Herd struct {
	inst   *flowshop.Instance
	rng    *rng.Source
	log    *zap.Logger
	size   int
	horses []*Horse
	leader *Horse

	diversity  float64
	generation int
}

func NewHerd(inst *flowshop.Instance, size int, r *rng.Source, log *zap.Logger) (*Herd, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: размер табуна должен быть > 0 (получено %d)", ErrConfiguration, size)
	}
	if r == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Herd{inst: inst, rng: r, log: log, size: size}, nil
}

// Initialize создаёт популяцию: floor(size*randomRatio) случайных особей,
// остальные — жадные, каждая следующая жадная особь дополнительно мутирует
// с растущей вероятностью для разнообразия.
func (hd *Herd) Initialize(randomRatio float64) error {
	if randomRatio < 0 || randomRatio > 1 {
		return fmt.Errorf(
			"%w: доля случайных особей должна быть в диапазоне [0,1] (получено %f)",
			ErrConfiguration, randomRatio,
		)
	}

	hd.horses = make([]*Horse, 0, hd.size)
	hd.leader = nil
	hd.generation = 0

	numRandom := int(float64(hd.size) * randomRatio)
	numGreedy := hd.size - numRandom

	hd.log.Info("инициализация табуна",
		zap.Int("random", numRandom),
		zap.Int("greedy", numGreedy),
	)

	for i := 0; i < numRandom; i++ {
		horse, err := NewHorse(hd.inst, hd.rng)
		if err != nil {
			return err
		}
		hd.horses = append(hd.horses, horse)
	}
	for i := 0; i < numGreedy; i++ {
		horse, err := NewHorse(hd.inst, hd.rng)
		if err != nil {
			return err
		}
		horse.InitializeGreedy()
		if i > 0 {
			rate := 0.1 * float64(i)
			if rate > 1 {
				rate = 1
			}
			if err := horse.Mutate(rate); err != nil {
				return err
			}
		}
		hd.horses = append(hd.horses, horse)
	}

	hd.UpdateLeader()
	hd.CalculateDiversity()

	best, err := hd.BestHorse()
	if err != nil {
		return err
	}
	hd.log.Info("табун инициализирован", zap.Int("best_makespan", best.BestMakespan()))
	return nil
}

func (hd *Herd) Size() int        { return len(hd.horses) }
func (hd *Herd) Capacity() int    { return hd.size }
func (hd *Herd) Horses() []*Horse { return hd.horses }

func (hd *Herd) Generation() int    { return hd.generation }
func (hd *Herd) NextGeneration()    { hd.generation++ }
func (hd *Herd) Diversity() float64 { return hd.diversity }

// Leader возвращает снимок лидера (может быть nil до инициализации).
func (hd *Herd) Leader() *Horse { return hd.leader }

// BestHorse возвращает особь с наилучшим личным рекордом.
// При равенстве побеждает первая по порядку.
func (hd *Herd) BestHorse() (*Horse, error) {
	if len(hd.horses) == 0 {
		return nil, fmt.Errorf("%w: табун пуст", ErrState)
	}
	best := hd.horses[0]
	for _, h := range hd.horses[1:] {
		if h.bestFitness > best.bestFitness {
			best = h
		}
	}
	return best, nil
}

// BestSolution возвращает копию лучшего найденного решения. Снимок лидера
// переживает замену и омоложение особей, поэтому именно он хранит глобальный
// рекорд; табун опрашивается только пока лидер ещё не назначен.
func (hd *Herd) BestSolution() (*flowshop.Solution, error) {
	if hd.leader != nil {
		return hd.leader.best.Clone(), nil
	}
	best, err := hd.BestHorse()
	if err != nil {
		return nil, err
	}
	return best.best.Clone(), nil
}

// UpdateLeader заменяет снимок лидера при строгом улучшении и заново
// расставляет флаг лидера: его получает первая особь, чей личный рекорд
// совпадает с лидерским по значению makespan.
func (hd *Herd) UpdateLeader() bool {
	if len(hd.horses) == 0 {
		return false
	}

	best, _ := hd.BestHorse()
	changed := false
	if hd.leader == nil || best.bestFitness > hd.leader.bestFitness {
		hd.leader = best.Clone()
		hd.leader.setLeader(true)
		changed = true
		hd.log.Debug("новый лидер", zap.Int("makespan", hd.leader.BestMakespan()))
	}

	for _, h := range hd.horses {
		h.setLeader(false)
	}
	for _, h := range hd.horses {
		if h.BestMakespan() == hd.leader.BestMakespan() {
			h.setLeader(true)
			break
		}
	}
	return changed
}

// CalculateDiversity — среднее нормированное расстояние Хэмминга по всем
// неупорядоченным парам текущих решений.
func (hd *Herd) CalculateDiversity() float64 {
	if len(hd.horses) < 2 {
		hd.diversity = 0
		return 0
	}

	total := 0.0
	pairs := 0
	n := float64(hd.inst.Jobs)
	for i := 0; i < len(hd.horses); i++ {
		for j := i + 1; j < len(hd.horses); j++ {
			total += float64(hd.horses[i].solution.DistanceTo(hd.horses[j].solution)) / n
			pairs++
		}
	}
	hd.diversity = total / float64(pairs)
	return hd.diversity
}

// PerformGrazing запускает пастьбу у каждой особи.
func (hd *Herd) PerformGrazing(intensity float64) (int, error) {
	improved := 0
	for _, h := range hd.horses {
		ok, err := h.Graze(intensity)
		if err != nil {
			return improved, err
		}
		if ok {
			improved++
		}
	}
	if improved > 0 {
		hd.UpdateLeader()
		hd.log.Debug("пастьба улучшила особей", zap.Int("count", improved))
	}
	return improved, nil
}

// PerformRoaming: каждая особь с вероятностью roamingRate строит кандидата
// блужданием; кандидат принимается только при строгом улучшении.
func (hd *Herd) PerformRoaming(roamingRate, explorationRate float64) (int, error) {
	accepted := 0
	for _, h := range hd.horses {
		if hd.rng.Float64() >= roamingRate {
			continue
		}
		candidate, err := h.Roam(explorationRate)
		if err != nil {
			return accepted, err
		}
		if candidate.Makespan() < h.solution.Makespan() {
			h.SetSolution(candidate)
			accepted++
		}
	}
	if accepted > 0 {
		hd.UpdateLeader()
		hd.log.Debug("блуждание улучшило особей", zap.Int("count", accepted))
	}
	return accepted, nil
}

// PerformFollowing: каждая особь, кроме лидера, скрещивается с лидером;
// результат принимается только при строгом улучшении.
func (hd *Herd) PerformFollowing(followingRate float64) (int, error) {
	if hd.leader == nil {
		return 0, fmt.Errorf("%w: лидер не назначен", ErrState)
	}
	accepted := 0
	for _, h := range hd.horses {
		if h.leader {
			continue
		}
		candidate, err := h.FollowLeader(hd.leader, followingRate)
		if err != nil {
			return accepted, err
		}
		if candidate.Makespan() < h.solution.Makespan() {
			h.SetSolution(candidate)
			accepted++
		}
	}
	if accepted > 0 {
		hd.UpdateLeader()
		hd.log.Debug("следование улучшило особей", zap.Int("count", accepted))
	}
	return accepted, nil
}

// PerformMating проводит floor(size*matingRate/2) спариваний. Родители
// выбираются турниром (второй пересэмплируется до различия), потомок
// замещает слабейшую особь только при строгом улучшении её текущего решения.
func (hd *Herd) PerformMating(matingRate, crossoverRate float64) (int, error) {
	offspringCount := 0
	numMatings := int(float64(len(hd.horses)) * matingRate / 2)

	for i := 0; i < numMatings; i++ {
		parent1 := hd.TournamentSelection(3)
		parent2 := hd.TournamentSelection(3)
		for parent2 == parent1 && len(hd.horses) > 1 {
			parent2 = hd.TournamentSelection(3)
		}

		offspring, err := hd.horses[parent1].MateWith(hd.horses[parent2], crossoverRate)
		if err != nil {
			return offspringCount, err
		}

		weak := hd.SelectForReplacement(1)
		if len(weak) == 0 {
			continue
		}
		idx := weak[0]
		if offspring.Makespan() < hd.horses[idx].solution.Makespan() {
			hd.horses[idx].SetSolution(offspring)
			offspringCount++
		}
	}

	if offspringCount > 0 {
		hd.UpdateLeader()
		hd.log.Debug("спаривание дало улучшенных потомков", zap.Int("count", offspringCount))
	}
	return offspringCount, nil
}

// PerformMutation мутирует каждую особь и считает тех, чей makespan снизился.
func (hd *Herd) PerformMutation(mutationRate float64) (int, error) {
	improved := 0
	for _, h := range hd.horses {
		old := h.solution.Makespan()
		if err := h.Mutate(mutationRate); err != nil {
			return improved, err
		}
		if h.solution.Makespan() < old {
			improved++
		}
	}
	if improved > 0 {
		hd.UpdateLeader()
		hd.log.Debug("мутация улучшила особей", zap.Int("count", improved))
	}
	return improved, nil
}

// AgeHorses старит всех особей на одно поколение.
func (hd *Herd) AgeHorses() {
	for _, h := range hd.horses {
		h.IncreaseAge()
	}
}

// ReplaceWeakHorses заменяет floor(size*replacementRate) худших по личному
// рекорду особей свежими случайными. Нулевое количество — no-op.
func (hd *Herd) ReplaceWeakHorses(replacementRate float64) int {
	num := int(float64(len(hd.horses)) * replacementRate)
	if num == 0 {
		return 0
	}

	for _, idx := range hd.SelectForReplacement(num) {
		horse, err := NewHorse(hd.inst, hd.rng)
		if err != nil {
			// Инстанс уже валиден, отказ возможен только при nil rng
			panic(err)
		}
		hd.horses[idx] = horse
	}

	hd.UpdateLeader()
	hd.log.Debug("заменены слабые особи", zap.Int("count", num))
	return num
}

// RejuvenateStagnantHorses омолаживает и заново рандомизирует особей,
// достигших порога стагнации.
func (hd *Herd) RejuvenateStagnantHorses(maxStagnation int) int {
	count := 0
	for _, h := range hd.horses {
		if h.IsStagnant(maxStagnation) {
			h.Rejuvenate()
			h.InitializeRandom()
			count++
		}
	}
	if count > 0 {
		hd.UpdateLeader()
		hd.log.Debug("омоложены стагнирующие особи", zap.Int("count", count))
	}
	return count
}

// ImproveElite сортирует табун по убыванию приспособленности и применяет
// высокоинтенсивную пастьбу к top-k. Пастьба принимает только улучшающие
// движения, поэтому makespan элиты не растёт.
func (hd *Herd) ImproveElite(k int) (int, error) {
	hd.sortByFitness()
	improved := 0

	count := k
	if count > len(hd.horses) {
		count = len(hd.horses)
	}
	for i := 0; i < count; i++ {
		old := hd.horses[i].BestMakespan()
		if _, err := hd.horses[i].Graze(0.9); err != nil {
			return improved, err
		}
		if hd.horses[i].BestMakespan() < old {
			improved++
		}
	}

	if improved > 0 {
		hd.UpdateLeader()
		hd.log.Debug("улучшена элита", zap.Int("count", improved))
	}
	return improved, nil
}

// sortByFitness упорядочивает табун по убыванию текущей приспособленности.
func (hd *Herd) sortByFitness() {
	sort.SliceStable(hd.horses, func(i, j int) bool {
		return hd.horses[i].fitness > hd.horses[j].fitness
	})
}

// TournamentSelection выбирает size различных особей и возвращает индекс
// лучшей по личному рекорду; при равенстве побеждает первая выбранная.
func (hd *Herd) TournamentSelection(size int) int {
	if size > len(hd.horses) {
		size = len(hd.horses)
	}
	candidates := hd.rng.Sample(len(hd.horses), size)

	bestIdx := candidates[0]
	bestFitness := hd.horses[bestIdx].bestFitness
	for _, idx := range candidates[1:] {
		if hd.horses[idx].bestFitness > bestFitness {
			bestFitness = hd.horses[idx].bestFitness
			bestIdx = idx
		}
	}
	return bestIdx
}

// SelectForReplacement возвращает индексы k особей с наихудшим личным
// рекордом; равные по приспособленности упорядочены по индексу.
func (hd *Herd) SelectForReplacement(k int) []int {
	type pair struct {
		fitness float64
		idx     int
	}
	pairs := make([]pair, len(hd.horses))
	for i, h := range hd.horses {
		pairs[i] = pair{fitness: h.bestFitness, idx: i}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].fitness != pairs[j].fitness {
			return pairs[i].fitness < pairs[j].fitness
		}
		return pairs[i].idx < pairs[j].idx
	})

	if k > len(pairs) {
		k = len(pairs)
	}
	indices := make([]int, k)
	for i := 0; i < k; i++ {
		indices[i] = pairs[i].idx
	}
	return indices
}

// AverageFitness — средняя приспособленность личных рекордов.
func (hd *Herd) AverageFitness() float64 {
	if len(hd.horses) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range hd.horses {
		sum += h.bestFitness
	}
	return sum / float64(len(hd.horses))
}

// WorstFitness — наихудший личный рекорд в табуне.
func (hd *Herd) WorstFitness() float64 {
	if len(hd.horses) == 0 {
		return 0
	}
	worst := hd.horses[0].bestFitness
	for _, h := range hd.horses[1:] {
		if h.bestFitness < worst {
			worst = h.bestFitness
		}
	}
	return worst
}
