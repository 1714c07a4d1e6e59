package hhoa

import (
	"horseHerd/internal/flowshop"
	"horseHerd/internal/rng"
)

func mustSolution(seq []int, inst *flowshop.Instance) *flowshop.Solution {
	s, err := flowshop.NewSolutionFrom(seq, inst)
	if err != nil {
		panic(err)
	}
	return s
}

// orderCrossover — порядковый кроссовер (OX): сегмент между двумя случайными
// точками копируется из первого родителя, остальные позиции заполняются
// работами второго родителя в его порядке. Оставшиеся пропуски добиваются
// неиспользованными работами, так что результат всегда перестановка.
func orderCrossover(parent1, parent2 *flowshop.Solution, r *rng.Source) *flowshop.Solution {
	size := parent1.Jobs()
	p1 := parent1.Sequence()
	p2 := parent2.Sequence()

	point1 := r.Int(0, size-1)
	point2 := r.Int(0, size-1)
	if point1 > point2 {
		point1, point2 = point2, point1
	}

	offspring := make([]int, size)
	for i := range offspring {
		offspring[i] = -1
	}
	used := make([]bool, size)

	// Сегмент [point1, point2] из первого родителя
	for i := point1; i <= point2; i++ {
		job := p1[i]
		if job >= 0 && job < size {
			offspring[i] = job
			used[job] = true
		}
	}

	// Остальные позиции — работами второго родителя в его порядке
	pos := 0
	for pos < size && offspring[pos] != -1 {
		pos++
	}
	for i := 0; i < size && pos < size; i++ {
		job := p2[i]
		if job < 0 || job >= size || used[job] {
			continue
		}
		offspring[pos] = job
		used[job] = true
		pos++
		for pos < size && offspring[pos] != -1 {
			pos++
		}
	}

	// Страховка от некорректных родителей: незанятые работы в первые пропуски
	for job := 0; job < size; job++ {
		if used[job] {
			continue
		}
		for i := 0; i < size; i++ {
			if offspring[i] == -1 {
				offspring[i] = job
				used[job] = true
				break
			}
		}
	}

	return mustSolution(offspring, parent1.Instance())
}

// positionCrossover — упрощённый позиционный кроссовер: копия первого родителя,
// в которой несколько случайных позиций согласуются со вторым родителем через
// обмены. Намеренно не классический PMX.
func positionCrossover(parent1, parent2 *flowshop.Solution, r *rng.Source) *flowshop.Solution {
	size := parent1.Jobs()
	offspring := parent1.Sequence()
	if size < 2 {
		return mustSolution(offspring, parent1.Instance())
	}
	p2 := parent2.Sequence()

	maxSwaps := size / 2
	if maxSwaps > 3 {
		maxSwaps = 3
	}
	numSwaps := r.Int(1, maxSwaps)

	for s := 0; s < numSwaps; s++ {
		pos1 := r.Int(0, size-1)
		pos2 := r.Int(0, size-1)

		jobFromParent2 := p2[pos1]
		for j := 0; j < size; j++ {
			if offspring[j] == jobFromParent2 {
				offspring[j], offspring[pos2] = offspring[pos2], offspring[j]
				break
			}
		}
	}

	return mustSolution(offspring, parent1.Instance())
}
