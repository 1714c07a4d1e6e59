package hhoa

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"horseHerd/internal/flowshop"
)

// Statistics — накопительная статистика одного запуска оптимизатора.
// Истории пополняются ровно одной записью на поколение.
type Statistics struct {
	IterationsExecuted int
	TotalImprovements  int
	LeaderChanges      int
	Rejuvenations      int
	Replacements       int
	ExecutionTime      time.Duration

	BestMakespanHistory   []int
	DiversityHistory      []float64
	AverageFitnessHistory []float64
}

// Clone возвращает снимок статистики для передачи в колбэки.
func (s *Statistics) Clone() *Statistics {
	c := *s
	c.BestMakespanHistory = append([]int(nil), s.BestMakespanHistory...)
	c.DiversityHistory = append([]float64(nil), s.DiversityHistory...)
	c.AverageFitnessHistory = append([]float64(nil), s.AverageFitnessHistory...)
	return &c
}

// WriteCSV выгружает истории по поколениям.
func (s *Statistics) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"Iteration", "BestMakespan", "Diversity", "AverageFitness"}); err != nil {
		return err
	}
	for i, best := range s.BestMakespanHistory {
		diversity := 0.0
		if i < len(s.DiversityHistory) {
			diversity = s.DiversityHistory[i]
		}
		avg := 0.0
		if i < len(s.AverageFitnessHistory) {
			avg = s.AverageFitnessHistory[i]
		}
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(best),
			strconv.FormatFloat(diversity, 'f', 6, 64),
			strconv.FormatFloat(avg, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// SaveCSV записывает истории в файл.
func (s *Statistics) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.WriteCSV(f)
}

// WriteReport выводит текстовый отчёт о запуске: экземпляр, лучший makespan
// и последовательность работ в 1-базной нотации.
func WriteReport(out io.Writer, inst *flowshop.Instance, best *flowshop.Solution, stats *Statistics) error {
	if _, err := fmt.Fprintf(out, "HHOA Results for %s\n", inst.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Problem Size: %d jobs, %d machines\n", inst.Jobs, inst.Machines); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Best Makespan: %d\n", best.Makespan()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Iterations: %d\n", stats.IterationsExecuted); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Execution Time: %.2f ms\n\n", float64(stats.ExecutionTime.Microseconds())/1000.0); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Best Solution Sequence:\n%s\n", best.String())
	return err
}

// SaveReport записывает текстовый отчёт в файл.
func SaveReport(path string, inst *flowshop.Instance, best *flowshop.Solution, stats *Statistics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteReport(f, inst, best, stats)
}
