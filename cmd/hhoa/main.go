package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"horseHerd/internal/flowshop"
	"horseHerd/internal/hhoa"
	"horseHerd/internal/rng"
)

var (
	flagFile       string
	flagConfig     string
	flagJobs       int
	flagMachines   int
	flagMinTime    int
	flagMaxTime    int
	flagPopulation int
	flagIterations int
	flagSeed       int64
	flagTarget     int
	flagOut        string
	flagStats      string
	flagSaveInst   string
	flagVerbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "hhoa",
		Short:         "Оптимизация перестановочного flow-shop расписания алгоритмом табуна лошадей",
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVarP(&flagFile, "file", "f", "", "путь к файлу экземпляра задачи")
	root.Flags().StringVarP(&flagConfig, "config", "c", "", "путь к YAML-файлу с параметрами алгоритма")
	root.Flags().IntVarP(&flagJobs, "jobs", "j", 0, "количество работ (для случайного экземпляра)")
	root.Flags().IntVarP(&flagMachines, "machines", "m", 0, "количество машин (для случайного экземпляра)")
	root.Flags().IntVar(&flagMinTime, "min-time", 1, "минимальное время обработки")
	root.Flags().IntVar(&flagMaxTime, "max-time", 100, "максимальное время обработки")
	root.Flags().IntVarP(&flagPopulation, "population", "p", 0, "размер популяции (0 — из конфигурации)")
	root.Flags().IntVarP(&flagIterations, "iterations", "i", 0, "количество итераций (0 — из конфигурации)")
	root.Flags().Int64VarP(&flagSeed, "seed", "s", 0, "сид генератора случайных чисел (0 — по времени)")
	root.Flags().IntVar(&flagTarget, "target", 0, "целевой makespan: поиск до достижения (0 — обычный запуск)")
	root.Flags().StringVarP(&flagOut, "out", "o", "", "путь к файлу с результатами")
	root.Flags().StringVar(&flagStats, "stats", "", "путь к CSV-файлу со статистикой по поколениям")
	root.Flags().StringVar(&flagSaveInst, "save-instance", "", "сохранить использованный экземпляр задачи в файл")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "подробное логирование")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := zap.NewNop()
	if flagVerbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck
		logger = l
	}

	cfg := hhoa.DefaultConfig()
	if flagConfig != "" {
		c, err := hhoa.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg = c
	}
	if flagPopulation > 0 {
		cfg.PopulationSize = flagPopulation
	}
	if flagIterations > 0 {
		cfg.MaxIterations = flagIterations
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rng.New(seed)

	inst, err := buildInstance(r)
	if err != nil {
		return err
	}

	fmt.Printf("Экземпляр: %s (%d работ, %d машин)\n", inst.Name, inst.Jobs, inst.Machines)
	fmt.Printf("Популяция: %d, итераций: %d, сид: %d\n\n", cfg.PopulationSize, cfg.MaxIterations, seed)

	solver, err := hhoa.New(inst, cfg, r, hhoa.WithLogger(logger))
	if err != nil {
		return err
	}
	solver.SetIterationCallback(func(iteration int, best *flowshop.Solution, stats *hhoa.Statistics) {
		if iteration%100 == 0 {
			fmt.Printf("Итерация %d — лучший makespan: %d, улучшений: %d\n",
				iteration, best.Makespan(), stats.TotalImprovements)
		}
	})

	ctx := context.Background()
	var best *flowshop.Solution
	if flagTarget > 0 {
		best, err = solver.OptimizeToTarget(ctx, flagTarget, cfg.MaxIterations)
	} else {
		best, err = solver.Optimize(ctx)
	}
	if err != nil {
		return err
	}

	stats := solver.Statistics()
	fmt.Printf("\nЛучший makespan: %d\n", best.Makespan())
	fmt.Printf("Последовательность: %s\n", best.String())
	fmt.Printf("Итераций: %d, улучшений: %d, смен лидера: %d, замен: %d, омоложений: %d\n",
		stats.IterationsExecuted, stats.TotalImprovements, stats.LeaderChanges,
		stats.Replacements, stats.Rejuvenations)
	fmt.Printf("Время: %.2f ms, остановка: %s\n",
		float64(stats.ExecutionTime.Microseconds())/1000.0, solver.TerminationReason())

	if flagOut != "" {
		if err := hhoa.SaveReport(flagOut, inst, best, stats); err != nil {
			return fmt.Errorf("ошибка при записи результатов: %w", err)
		}
		fmt.Println("Результаты сохранены:", flagOut)
	}
	if flagStats != "" {
		if err := stats.SaveCSV(flagStats); err != nil {
			return fmt.Errorf("ошибка при записи статистики: %w", err)
		}
		fmt.Println("Статистика сохранена:", flagStats)
	}
	if flagSaveInst != "" {
		if err := inst.SaveInstance(flagSaveInst); err != nil {
			return fmt.Errorf("ошибка при записи экземпляра: %w", err)
		}
		fmt.Println("Экземпляр сохранён:", flagSaveInst)
	}
	return nil
}

func buildInstance(r *rng.Source) (*flowshop.Instance, error) {
	if flagFile != "" {
		return flowshop.LoadInstance(flagFile)
	}
	if flagJobs > 0 && flagMachines > 0 {
		return flowshop.RandomInstance(flagJobs, flagMachines, flagMinTime, flagMaxTime, r), nil
	}
	return builtinInstance()
}

// builtinInstance — встроенный тестовый экземпляр 10x10.
func builtinInstance() (*flowshop.Instance, error) {
	procTimes := []int{
		54, 83, 15, 71, 77, 36, 53, 38, 27, 87,
		79, 3, 11, 99, 56, 70, 99, 60, 5, 56,
		16, 89, 49, 15, 89, 45, 60, 23, 57, 64,
		58, 90, 78, 99, 96, 33, 75, 98, 25, 43,
		35, 9, 28, 25, 84, 52, 98, 80, 89, 69,
		76, 63, 84, 52, 44, 6, 69, 48, 45, 11,
		28, 35, 95, 92, 35, 94, 91, 21, 66, 88,
		9, 92, 35, 91, 52, 42, 99, 78, 59, 83,
		74, 60, 88, 32, 17, 18, 85, 36, 43, 96,
		77, 32, 38, 99, 25, 69, 79, 60, 77, 94,
	}
	return flowshop.NewInstance("TestInstance_10x10", 10, 10, procTimes)
}
