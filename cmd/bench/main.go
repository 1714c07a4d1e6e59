package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"horseHerd/internal/bench"
	"horseHerd/internal/hhoa"
	"horseHerd/internal/opt"
	"horseHerd/internal/rng"
)

// Фабрики вариантов

func newVariantFactory(cfg hhoa.Config) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		runner, _ := hhoa.NewRunner(cfg, rng.New(seed))
		return runner
	}
}

func main() {
	// CLI флаги для настройки вариантов алгоритма и политики запуска
	var (
		out          = flag.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
		pairs        = flag.String("pairs", "20x5,50x10,100x20", "конфигурации: количество работ Х количество станков (через запятую)")
		variants     = flag.String("variants", "default,noadapt,intense", "список вариантов: default, noadapt, intense (через запятую)")
		runs         = flag.Int("runs", 30, "количество запусков каждого варианта (с разными сидами)")
		baseSeed     = flag.Int64("seed", 1000, "базовый сид для запусков алгоритма")
		instanceSeed = flag.Int64("instance_seed", 777, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
		perRunTO     = flag.Duration("per_run_timeout", 0, "таймаут одного запуска; 0 — без ограничения")

		pop   = flag.Int("pop", 30, "размер популяции")
		iter  = flag.Int("iter", 200, "количество поколений")
		graze = flag.Float64("graze", 0.5, "интенсивность пастьбы")
		mut   = flag.Float64("mut", 0.1, "вероятность мутации")
	)
	flag.Parse()

	ctx := context.Background()

	cases, err := parsePairs(*pairs, *instanceSeed)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт:", err)
		os.Exit(2)
	}

	baseCfg := hhoa.DefaultConfig()
	baseCfg.PopulationSize = *pop
	baseCfg.MaxIterations = *iter
	baseCfg.GrazingIntensity = *graze
	baseCfg.MutationRate = *mut
	if err := baseCfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Конфликт в конфигурации алгоритма:", err)
		os.Exit(2)
	}

	noadaptCfg := baseCfg
	noadaptCfg.AdaptiveParameters = false

	intenseCfg := baseCfg
	intenseCfg.GrazingIntensity = 0.9
	intenseCfg.EliteCount = 5
	intenseCfg.EliteImprovementFreq = 5

	available := map[string]bench.Variant{
		"default": {Name: "default", Factory: newVariantFactory(baseCfg)},
		"noadapt": {Name: "noadapt", Factory: newVariantFactory(noadaptCfg)},
		"intense": {Name: "intense", Factory: newVariantFactory(intenseCfg)},
	}

	var selected []bench.Variant
	for _, v := range splitCSV(*variants) {
		vr, ok := available[v]
		if !ok {
			fmt.Fprintf(os.Stderr, "Вариант не предоставлен в программе %q; доступные: %v\n", v, keys(available))
			os.Exit(2)
		}
		selected = append(selected, vr)
	}

	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
	}

	var records []bench.Record
	for _, c := range cases {
		for _, v := range selected {
			fmt.Printf("Запущен вариант %s; %d работ %d машин (общее кол-во запусков=%d)...\n", v.Name, c.Jobs, c.Machines, runner.Runs)

			rec, err := runner.RunCase(ctx, c, v)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Ошибка:", err)
				os.Exit(1)
			}
			records = append(records, rec)

			fmt.Printf("  Значение целевой функции: лучшее=%d среднее=%.2f стандартное отклонение=%.2f | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка при записи в CSV:", err)
		os.Exit(1)
	}
	fmt.Println("Saved:", *out)
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x10", p)
		}
		jobs, err := atoiStrict(jm[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := atoiStrict(jm[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)

		cases = append(cases, bench.Case{
			Jobs:         jobs,
			Machines:     machines,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func keys(m map[string]bench.Variant) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
