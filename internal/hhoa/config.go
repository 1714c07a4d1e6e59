package hhoa

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	PopulationSize       int     `yaml:"population_size"`
	MaxIterations        int     `yaml:"max_iterations"`
	GrazingIntensity     float64 `yaml:"grazing_intensity"`
	RoamingRate          float64 `yaml:"roaming_rate"`
	ExplorationRate      float64 `yaml:"exploration_rate"`
	FollowingRate        float64 `yaml:"following_rate"`
	MatingRate           float64 `yaml:"mating_rate"`
	CrossoverRate        float64 `yaml:"crossover_rate"`
	MutationRate         float64 `yaml:"mutation_rate"`
	ReplacementRate      float64 `yaml:"replacement_rate"`
	MaxStagnation        int     `yaml:"max_stagnation"`
	EliteImprovementFreq int     `yaml:"elite_improvement_freq"`
	EliteCount           int     `yaml:"elite_count"`
	DiversityThreshold   float64 `yaml:"diversity_threshold"`
	AdaptiveParameters   bool    `yaml:"adaptive_parameters"`
	TerminationPatience  int     `yaml:"termination_patience"`

	// RandomRatio — доля особей со случайной инициализацией,
	// остальные инициализируются жадной эвристикой.
	RandomRatio float64 `yaml:"random_ratio"`
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:       30,
		MaxIterations:        1000,
		GrazingIntensity:     0.5,
		RoamingRate:          0.3,
		ExplorationRate:      0.3,
		FollowingRate:        0.7,
		MatingRate:           0.4,
		CrossoverRate:        0.8,
		MutationRate:         0.1,
		ReplacementRate:      0.1,
		MaxStagnation:        20,
		EliteImprovementFreq: 10,
		EliteCount:           3,
		DiversityThreshold:   0.01,
		AdaptiveParameters:   true,
		TerminationPatience:  100,
		RandomRatio:          0.8,
	}
}

func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf(
			"%w: размер популяции должен быть > 0 (получено %d)",
			ErrConfiguration, c.PopulationSize,
		)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf(
			"%w: количество итераций должно быть > 0 (получено %d)",
			ErrConfiguration, c.MaxIterations,
		)
	}
	if c.GrazingIntensity <= 0 || c.GrazingIntensity > 1 {
		return fmt.Errorf(
			"%w: интенсивность пастьбы должна быть в диапазоне (0,1] (получено %f)",
			ErrConfiguration, c.GrazingIntensity,
		)
	}
	rates := []struct {
		name  string
		value float64
	}{
		{"вероятность блуждания", c.RoamingRate},
		{"коэффициент исследования", c.ExplorationRate},
		{"вероятность следования за лидером", c.FollowingRate},
		{"вероятность спаривания", c.MatingRate},
		{"вероятность кроссовера", c.CrossoverRate},
		{"вероятность мутации", c.MutationRate},
		{"доля замещаемых особей", c.ReplacementRate},
		{"доля случайных особей", c.RandomRatio},
	}
	for _, r := range rates {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf(
				"%w: %s должна быть в диапазоне [0,1] (получено %f)",
				ErrConfiguration, r.name, r.value,
			)
		}
	}
	if c.MaxStagnation <= 0 {
		return fmt.Errorf(
			"%w: порог стагнации должен быть > 0 (получено %d)",
			ErrConfiguration, c.MaxStagnation,
		)
	}
	if c.EliteImprovementFreq <= 0 {
		return fmt.Errorf(
			"%w: частота улучшения элиты должна быть > 0 (получено %d)",
			ErrConfiguration, c.EliteImprovementFreq,
		)
	}
	if c.EliteCount < 0 {
		return fmt.Errorf(
			"%w: размер элиты должен быть >= 0 (получено %d)",
			ErrConfiguration, c.EliteCount,
		)
	}
	if c.DiversityThreshold < 0 {
		return fmt.Errorf(
			"%w: порог разнообразия должен быть >= 0 (получено %f)",
			ErrConfiguration, c.DiversityThreshold,
		)
	}
	if c.TerminationPatience <= 0 {
		return fmt.Errorf(
			"%w: терпение до остановки должно быть > 0 (получено %d)",
			ErrConfiguration, c.TerminationPatience,
		)
	}
	return nil
}

// LoadConfig читает YAML-файл поверх конфигурации по умолчанию:
// незаданные поля сохраняют значения DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
