package evolve

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Config stores the configuration of the evolutionary driver
type Config struct {
	Evolve EvolveConfig
	Genome GenomeConfig
}

type EvolveConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	Elitism              int     `ini:"elitism"`
	SurvivalThreshold    float64 `ini:"survival_threshold"`
	Seed                 uint64  `ini:"seed"`
}

type GenomeConfig struct {
	NumInputs         int     `ini:"num_inputs"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
}

func DefaultConfig(numInputs int) *Config {
	return &Config{
		Evolve: EvolveConfig{
			PopSize:           50,
			FitnessThreshold:  100,
			Elitism:           2,
			SurvivalThreshold: 0.2,
			Seed:              1,
		},
		Genome: GenomeConfig{
			NumInputs:         numInputs,
			WeightInitStdev:   1,
			WeightMutateRate:  0.8,
			WeightMutatePower: 0.5,
		},
	}
}

func (c *Config) Validate() error {
	if c.Evolve.PopSize <= 0 {
		return fmt.Errorf("pop_size should be positive, got %d", c.Evolve.PopSize)
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("num_inputs should be positive, got %d", c.Genome.NumInputs)
	}
	if c.Evolve.SurvivalThreshold <= 0 || c.Evolve.SurvivalThreshold > 1 {
		return fmt.Errorf("survival_threshold should be in (0, 1], got %f", c.Evolve.SurvivalThreshold)
	}
	if c.Evolve.Elitism < 0 || c.Evolve.Elitism > c.Evolve.PopSize {
		return fmt.Errorf("elitism should be in [0, pop_size], got %d", c.Evolve.Elitism)
	}
	return nil
}

// LoadConfig reads the [Evolve] and [Genome] sections of an INI file on top
// of the defaults. A missing file yields the defaults.
func LoadConfig(filePath string, numInputs int) (*Config, error) {
	config := DefaultConfig(numInputs)
	if filePath == "" {
		return config, nil
	}
	if _, err := os.Stat(filePath); errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	if err := cfg.Section("Evolve").MapTo(&config.Evolve); err != nil {
		return nil, fmt.Errorf("failed to map [Evolve] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", filePath, err)
	}
	return config, nil
}
