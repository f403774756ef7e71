package manager

import (
	"fmt"
	"os"

	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/analysis"
	"github.com/atlas-outreach-data-tools/atlas-outreach-data-tools-framework/compression"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Job       JobConfig         `yaml:"job"`
	Processes map[string]Inputs `yaml:"processes"`
}

type JobConfig struct {
	Analysis        string  `yaml:"analysis"`
	Fraction        float64 `yaml:"fraction"`
	MaxEvents       int     `yaml:"max_events"`
	OutputDirectory string  `yaml:"output_directory"`
	Workers         int     `yaml:"workers"`
	Parallel        bool    `yaml:"parallel"`
	Codec           string  `yaml:"codec"`
}

// Inputs accepts a single glob or a list of them
type Inputs []string

func (in *Inputs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*in = Inputs{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*in = list
		return nil
	default:
		return fmt.Errorf("line %d: inputs must be a path or a list of paths", node.Line)
	}
}

func DefaultConfig() Config {
	return Config{
		Job: JobConfig{
			Fraction:        1,
			MaxEvents:       analysis.DefaultMaxEvents,
			OutputDirectory: "results/",
			Workers:         1,
			Codec:           "lz4",
		},
		Processes: map[string]Inputs{},
	}
}

// Decode reads data over the defaults without validating, so callers can apply overrides first
func Decode(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse config: %s", err.Error())
	}
	return cfg, nil
}

// Parse decodes data over the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg, err := Decode(data)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ReadConfig decodes the file at path without validating it
func ReadConfig(path string) (Config, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return DefaultConfig(), fmt.Errorf("unable to read config %s: %s", path, readErr.Error())
	}

	cfg, err := Decode(data)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Job.Fraction < 0 || c.Job.Fraction > 1 {
		return fmt.Errorf("job.fraction %f out of [0, 1]", c.Job.Fraction)
	}
	if c.Job.MaxEvents < 0 {
		return fmt.Errorf("job.max_events must not be negative")
	}
	if c.Job.Workers < 0 {
		return fmt.Errorf("job.workers must not be negative")
	}
	if _, err := compression.ParseCodec(c.Job.Codec); err != nil {
		return err
	}
	return nil
}
