package utils

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ojaswichopra/GGH/pkg/circuit"
)

// DefaultConfigFile is the configuration file looked up in the working directory
const DefaultConfigFile = ".atpg.yaml"

// Config holds the settings of a generator run
type Config struct {
	Netlist    string   `yaml:"netlist"`
	OutputFile string   `yaml:"output_file"`
	OutputNode string   `yaml:"output_node"`
	Inputs     []string `yaml:"inputs"`
	Workers    int      `yaml:"workers"`
	Verify     bool     `yaml:"verify"`
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() Config {
	return Config{
		Netlist:    "input.txt",
		OutputFile: "output.txt",
		OutputNode: "Z",
		Inputs:     []string{"A", "B", "C", "D"},
		Workers:    1,
	}
}

// LoadConfig reads a YAML configuration file over the defaults. A missing
// file is not an error when allowMissing is set.
func LoadConfig(filename string, allowMissing bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "failed to read config %s", filename)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", filename)
	}
	return cfg, cfg.Validate()
}

// WriteConfig writes cfg as YAML
func WriteConfig(filename string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return errors.Wrapf(os.WriteFile(filename, data, 0o644), "failed to write config %s", filename)
}

// Validate checks the settings for consistency
func (c Config) Validate() error {
	if c.OutputNode == "" {
		return errors.New("output_node must not be empty")
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	_, err := c.InputSet()
	return err
}

// InputSet builds the ordered primary input set
func (c Config) InputSet() (*circuit.InputSet, error) {
	s, err := circuit.NewInputSet(c.Inputs...)
	return s, errors.Wrap(err, "invalid inputs")
}
