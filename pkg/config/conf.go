package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the default config file name.
	FileName = "namedist.yaml"

	dirMode  = 0700
	fileMode = 0600

	firstLimitDefault  = 4000
	middleLimitDefault = 2520
	lastLimitDefault   = 10000
)

// Config represents the pipeline configuration.
type Config struct {
	SourceDir       string            `yaml:"source_dir"`
	IntermediateDir string            `yaml:"intermediate_dir"`
	OutputDir       string            `yaml:"output_dir"`
	Sentinels       []string          `yaml:"sentinels"`
	First           Dataset           `yaml:"first"`
	Middle          Dataset           `yaml:"middle"`
	Last            Dataset           `yaml:"last"`
	Variants        Variants          `yaml:"variants"`
	Sources         map[string]string `yaml:"sources,omitempty"`
}

// Dataset configures one pipeline instantiation. File names are relative
// to SourceDir, except NameMap which is relative to IntermediateDir.
type Dataset struct {
	Limit   int    `yaml:"limit"`
	Genders string `yaml:"genders,omitempty"`
	Races   string `yaml:"races"`
	NameMap string `yaml:"name_map,omitempty"`
}

// Variants configures the surname variant tool. Input is relative to
// SourceDir, Output to IntermediateDir.
type Variants struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		SourceDir:       "source_data",
		IntermediateDir: "intermediate",
		OutputDir:       "output",
		Sentinels:       []string{"", "NULL"},
		First: Dataset{
			Limit:   firstLimitDefault,
			Genders: "gender_data_national(1984-2023).csv",
			Races:   "firstnames.csv",
		},
		Middle: Dataset{
			Limit:   middleLimitDefault,
			Genders: "gender_data_national(1984-2023).csv",
			Races:   "middle_nameRaceProbs.csv",
		},
		Last: Dataset{
			Limit:   lastLimitDefault,
			Races:   "Names_2010Census.csv",
			NameMap: "name_format_map.csv",
		},
		Variants: Variants{
			Input:  "Surnames.txt",
			Output: "name_format_map.csv",
		},
	}
}

// Validate checks the config for missing or invalid values.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir required")
	}
	for name, d := range map[string]Dataset{"first": c.First, "middle": c.Middle, "last": c.Last} {
		if d.Limit <= 0 {
			return fmt.Errorf("%s: limit must be positive: %d", name, d.Limit)
		}
		if d.Races == "" {
			return fmt.Errorf("%s: races source required", name)
		}
	}
	if c.First.Genders == "" || c.Middle.Genders == "" {
		return errors.New("first and middle datasets require a genders source")
	}
	return nil
}

// SourcePath returns the path of a source file.
func (c *Config) SourcePath(name string) string {
	return filepath.Join(c.SourceDir, name)
}

// IntermediatePath returns the path of an intermediate file.
func (c *Config) IntermediatePath(name string) string {
	return filepath.Join(c.IntermediateDir, name)
}

// Save writes c to path.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ReadOrCreate reads the config at path or creates it with defaults.
func ReadOrCreate(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path required")
	}

	if dir := filepath.Dir(path); dir != "" {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, dirMode); err != nil {
				return nil, fmt.Errorf("failed to create dir %s: %w", dir, err)
			}
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Save(path, Default()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening config file %s: %w", path, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("error unmarshalling config file %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}
