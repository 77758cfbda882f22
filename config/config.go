package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied for every setting left empty in the config file.
const (
	DefaultInputFile   = "input.csv"
	DefaultOutputFile  = "dataset.csv"
	DefaultReposDir    = "cloned_repos"
	DefaultMaxFileSize = 100_000
	DefaultMinLines    = 50
	DefaultWorkers     = 1
)

// DefaultExtensions is the recognized source-code extension set.
//
//nolint:gochecknoglobals // shared default value
var DefaultExtensions = []string{".java", ".py", ".js", ".c", ".cpp", ".h", ".go"}

// Config is the top-level configuration for vulnpairs.
type Config struct {
	InputFile   string   `yaml:"input_file"`    // CSV with cve_id, repo_url, commit_hash columns
	OutputFile  string   `yaml:"output_file"`   // CSV the labeled records are written to
	ReposDir    string   `yaml:"repos_dir"`     // Cache directory for cloned repositories
	MaxFileSize int64    `yaml:"max_file_size"` // Blobs larger than this are skipped (bytes)
	MinLines    int      `yaml:"min_lines"`     // Files shorter than this are skipped
	Extensions  []string `yaml:"extensions"`    // Recognized source-code extensions
	Workers     int      `yaml:"workers"`       // Input rows processed concurrently
}

// Default returns a configuration matching the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a configuration file, filling in defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	applyDefaults(&cfg)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".vulnpairs.yaml",
		".vulnpairs.yml",
		"vulnpairs.yaml",
		"vulnpairs.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// RecognizesExtension reports whether the file's extension is in the
// recognized source-code set. Matching is case-insensitive.
func (c *Config) RecognizesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, allowed := range c.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// applyDefaults fills every zero-valued setting with its default.
func applyDefaults(cfg *Config) {
	if cfg.InputFile == "" {
		cfg.InputFile = DefaultInputFile
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = DefaultOutputFile
	}
	if cfg.ReposDir == "" {
		cfg.ReposDir = DefaultReposDir
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.MinLines == 0 {
		cfg.MinLines = DefaultMinLines
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
}

// validate checks for values that cannot possibly work.
func validate(cfg *Config) error {
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", cfg.MaxFileSize)
	}
	if cfg.MinLines < 0 {
		return fmt.Errorf("min_lines must not be negative, got %d", cfg.MinLines)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	for i, ext := range cfg.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extensions[%d] must start with a dot, got %q", i, ext)
		}
	}
	return nil
}
