// Package config loads the lstmtrace configuration file and builds the
// immutable per-run configuration shared by the runner and the comparison.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/lstmtrace/internal/cell"
	"github.com/samcharles93/lstmtrace/internal/compare"
	"github.com/samcharles93/lstmtrace/internal/fixedpoint"
)

// Environment variables read after the optional .env file is loaded.
const (
	EnvConfig      = "LSTMTRACE_CONFIG"
	EnvStoreDriver = "LSTMTRACE_STORE_DRIVER"
	EnvStoreDSN    = "LSTMTRACE_STORE_DSN"
	EnvNTPServer   = "LSTMTRACE_NTP_SERVER"
)

// File mirrors config.yaml. Pointer fields distinguish "not set" from zero.
type File struct {
	Weights   map[string]float64 `yaml:"weights"`
	Scale     *float64           `yaml:"scale"`
	FracBits  *int               `yaml:"frac_bits"`
	Tolerance *compare.Tolerance `yaml:"tolerance"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	Store         Store  `yaml:"store"`
	NTPServer     string `yaml:"ntp_server"`
	Workers       *int64 `yaml:"workers"`
}

// Store selects the run database.
type Store struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Run is the configuration of one comparison. It is built once and passed
// by value.
type Run struct {
	Weights   cell.Weights
	Scale     fixedpoint.Scale
	Tolerance compare.Tolerance
}

// DefaultRun targets the reference hardware: default weights, Q6.11, and no
// tolerance gate.
func DefaultRun() Run {
	return Run{
		Weights: cell.DefaultWeights(),
		Scale:   fixedpoint.Q6_11,
	}
}

// Validate checks the scale and tolerance.
func (r Run) Validate() error {
	if err := r.Scale.Validate(); err != nil {
		return err
	}
	if r.Tolerance.MaxAbsC < 0 || r.Tolerance.MaxAbsH < 0 {
		return fmt.Errorf("tolerance must not be negative: %+v", r.Tolerance)
	}
	return nil
}

// Path returns the default config file location.
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lstmtrace", "config.yaml")
}

// Load reads a config file. A missing file yields a zero File.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return File{}, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return f, nil
}

// Run layers the file's settings over DefaultRun.
func (f File) Run() (Run, error) {
	r := DefaultRun()
	w, err := r.Weights.Override(f.Weights)
	if err != nil {
		return Run{}, fmt.Errorf("config weights: %w", err)
	}
	r.Weights = w

	switch {
	case f.Scale != nil && f.FracBits != nil:
		return Run{}, errors.New("config: scale and frac_bits are mutually exclusive")
	case f.Scale != nil:
		r.Scale = fixedpoint.Scale(*f.Scale)
	case f.FracBits != nil:
		s, err := fixedpoint.FromFracBits(*f.FracBits)
		if err != nil {
			return Run{}, err
		}
		r.Scale = s
	}
	if f.Tolerance != nil {
		r.Tolerance = *f.Tolerance
	}
	if err := r.Validate(); err != nil {
		return Run{}, err
	}
	return r, nil
}

// LoadEnv loads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Resolve overrides the store and NTP settings with any values set in the
// environment.
func (f File) Resolve() File {
	if v := os.Getenv(EnvStoreDriver); v != "" {
		f.Store.Driver = v
	}
	if v := os.Getenv(EnvStoreDSN); v != "" {
		f.Store.DSN = v
	}
	if v := os.Getenv(EnvNTPServer); v != "" {
		f.NTPServer = v
	}
	return f
}
