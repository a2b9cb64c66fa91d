// Package config loads run settings from a JSON file, then applies PURSUIT_*
// environment overrides. Command-line flags are applied by the binaries.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pursuit/layout"
	"pursuit/pathfind"
	"pursuit/sim"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the application configuration
type Config struct {
	Rows                int    `json:"rows"`
	Cols                int    `json:"cols"`
	Obstacles           int    `json:"obstacles"`
	Goals               int    `json:"goals"`
	Chasers             int    `json:"chasers"`
	Seed                int64  `json:"seed"`
	CycleDelayMS        int    `json:"cycle_delay_ms"`
	RendezvousTimeoutMS int    `json:"rendezvous_timeout_ms"`
	MaxCycles           int    `json:"max_cycles"`
	Algorithm           string `json:"algorithm"`
	LayoutFile          string `json:"layout_file"`
	OutputFile          string `json:"output_file"`
	HTTPAddr            string `json:"http_addr"`
	GRPCAddr            string `json:"grpc_addr"`
}

// Default returns the settings used when no file or override says otherwise
func Default() *Config {
	spec := layout.DefaultSpec()
	return &Config{
		Rows:                spec.Rows,
		Cols:                spec.Cols,
		Obstacles:           spec.Obstacles,
		Goals:               spec.Goals,
		Chasers:             spec.Chasers,
		CycleDelayMS:        1000,
		RendezvousTimeoutMS: 10000,
		Algorithm:           pathfind.BreadthFirst.String(),
		OutputFile:          "grid_output.txt",
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
	}
}

// LoadConfig loads the configuration from a file. A missing file yields the
// defaults. Environment overrides are applied either way.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	file, err := os.Open(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Config file not found at %s, using defaults", configPath)
	case err != nil:
		return nil, fmt.Errorf("open config file: %w", err)
	default:
		defer file.Close()
		decoder := json.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(config); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
		log.Printf("Configuration loaded from %s", configPath)
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from PURSUIT_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"PURSUIT_ROWS":                  &c.Rows,
		"PURSUIT_COLS":                  &c.Cols,
		"PURSUIT_OBSTACLES":             &c.Obstacles,
		"PURSUIT_GOALS":                 &c.Goals,
		"PURSUIT_CHASERS":               &c.Chasers,
		"PURSUIT_CYCLE_DELAY_MS":        &c.CycleDelayMS,
		"PURSUIT_RENDEZVOUS_TIMEOUT_MS": &c.RendezvousTimeoutMS,
		"PURSUIT_MAX_CYCLES":            &c.MaxCycles,
	}
	for name, field := range ints {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", name, v, ErrInvalidConfig)
		}
		*field = n
	}

	if v, ok := lookup("PURSUIT_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PURSUIT_SEED=%q: %w", v, ErrInvalidConfig)
		}
		c.Seed = n
	}

	strs := map[string]*string{
		"PURSUIT_ALGORITHM":   &c.Algorithm,
		"PURSUIT_LAYOUT_FILE": &c.LayoutFile,
		"PURSUIT_OUTPUT_FILE": &c.OutputFile,
		"PURSUIT_HTTP_ADDR":   &c.HTTPAddr,
		"PURSUIT_GRPC_ADDR":   &c.GRPCAddr,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok {
			*field = v
		}
	}
	return nil
}

// Validate checks the settings before a run is built from them
func (c *Config) Validate() error {
	if c.LayoutFile == "" {
		if err := c.LayoutSpec().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if _, err := pathfind.ParseStrategy(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch {
	case c.CycleDelayMS < 0:
		return fmt.Errorf("cycle_delay_ms %d: %w", c.CycleDelayMS, ErrInvalidConfig)
	case c.RendezvousTimeoutMS < 0:
		return fmt.Errorf("rendezvous_timeout_ms %d: %w", c.RendezvousTimeoutMS, ErrInvalidConfig)
	case c.RendezvousTimeoutMS > 0 && c.RendezvousTimeoutMS <= c.CycleDelayMS:
		return fmt.Errorf("rendezvous_timeout_ms %d must exceed cycle_delay_ms %d: %w",
			c.RendezvousTimeoutMS, c.CycleDelayMS, ErrInvalidConfig)
	case c.MaxCycles < 0:
		return fmt.Errorf("max_cycles %d: %w", c.MaxCycles, ErrInvalidConfig)
	}
	return nil
}

// LayoutSpec returns the random board description
func (c *Config) LayoutSpec() layout.Spec {
	return layout.Spec{
		Rows:      c.Rows,
		Cols:      c.Cols,
		Obstacles: c.Obstacles,
		Goals:     c.Goals,
		Chasers:   c.Chasers,
	}
}

// Sim converts the settings into a simulation config. Validate first.
func (c *Config) Sim(logger *log.Logger) sim.Config {
	strategy, _ := pathfind.ParseStrategy(c.Algorithm)
	return sim.Config{
		Strategy:          strategy,
		CycleDelay:        time.Duration(c.CycleDelayMS) * time.Millisecond,
		RendezvousTimeout: time.Duration(c.RendezvousTimeoutMS) * time.Millisecond,
		MaxCycles:         c.MaxCycles,
		Logger:            logger,
	}
}

// ResolveSeed returns the configured seed, or one taken from the clock when
// the seed is zero.
func (c *Config) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

// GetDefaultConfigPath returns the default path for the config file
func GetDefaultConfigPath() string {
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not determine executable path: %v", err)
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execPath), "config.json")
}

// SaveDefaultConfig creates a default config file if it doesn't exist
func SaveDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(Default()); err != nil {
		return err
	}
	log.Printf("Created default config file at %s", configPath)
	return nil
}
