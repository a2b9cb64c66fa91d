package config

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/akamensky/argparse"

	"pursuit/grid"
	"pursuit/layout"
)

// Flags are the command-line overrides shared by the binaries. Unset flags
// keep the value from the config file or environment.
type Flags struct {
	Config    *string
	Layout    *string
	Seed      *int
	Delay     *int
	MaxCycles *int
	Algorithm *string
	Output    *string
	Clear     *bool

	// only registered for the server
	HTTP *string
	GRPC *string
}

// RegisterFlags adds the run options to parser. withServer adds the listen
// addresses.
func RegisterFlags(parser *argparse.Parser, withServer bool) *Flags {
	f := &Flags{
		Config:    parser.String("c", "config", &argparse.Options{Help: "Path to the JSON config file"}),
		Layout:    parser.String("l", "layout", &argparse.Options{Help: "Board file to load instead of a random board"}),
		Seed:      parser.Int("s", "seed", &argparse.Options{Help: "Random seed for board placement (0 uses the clock)"}),
		Delay:     parser.Int("d", "delay", &argparse.Options{Default: -1, Help: "Pause between cycles in milliseconds"}),
		MaxCycles: parser.Int("m", "max-cycles", &argparse.Options{Default: -1, Help: "Stop after this many cycles (0 for no limit)"}),
		Algorithm: parser.Selector("a", "algorithm", []string{"bfs", "astar"}, &argparse.Options{Help: "Path search: bfs or astar"}),
		Output:    parser.String("o", "output", &argparse.Options{Help: "File rewritten with the board every cycle"}),
		Clear:     parser.Flag("C", "clear", &argparse.Options{Help: "Clear the terminal before each board"}),
	}
	if withServer {
		f.HTTP = parser.String("w", "http", &argparse.Options{Help: "HTTP listen address"})
		f.GRPC = parser.String("g", "grpc", &argparse.Options{Help: "gRPC listen address"})
	}
	return f
}

// Load reads the config file named by the flags and applies the flags on top.
// Without a --config path the default file next to the executable is used,
// created with default values on first start.
func (f *Flags) Load() (*Config, error) {
	path := *f.Config
	if path == "" {
		path = GetDefaultConfigPath()
		if err := SaveDefaultConfig(path); err != nil {
			log.Printf("Warning: Could not create default config file: %v", err)
		}
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	f.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply copies every set flag into cfg
func (f *Flags) Apply(cfg *Config) {
	if *f.Layout != "" {
		cfg.LayoutFile = *f.Layout
	}
	if *f.Seed != 0 {
		cfg.Seed = int64(*f.Seed)
	}
	if *f.Delay >= 0 {
		cfg.CycleDelayMS = *f.Delay
	}
	if *f.MaxCycles >= 0 {
		cfg.MaxCycles = *f.MaxCycles
	}
	if *f.Algorithm != "" {
		cfg.Algorithm = *f.Algorithm
	}
	if *f.Output != "" {
		cfg.OutputFile = *f.Output
	}
	if f.HTTP != nil && *f.HTTP != "" {
		cfg.HTTPAddr = *f.HTTP
	}
	if f.GRPC != nil && *f.GRPC != "" {
		cfg.GRPCAddr = *f.GRPC
	}
}

// Board builds the starting board: the layout file when one is set, else a
// random board from the resolved seed.
func (c *Config) Board() (*grid.Grid, int64, error) {
	if c.LayoutFile != "" {
		g, err := layout.Load(c.LayoutFile)
		return g, 0, err
	}
	seed := c.ResolveSeed()
	g, err := layout.Random(rand.New(rand.NewSource(seed)), c.LayoutSpec())
	if err != nil {
		return nil, seed, fmt.Errorf("random board: %w", err)
	}
	return g, seed, nil
}
