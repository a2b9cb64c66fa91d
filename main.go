package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/akamensky/argparse"

	"pursuit/config"
	"pursuit/render"
	"pursuit/sim"
)

func main() {
	parser := argparse.NewParser("pursuit", "Seeker and chasers racing over a grid, one goroutine per mover")
	flags := config.RegisterFlags(parser, false)
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := run(ctx, cfg, os.Stdout, *flags.Clear)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
	log.Printf("Simulation finished after %d cycles in %v", report.Cycles, report.Duration)
}

// run plays one simulation, rendering every cycle to out and to the output
// file when one is configured.
func run(ctx context.Context, cfg *config.Config, out io.Writer, clearScreen bool) (sim.Report, error) {
	g, seed, err := cfg.Board()
	if err != nil {
		return sim.Report{}, err
	}
	if seed != 0 {
		log.Printf("Board placed with seed %d", seed)
	}

	s, err := sim.New(g, cfg.Sim(log.Default()))
	if err != nil {
		return sim.Report{}, err
	}

	renderers := []render.Renderer{render.Terminal{W: out, Clear: clearScreen}}
	if cfg.OutputFile != "" {
		file, err := render.NewFileRenderer(cfg.OutputFile)
		if err != nil {
			return sim.Report{}, err
		}
		defer file.Close()
		renderers = append(renderers, file)
	}

	events := s.Subscribe()
	done := make(chan error, 1)
	go func() {
		var renderErr error
		for ev := range events {
			for _, r := range renderers {
				if err := r.Render(ev); err != nil && renderErr == nil {
					renderErr = err
				}
			}
		}
		done <- renderErr
	}()

	report, runErr := s.Run(ctx)
	renderErr := <-done
	if runErr != nil {
		return report, runErr
	}
	if renderErr != nil {
		return report, fmt.Errorf("render: %w", renderErr)
	}
	if report.Outcome == sim.None {
		return report, errors.New("simulation ended without an outcome")
	}
	fmt.Fprintln(out, report.Outcome.Announcement())
	return report, nil
}
