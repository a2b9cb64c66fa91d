package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akamensky/argparse"

	"pursuit/config"
	"pursuit/render"
	"pursuit/server"
	"pursuit/shared"
	"pursuit/sim"
)

func main() {
	parser := argparse.NewParser("simulation-server", "Runs a pursuit simulation and serves it over HTTP, websockets and gRPC")
	flags := config.RegisterFlags(parser, true)
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

	if err := serve(ctx, cfg); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

// serve runs one simulation and keeps the final board available until ctx ends
func serve(ctx context.Context, cfg *config.Config) error {
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	g, seed, err := cfg.Board()
	if err != nil {
		return err
	}
	if seed != 0 {
		log.Printf("Board placed with seed %d", seed)
	}
	s, err := sim.New(g, cfg.Sim(log.Default()))
	if err != nil {
		return err
	}

	hub := server.NewHub(log.Default())
	go hub.Run(s.Subscribe())

	if cfg.OutputFile != "" {
		file, err := render.NewFileRenderer(cfg.OutputFile)
		if err != nil {
			return err
		}
		defer file.Close()
		go func(events <-chan shared.CycleEvent) {
			for ev := range events {
				if err := file.Render(ev); err != nil {
					log.Printf("Error writing output file: %v", err)
				}
			}
		}(s.Subscribe())
	}

	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", cfg.HTTPAddr, err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr, err)
	}

	httpServer := &http.Server{Handler: server.NewRouter(s, hub)}
	health := server.NewHealthServer(log.Default())

	errs := make(chan error, 2)
	go func() {
		log.Printf("[Server] HTTP listening on %s", httpLis.Addr())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("http serve: %w", err)
		}
	}()
	go func() {
		if err := health.Serve(grpcLis); err != nil {
			errs <- err
		}
	}()

	health.SetRunning(true)
	go func() {
		report, err := s.Run(ctx)
		health.SetRunning(false)
		if err != nil {
			log.Printf("[Server] Simulation %s failed: %v", report.RunID, err)
			return
		}
		log.Printf("[Server] Simulation %s finished after %d cycles: %s",
			report.RunID, report.Cycles, report.Outcome.Announcement())
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Println("[Server] Shutting down...")
	case serveErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("[Server] Shutting down, disconnecting %d websocket clients", hub.Clients())
	hub.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] HTTP shutdown: %v", err)
	}
	health.Stop()
	return serveErr
}
