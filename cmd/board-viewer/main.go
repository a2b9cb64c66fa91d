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
	"time"

	"github.com/akamensky/argparse"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"pursuit/render"
	"pursuit/server"
	"pursuit/shared"
)

func main() {
	parser := argparse.NewParser("board-viewer", "Prints the live board of a running simulation server")
	wsURL := parser.String("s", "server", &argparse.Options{Default: "ws://localhost:8080/ws", Help: "Websocket feed URL"})
	grpcAddr := parser.String("g", "grpc", &argparse.Options{Default: "localhost:50051", Help: "gRPC address for the health probe, empty to skip"})
	clearScreen := parser.Flag("C", "clear", &argparse.Options{Help: "Clear the terminal before each board"})
	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *grpcAddr != "" {
		status, err := probe(ctx, *grpcAddr)
		if err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		log.Printf("Simulation service is %s", status)
	}

	ev, err := view(ctx, *wsURL, render.Terminal{W: os.Stdout, Clear: *clearScreen})
	if err != nil {
		log.Fatalf("Viewer error: %v", err)
	}
	log.Printf("Run %s ended after %d cycles", ev.RunID, ev.Cycle)
}

// probe asks the server's gRPC health service about the simulation
func probe(ctx context.Context, addr string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	log.Printf("Connecting to simulation gRPC at %s", addr)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing gRPC connection: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return server.CheckHealth(ctx, conn)
}

// view renders every frame from the websocket feed and returns the final one
func view(ctx context.Context, url string, r render.Renderer) (shared.CycleEvent, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return shared.CycleEvent{}, fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()
	log.Printf("Connected to %s", url)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var last shared.CycleEvent
	for {
		var ev shared.CycleEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return last, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, io.ErrUnexpectedEOF) {
				return last, errors.New("feed closed before the run ended")
			}
			return last, fmt.Errorf("read frame: %w", err)
		}
		last = ev
		if err := r.Render(ev); err != nil {
			return last, err
		}
		if ev.Final() {
			return last, nil
		}
	}
}
