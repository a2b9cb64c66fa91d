package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pursuit/config"
)

func TestServeStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "board.txt")
	if err := os.WriteFile(layoutPath, []byte("size 5 x 5\ngoal 4 4\nseeker 0 0\nchaser 4 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.LayoutFile = layoutPath
	cfg.CycleDelayMS = 0
	cfg.OutputFile = filepath.Join(dir, "grid_output.txt")
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	if err := serve(ctx, cfg); err != nil {
		t.Fatalf("serve: %v", err)
	}

	data, err := os.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("Expected the board in the output file")
	}
}

func TestServeRejectsBadAddress(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 1
	cfg.OutputFile = ""
	cfg.HTTPAddr = "not-an-address"
	if err := serve(context.Background(), cfg); err == nil {
		t.Error("Expected a listen error")
	}
}
