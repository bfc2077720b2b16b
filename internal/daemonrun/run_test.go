package daemonrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marquee/internal/daemonrun"
	"marquee/internal/testsupport"
)

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	pidPath := filepath.Join(cfg.Paths.DataDir, daemonrun.PIDFileName)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(cfg.DatabasePath()); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("daemon did not open its database")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(pidPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected pid file removed, stat err = %v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
