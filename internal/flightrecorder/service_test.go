package flightrecorder_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mkarvon/fitplan/internal/flightrecorder"
	"github.com/mkarvon/fitplan/internal/testhelpers"
)

func newTestService(t *testing.T) (*flightrecorder.Service, string) {
	t.Helper()
	traceDir := t.TempDir()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	service, err := flightrecorder.New(flightrecorder.Config{
		Logger:          logger,
		MinAge:          0,
		MaxBytes:        0,
		TracesDirectory: traceDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return service, traceDir
}

func TestServiceStartStop(t *testing.T) {
	service, _ := newTestService(t)

	ctx := context.Background()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	service.Stop(ctx)
}

func TestServiceCaptureSlowRequestTrace(t *testing.T) {
	service, traceDir := newTestService(t)

	ctx := context.Background()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.CaptureSlowRequestTrace(ctx)

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("failed to read trace directory: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected a trace file to be created")
	}

	filename := entries[0].Name()
	if !strings.HasPrefix(filename, "slow-request-") {
		t.Errorf("expected filename to start with 'slow-request-', got %s", filename)
	}
	if !strings.HasSuffix(filename, ".trace") {
		t.Errorf("expected filename to end with '.trace', got %s", filename)
	}
}

func TestServiceCooldownPreventsRapidCaptures(t *testing.T) {
	service, traceDir := newTestService(t)

	ctx := context.Background()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.CaptureSlowRequestTrace(ctx)
	service.CaptureSlowRequestTrace(ctx)

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("failed to read trace directory: %v", err)
	}
	if len(entries) > 1 {
		t.Error("expected cooldown to prevent rapid successive captures")
	}
}
