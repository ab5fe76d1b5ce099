package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Discard() returned nil")
	}

	// Should not panic when logging.
	logger.Info("test message")
	logger.Debug("debug message")
}

func TestDefault(t *testing.T) {
	t.Run("nil returns discard", func(t *testing.T) {
		logger := Default(nil)
		if logger == nil {
			t.Fatal("Default(nil) returned nil")
		}
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Error("Default(nil) should return a discard logger")
		}
	})

	t.Run("non-nil returns same logger", func(t *testing.T) {
		var buf bytes.Buffer
		original := slog.New(slog.NewTextHandler(&buf, nil))
		if result := Default(original); result != original {
			t.Error("Default should return the same logger when non-nil")
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{" warn ", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// captureHandler captures log records for testing.
// Uses a shared records pointer so WithAttrs clones share the same storage.
type captureHandler struct {
	mu      *sync.Mutex
	records *[]slog.Record
}

func newCaptureHandler() *captureHandler {
	var mu sync.Mutex
	var records []slog.Record
	return &captureHandler{mu: &mu, records: &records}
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(*h.records)
}

func TestComponentFilterHandler_BasicFiltering(t *testing.T) {
	capture := newCaptureHandler()
	logger := slog.New(NewComponentFilterHandler(capture, slog.LevelInfo))

	logger.Info("info message", "component", "normalizer")
	logger.Debug("debug message", "component", "normalizer")
	logger.Warn("warn message", "component", "normalizer")

	if capture.count() != 2 {
		t.Errorf("expected 2 records (debug filtered), got %d", capture.count())
	}
}

func TestComponentFilterHandler_SetAndClearLevel(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter)

	logger.Debug("debug message", "component", "normalizer")
	if capture.count() != 0 {
		t.Fatalf("expected 0 records, got %d", capture.count())
	}

	filter.SetLevel("normalizer", slog.LevelDebug)
	logger.Debug("debug message", "component", "normalizer")
	logger.Debug("debug message", "component", "querylang")
	if capture.count() != 1 {
		t.Fatalf("expected 1 record (other component filtered), got %d", capture.count())
	}

	filter.ClearLevel("normalizer")
	logger.Debug("debug message", "component", "normalizer")
	if capture.count() != 1 {
		t.Errorf("expected 1 record (debug filtered after clear), got %d", capture.count())
	}
}

func TestComponentFilterHandler_Level(t *testing.T) {
	filter := NewComponentFilterHandler(nil, slog.LevelInfo)

	if level := filter.Level("unknown"); level != slog.LevelInfo {
		t.Errorf("expected INFO, got %v", level)
	}
	filter.SetLevel("normalizer", slog.LevelDebug)
	if level := filter.Level("normalizer"); level != slog.LevelDebug {
		t.Errorf("expected DEBUG, got %v", level)
	}
	if level := filter.DefaultLevel(); level != slog.LevelInfo {
		t.Errorf("expected INFO, got %v", level)
	}

	// Clearing an unknown component is a no-op.
	filter.ClearLevel("nonexistent")
}

func TestComponentFilterHandler_SetDefaultLevel(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter).With("component", "querylang")

	logger.Debug("debug message")
	filter.SetDefaultLevel(slog.LevelDebug)
	logger.Debug("debug message")
	if capture.count() != 1 {
		t.Errorf("expected 1 record after lowering the default, got %d", capture.count())
	}

	// A component level still wins over the default.
	filter.SetLevel("querylang", slog.LevelWarn)
	logger.Info("info message")
	if capture.count() != 1 {
		t.Errorf("expected component level to filter info, got %d records", capture.count())
	}
}

func TestComponentFilterHandler_WithAttrs(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter).With("component", "normalizer")

	// Level set after the logger was scoped still applies.
	filter.SetLevel("normalizer", slog.LevelDebug)

	logger.Debug("debug message")
	if capture.count() != 1 {
		t.Errorf("expected 1 record, got %d", capture.count())
	}
}

func TestComponentFilterHandler_WithGroup(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter.WithGroup("grp"))

	logger.Info("info message", "component", "normalizer")
	logger.Debug("debug message", "component", "normalizer")
	if capture.count() != 1 {
		t.Errorf("expected 1 record (debug filtered), got %d", capture.count())
	}
}

func TestComponentFilterHandler_Concurrent(t *testing.T) {
	capture := newCaptureHandler()
	filter := NewComponentFilterHandler(capture, slog.LevelInfo)
	logger := slog.New(filter)

	var wg sync.WaitGroup
	const goroutines = 10
	const iterations = 100

	for range goroutines {
		wg.Go(func() {
			for range iterations {
				logger.Info("message", "component", "normalizer")
			}
		})
		wg.Go(func() {
			for range iterations {
				filter.SetLevel("normalizer", slog.LevelDebug)
				filter.ClearLevel("normalizer")
			}
		})
	}
	wg.Wait()

	if count := capture.count(); count != goroutines*iterations {
		t.Errorf("expected %d records, got %d", goroutines*iterations, count)
	}
}

func TestComponentFilterHandler_Integration(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	filter := NewComponentFilterHandler(base, slog.LevelInfo)
	logger := slog.New(filter)

	normLogger := logger.With("component", "normalizer")
	parseLogger := logger.With("component", "querylang")

	normLogger.Debug("norm debug 1")
	parseLogger.Debug("parse debug 1")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got: %s", buf.String())
	}

	filter.SetLevel("normalizer", slog.LevelDebug)
	normLogger.Debug("norm debug 2")
	parseLogger.Debug("parse debug 2")

	output := buf.String()
	if !strings.Contains(output, "norm debug 2") {
		t.Errorf("expected normalizer debug log, got: %s", output)
	}
	if strings.Contains(output, "parse debug") {
		t.Errorf("did not expect querylang debug log, got: %s", output)
	}
}

func TestComponentFilterHandler_Apply(t *testing.T) {
	filter := NewComponentFilterHandler(nil, slog.LevelInfo)
	if err := filter.Apply("warn", "normalizer=debug", " querylang = error "); err != nil {
		t.Fatal(err)
	}
	if level := filter.DefaultLevel(); level != slog.LevelWarn {
		t.Errorf("default level = %v, want WARN", level)
	}
	if level := filter.Level("normalizer"); level != slog.LevelDebug {
		t.Errorf("normalizer level = %v, want DEBUG", level)
	}
	if level := filter.Level("querylang"); level != slog.LevelError {
		t.Errorf("querylang level = %v, want ERROR", level)
	}

	if err := filter.Apply("normalizer="); err != nil {
		t.Fatal(err)
	}
	if level := filter.Level("normalizer"); level != slog.LevelWarn {
		t.Errorf("normalizer level after clear = %v, want WARN", level)
	}
}

func TestComponentFilterHandler_ApplyErrors(t *testing.T) {
	tests := [][]string{
		{"loud"},
		{"=debug"},
		{"normalizer=debug", "querylang=loud"},
	}
	for _, settings := range tests {
		t.Run(strings.Join(settings, ","), func(t *testing.T) {
			filter := NewComponentFilterHandler(nil, slog.LevelInfo)
			if err := filter.Apply(settings...); err == nil {
				t.Fatalf("Apply(%q) succeeded", settings)
			}
			// A failed Apply changes nothing.
			if level := filter.Level("normalizer"); level != slog.LevelInfo {
				t.Errorf("normalizer level = %v, want INFO", level)
			}
		})
	}
}
