package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	Named("test").Debug(context.Background(), "hidden at info")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	l.Info(ctx, "dropped")
	l.Named("pipeline").Warn(ctx, "kept", Int("pages", 3), Duration("took", time.Second), Error(errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record leaked at warn level: %s", out)
	}
	for _, want := range []string{"kept", "pipeline.pages=3", "pipeline.took=1s", "pipeline.error=boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error(context.Background(), "nothing", String("k", "v"))
}

func TestSetLevelString(t *testing.T) {
	for _, lvl := range []string{"debug", "INFO", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Fatalf("SetLevelString(%q): %v", lvl, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
