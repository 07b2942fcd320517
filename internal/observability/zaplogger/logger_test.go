package zaplogger

import (
	"testing"

	"github.com/Garwin4j/paypal-bridge/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerAttachesFields(t *testing.T) {
	core, entries := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core), observability.F("service", "bridge"))

	log.With(observability.F("component", "gateway")).Info("ready", observability.F("attempt", 3))

	all := entries.All()
	if len(all) != 1 {
		t.Fatalf("entries: %d", len(all))
	}
	entry := all[0]
	if entry.Message != "ready" {
		t.Fatalf("message: %q", entry.Message)
	}
	got := entry.ContextMap()
	for key, want := range map[string]any{
		"service":   "bridge",
		"component": "gateway",
		"attempt":   int64(3),
	} {
		if got[key] != want {
			t.Fatalf("field %s: got %v want %v", key, got[key], want)
		}
	}
}

func TestLoggerLevels(t *testing.T) {
	core, entries := observer.New(zapcore.DebugLevel)
	log := New(zap.New(core))

	log.Debug("d")
	log.Info("i")
	log.Warn("w")
	log.Error("e")

	all := entries.All()
	if len(all) != 4 {
		t.Fatalf("entries: %d", len(all))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range all {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level: %v", i, e.Level)
		}
	}
}

func TestNewNilBaseFallsBack(t *testing.T) {
	log := New(nil)
	if log == nil {
		t.Fatal("nil logger")
	}
	log.Info("no panic expected")
}
