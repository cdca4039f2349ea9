package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapFieldsTypedConstructors(t *testing.T) {
	fields := []Field{
		String("doc", "PMC1"),
		Int("mentions", 7),
		Float64("confidence", 0.5),
		Bool("gold", true),
		Duration("elapsed", 3 * time.Second),
		Err(errors.New("boom")),
		Err(nil),
		Any("bundle", map[string]int{"a": 1}),
	}
	zfs := toZapFields(fields)
	if len(zfs) != len(fields) {
		t.Fatalf("got %d zap fields, want %d", len(zfs), len(fields))
	}
	if zfs[0].Key != "doc" {
		t.Errorf("first key = %q", zfs[0].Key)
	}
	if zfs[5].Key != "error" || zfs[6].Key != "error" {
		t.Error("Err fields must use the canonical key")
	}
}

func TestObservedLoggerEmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core)

	log.With(String("component", "tagger")).Info("document tagged", Int("entities", 3))

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Message != "document tagged" {
		t.Errorf("message = %q", e.Message)
	}
	ctx := e.ContextMap()
	if ctx["component"] != "tagger" {
		t.Errorf("component = %v", ctx["component"])
	}
	if ctx["entities"] != int64(3) {
		t.Errorf("entities = %v", ctx["entities"])
	}
}

func TestNamedChildLogger(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	log := NewLoggerFromCore(core).Named("relna").Named("tagger")

	log.Warn("lookup miss")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].LoggerName != "relna.tagger" {
		t.Errorf("logger name = %q", entries[0].LoggerName)
	}
}

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(LogConfig{})
	if err != nil {
		t.Fatalf("NewLogger with empty config: %v", err)
	}
	if log == nil {
		t.Fatal("nil logger")
	}
}

func TestDefaultIsSwappable(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	core, observed := observer.New(zapcore.InfoLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("hello")
	if observed.Len() != 1 {
		t.Errorf("observed %d entries, want 1", observed.Len())
	}

	// SetDefault(nil) must be a no-op.
	SetDefault(nil)
	if Default() == nil {
		t.Error("Default became nil")
	}
}
