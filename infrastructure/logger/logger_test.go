package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := logger.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_BuildsJSONAndConsole(t *testing.T) {
	t.Parallel()

	for _, format := range []string{logger.FormatJSON, logger.FormatConsole} {
		l, err := logger.New(logger.Config{Level: "debug", Format: format, Development: true, OutputPaths: []string{"stderr"}})
		if err != nil {
			t.Fatalf("New(%s) error = %v", format, err)
		}
		l.Debug("hello", logger.String("format", format))
	}
}

func TestFromZap_WithCarriesFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := logger.FromZap(zap.New(core)).With(logger.String("service", "complaints"))

	l.Warn("classification fell back", logger.String("reason", "call_failed"), logger.Error(errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["service"] != "complaints" {
		t.Errorf("service = %v, want complaints", fields["service"])
	}
	if fields["reason"] != "call_failed" {
		t.Errorf("reason = %v, want call_failed", fields["reason"])
	}
	if fields["error"] != "boom" {
		t.Errorf("error = %v, want boom", fields["error"])
	}
}

func TestContext_RoundTrip(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.FromZap(zap.New(core))

	logger.FromContext(logger.WithContext(context.Background(), l)).Info("stored")
	if logs.Len() != 1 {
		t.Fatalf("got %d entries, want 1", logs.Len())
	}
}

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	l := logger.FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}
	l.Info("filtered at warn level")
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	l := logger.NewNop()
	l.Fatal("does not exit")
	if l.With(logger.Int("n", 1)) == nil {
		t.Fatal("With returned nil")
	}
	if err := l.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}
