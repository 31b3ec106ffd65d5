package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
		level   zapcore.Level
	}{
		{"prod defaults to info", Options{Env: "prod"}, false, zapcore.InfoLevel},
		{"local defaults to debug", Options{Env: "local"}, false, zapcore.DebugLevel},
		{"level override", Options{Env: "prod", Level: "warn"}, false, zapcore.WarnLevel},
		{"stderr", Options{Env: "dev", Stderr: true}, false, zapcore.DebugLevel},
		{"unknown env", Options{Env: "staging"}, true, 0},
		{"bad level", Options{Env: "prod", Level: "loud"}, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, err := New(tc.opts)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tc.level) {
				t.Errorf("level %s should be enabled", tc.level)
			}
			if tc.level > zapcore.DebugLevel && l.Core().Enabled(tc.level-1) {
				t.Errorf("level %s should be disabled", tc.level-1)
			}
		})
	}
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a logger")
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("source", "sunbird"))
	ctx = With(ctx)
	FromContext(ctx).Info("hello", zap.String("operation", "search"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["source"] != "sunbird" || fields["operation"] != "search" {
		t.Errorf("unexpected fields: %v", fields)
	}
}
