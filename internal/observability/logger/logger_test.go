package logger

import (
	"context"
	"testing"

	"github.com/rajesh196rsh/e-commerce/internal/config"
	obscontext "github.com/rajesh196rsh/e-commerce/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextIncludesTraceAndRun(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	orig := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(orig)

	traceID, _ := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
	spanID, _ := trace.SpanIDFromHex("0123456789abcdef")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = obscontext.WithRunID(ctx, "run-42")

	FromContext(ctx).Info("hello")
	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID.String() {
		t.Fatalf("expected trace_id %q, got %q", traceID.String(), fields["trace_id"])
	}
	if fields["span_id"] != spanID.String() {
		t.Fatalf("expected span_id %q, got %q", spanID.String(), fields["span_id"])
	}
	if fields["run_id"] != "run-42" {
		t.Fatalf("expected run_id run-42, got %q", fields["run_id"])
	}
}

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"

	log, err := New(cfg)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug to be disabled")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info to be enabled")
	}
}
