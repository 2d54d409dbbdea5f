package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Processor hooks
	p := NoopProcessorHooks{}
	p.OnProcessStart(ctx, "include")
	p.OnProcessComplete(ctx, "include", time.Second, nil)
	p.OnRebuild(ctx, 3, 100)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "snapshot")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "snapshot", 1024)

	// Server hooks
	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/v1/docs/{id}")
	s.OnResponse(ctx, "GET", "/v1/docs/{id}", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Processor().(NoopProcessorHooks); !ok {
		t.Error("Processor() should return NoopProcessorHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	// Set custom hooks
	customProcessor := &testProcessorHooks{}
	SetProcessorHooks(customProcessor)
	if Processor() != customProcessor {
		t.Error("SetProcessorHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Processor().(NoopProcessorHooks); !ok {
		t.Error("Reset() should restore NoopProcessorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testProcessorHooks{}
	SetProcessorHooks(custom)

	// Setting nil should be ignored
	SetProcessorHooks(nil)

	if Processor() != custom {
		t.Error("SetProcessorHooks(nil) should be ignored")
	}

	Reset()
}

func TestPrometheusCollects(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg)
	ctx := context.Background()

	m.OnProcessComplete(ctx, "include", time.Millisecond, nil)
	m.OnProcessComplete(ctx, "include", time.Millisecond, errors.New("boom"))
	m.OnRebuild(ctx, 1, 4)
	m.OnRebuild(ctx, 0, 0)
	m.OnCacheHit(ctx, "snapshot")
	m.OnCacheSet(ctx, "snapshot", 10)
	m.OnRequest(ctx, "GET", "/v1/docs/{id}")
	m.OnResponse(ctx, "GET", "/v1/docs/{id}", 200, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"docsmith_processor_runs_total",
		"docsmith_processor_duration_seconds",
		"docsmith_rebuild_affected_ratio",
		"docsmith_cache_events_total",
		"docsmith_http_requests_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}

// Test implementations
type testProcessorHooks struct{ NoopProcessorHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
