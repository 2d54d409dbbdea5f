// Package observability provides hooks for metrics and tracing.
//
// Libraries emit events through the registered hooks; the defaults are
// no-ops, so instrumentation costs nothing unless main registers an
// implementation such as [Prometheus].
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    m := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    observability.SetProcessorHooks(m)
//	    observability.SetCacheHooks(m)
//	    observability.SetServerHooks(m)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Processor().OnProcessStart(ctx, "include")
//	// ... run the processor ...
//	observability.Processor().OnProcessComplete(ctx, "include", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Processor Hooks
// =============================================================================

// ProcessorHooks receives events from the processor pipeline and the
// snapshot store.
type ProcessorHooks interface {
	OnProcessStart(ctx context.Context, processor string)
	OnProcessComplete(ctx context.Context, processor string, duration time.Duration, err error)

	// OnRebuild records how many documentables an incremental run had to
	// reprocess out of the corpus size.
	OnRebuild(ctx context.Context, affected, total int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP point-query server.
type ServerHooks interface {
	// OnRequest records an incoming request for a route pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response to a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopProcessorHooks is a no-op implementation of ProcessorHooks.
type NoopProcessorHooks struct{}

func (NoopProcessorHooks) OnProcessStart(context.Context, string)                          {}
func (NoopProcessorHooks) OnProcessComplete(context.Context, string, time.Duration, error) {}
func (NoopProcessorHooks) OnRebuild(context.Context, int, int)                             {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	processorHooks ProcessorHooks = NoopProcessorHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	serverHooks    ServerHooks    = NoopServerHooks{}
	hooksMu        sync.RWMutex
)

// SetProcessorHooks registers custom processor hooks.
// This should be called once at application startup.
func SetProcessorHooks(h ProcessorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		processorHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Processor returns the registered processor hooks.
func Processor() ProcessorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return processorHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	processorHooks = NoopProcessorHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
