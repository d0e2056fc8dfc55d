// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about archive encoding and decoding and store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries. The CLI registers a
// Prometheus collector.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetArchiveHooks(&myArchiveHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Archive().OnEncode(ArchiveEvent{Root: "*schedule.Schedule", ...})
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Archive Hooks
// =============================================================================

// ArchiveEvent describes one completed archive operation.
type ArchiveEvent struct {
	Root     string // Dynamic type of the root record
	Records  int    // Versioned records written or read
	Objects  int    // Distinct referenced objects (slots)
	BackRefs int    // References resolved to an earlier slot
	Duration time.Duration
	Err      error
}

// ArchiveHooks receives events from archive writers and readers.
// Archive operations carry no context, so neither do these hooks.
type ArchiveHooks interface {
	OnEncode(ev ArchiveEvent)
	OnDecode(ev ArchiveEvent)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from archive store operations.
type StoreHooks interface {
	// OnStoreHit records a successful lookup.
	OnStoreHit(ctx context.Context, backend string)

	// OnStoreMiss records a lookup for a missing key.
	OnStoreMiss(ctx context.Context, backend string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopArchiveHooks is a no-op implementation of ArchiveHooks.
type NoopArchiveHooks struct{}

func (NoopArchiveHooks) OnEncode(ArchiveEvent) {}
func (NoopArchiveHooks) OnDecode(ArchiveEvent) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	archiveHooks ArchiveHooks = NoopArchiveHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetArchiveHooks registers custom archive hooks.
// This should be called once at application startup before any archive operations.
func SetArchiveHooks(h ArchiveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		archiveHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Archive returns the registered archive hooks.
func Archive() ArchiveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return archiveHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	archiveHooks = NoopArchiveHooks{}
	storeHooks = NoopStoreHooks{}
}
