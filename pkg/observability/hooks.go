// Package observability provides hooks for metrics and tracing.
//
// Consumers register hooks at startup to receive events about placements,
// resizes and layering, and about HTTP requests served by the API. Hooks
// default to no-ops, so libraries can emit events unconditionally.
//
// # Usage
//
// Register hooks at application startup:
//
//	counters := observability.NewCounters()
//	observability.SetPlacementHooks(counters)
//	observability.SetHTTPHooks(counters)
//
// Libraries call hooks to emit events:
//
//	observability.Placement().OnPlace(id, err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// =============================================================================
// Placement Hooks
// =============================================================================

// PlacementHooks receives events from placement sessions.
type PlacementHooks interface {
	// OnPlace records a placement attempt. id is empty when err is set.
	OnPlace(id string, err error)

	// OnRemove records a box removal.
	OnRemove(id string)

	// OnResize records a resize attempt.
	OnResize(err error)

	// OnStratify records a layering computation.
	OnStratify(boxes, layers int, duration time.Duration)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlacementHooks is a no-op implementation of PlacementHooks.
type NoopPlacementHooks struct{}

func (NoopPlacementHooks) OnPlace(string, error)                  {}
func (NoopPlacementHooks) OnRemove(string)                        {}
func (NoopPlacementHooks) OnResize(error)                         {}
func (NoopPlacementHooks) OnStratify(int, int, time.Duration)     {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	placementHooks PlacementHooks = NoopPlacementHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetPlacementHooks registers custom placement hooks. Nil is ignored.
func SetPlacementHooks(h PlacementHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		placementHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Placement returns the registered placement hooks.
func Placement() PlacementHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return placementHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	placementHooks = NoopPlacementHooks{}
	httpHooks = NoopHTTPHooks{}
}

// =============================================================================
// Counters
// =============================================================================

// Counters is an in-memory implementation of both hook interfaces that
// tallies events. It is safe for concurrent use.
type Counters struct {
	mu         sync.Mutex
	placed     int
	rejected   map[errors.Code]int
	removed    int
	resizes    int
	resizeErrs int
	stratified int
	requests   int
	statuses   map[int]int
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{rejected: map[errors.Code]int{}, statuses: map[int]int{}}
}

// Stats is a point-in-time copy of Counters.
type Stats struct {
	Placed          int                 `json:"placed"`
	Rejected        map[errors.Code]int `json:"rejected"`
	Removed         int                 `json:"removed"`
	Resizes         int                 `json:"resizes"`
	ResizesRejected int                 `json:"resizes_rejected"`
	Stratified      int                 `json:"stratified"`
	Requests        int                 `json:"requests"`
	Statuses        map[int]int         `json:"statuses"`
}

func (c *Counters) OnPlace(_ string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.rejected[errors.GetCode(err)]++
		return
	}
	c.placed++
}

func (c *Counters) OnRemove(string) {
	c.mu.Lock()
	c.removed++
	c.mu.Unlock()
}

func (c *Counters) OnResize(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resizes++
	if err != nil {
		c.resizeErrs++
	}
}

func (c *Counters) OnStratify(int, int, time.Duration) {
	c.mu.Lock()
	c.stratified++
	c.mu.Unlock()
}

func (c *Counters) OnRequest(context.Context, string, string) {
	c.mu.Lock()
	c.requests++
	c.mu.Unlock()
}

func (c *Counters) OnResponse(_ context.Context, _, _ string, statusCode int, _ time.Duration) {
	c.mu.Lock()
	c.statuses[statusCode]++
	c.mu.Unlock()
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Placed:          c.placed,
		Rejected:        make(map[errors.Code]int, len(c.rejected)),
		Removed:         c.removed,
		Resizes:         c.resizes,
		ResizesRejected: c.resizeErrs,
		Stratified:      c.stratified,
		Requests:        c.requests,
		Statuses:        make(map[int]int, len(c.statuses)),
	}
	for k, v := range c.rejected {
		s.Rejected[k] = v
	}
	for k, v := range c.statuses {
		s.Statuses[k] = v
	}
	return s
}

var (
	_ PlacementHooks = (*Counters)(nil)
	_ HTTPHooks      = (*Counters)(nil)
)
