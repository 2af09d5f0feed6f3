// engine.go: Engine lifecycle, lanes and session factories.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"context"
	"sync"

	goplugins "github.com/agilira/go-plugins"
)

// Engine owns the lanes and the provider registry. Providers are loaded by
// Init and unloaded by Shutdown; sessions need the providers of their
// primitives to be loaded.
type Engine struct {
	cfg      Config
	registry *ProviderRegistry
	lanes    []*Lane

	mu          sync.Mutex
	initialized bool
}

// EngineStats aggregates the statistics of every lane.
type EngineStats struct {
	Name            string      `json:"name"`
	Lanes           []LaneStats `json:"lanes"`
	EnqueuedCount   uint64      `json:"enqueued"`
	DequeuedCount   uint64      `json:"dequeued"`
	EnqueueErrCount uint64      `json:"enqueue_errors"`
	SucceededCount  uint64      `json:"succeeded"`
	FailedCount     uint64      `json:"failed"`
	AuthFailedCount uint64      `json:"auth_failed"`
}

// NewEngine validates cfg and creates an engine. Call Init before use.
func NewEngine(cfg Config) (*Engine, error) {
	return NewEngineWithPlugins(cfg, nil)
}

// NewEngineWithPlugins is NewEngine with a plugin manager for external providers.
func NewEngineWithPlugins(cfg Config, pluginManager *goplugins.Manager[ProviderRequest, ProviderResponse]) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if err := SetLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		registry: NewProviderRegistry(nil, pluginManager),
		lanes:    make([]*Lane, cfg.Lanes),
	}
	for i := range e.lanes {
		e.lanes[i] = newLane(i, cfg.QueueDepth, cfg.SessionlessPoolSize, e.registry)
	}
	return e, nil
}

// Init loads the default provider, and the legacy provider when configured.
// Calling Init on an initialized engine is a no-op.
func (e *Engine) Init(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	if err := e.registry.register(ctx, ProviderDefault, newDefaultProvider()); err != nil {
		return err
	}
	if e.cfg.LegacyProvider {
		if err := e.registry.register(ctx, ProviderLegacy, newLegacyProvider()); err != nil {
			_ = e.registry.Close()
			return err
		}
	}
	e.initialized = true
	L.Info("engine initialized", "name", e.cfg.Name, "lanes", len(e.lanes), "legacy", e.cfg.LegacyProvider)
	return nil
}

// Shutdown unloads every provider. Sessions built earlier keep working;
// new sessions cannot be built until Init is called again.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil
	}
	e.initialized = false
	L.Info("engine shut down", "name", e.cfg.Name)
	return e.registry.Close()
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Providers returns the provider registry.
func (e *Engine) Providers() *ProviderRegistry { return e.registry }

// LaneCount returns the number of lanes.
func (e *Engine) LaneCount() int { return len(e.lanes) }

// Lane returns lane id.
func (e *Engine) Lane(id int) (*Lane, error) {
	if id < 0 || id >= len(e.lanes) {
		return nil, newError(ErrLaneOutOfRange, ErrCodeLaneRange, "lane %d outside of [0,%d)", id, len(e.lanes))
	}
	return e.lanes[id], nil
}

// Enqueue processes ops on lane laneID. See Lane.Enqueue.
func (e *Engine) Enqueue(laneID int, ops []*Operation) int {
	l, err := e.Lane(laneID)
	if err != nil {
		return 0
	}
	return l.Enqueue(ops)
}

// Dequeue collects up to max completed operations from lane laneID.
func (e *Engine) Dequeue(laneID int, max int) []*Operation {
	l, err := e.Lane(laneID)
	if err != nil {
		return nil
	}
	return l.Dequeue(max)
}

// BuildSession builds a session usable from every lane of the engine.
func (e *Engine) BuildSession(x *Xform) (*Session, error) {
	s := &Session{}
	if err := buildSession(s, x, len(e.lanes), e.registry); err != nil {
		L.Error("session build failed", append(xformLogFields(x), "err", err)...)
		return nil, err
	}
	return s, nil
}

// xformLogFields describes the head of a transform chain for logging.
// Keys appear as fingerprints only.
func xformLogFields(x *Xform) []interface{} {
	switch {
	case x == nil:
		return nil
	case x.Cipher != nil && x.Type == XformCipher:
		return []interface{}{"algorithm", x.Cipher.Algorithm, "key", GetKeyFingerprint(x.Cipher.Key)}
	case x.Auth != nil && x.Type == XformAuth:
		return []interface{}{"algorithm", x.Auth.Algorithm, "key", GetKeyFingerprint(x.Auth.Key)}
	case x.AEAD != nil && x.Type == XformAEAD:
		return []interface{}{"algorithm", x.AEAD.Algorithm, "key", GetKeyFingerprint(x.AEAD.Key)}
	}
	return []interface{}{"xform", x.Type}
}

// BuildAsymSession builds an asymmetric session. Asymmetric primitives
// belong to the default provider.
func (e *Engine) BuildAsymSession(x *AsymXform) (*AsymSession, error) {
	if err := checkProvider(e.registry, ProviderDefault, "asymmetric session"); err != nil {
		return nil, err
	}
	return BuildAsymSession(x)
}

// Stats returns per-lane and aggregated counters.
func (e *Engine) Stats() EngineStats {
	st := EngineStats{Name: e.cfg.Name, Lanes: make([]LaneStats, len(e.lanes))}
	for i, l := range e.lanes {
		ls := l.Stats()
		st.Lanes[i] = ls
		st.EnqueuedCount += ls.EnqueuedCount
		st.DequeuedCount += ls.DequeuedCount
		st.EnqueueErrCount += ls.EnqueueErrCount
		st.SucceededCount += ls.SucceededCount
		st.FailedCount += ls.FailedCount
		st.AuthFailedCount += ls.AuthFailedCount
	}
	return st
}
