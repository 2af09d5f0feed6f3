// provider.go: Primitive providers and the registry that loads them.
//
// A provider groups primitives that are enabled together. The default
// provider backs every modern algorithm; the legacy provider gates single
// DES and must be loaded explicitly. Sessions cannot be built for a
// primitive whose provider is not loaded. Names not registered directly are
// looked up in the go-plugins manager, when the registry has one.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goerrors "github.com/agilira/go-errors"
	goplugins "github.com/agilira/go-plugins"
)

// Capability names a primitive family a provider offers.
type Capability string

const (
	CapabilityCipher Capability = "cipher"
	CapabilityAuth   Capability = "auth"
	CapabilityAEAD   Capability = "aead"
	CapabilityAsym   Capability = "asym"
)

// PrimitiveProvider is implemented by everything the registry can load.
type PrimitiveProvider interface {
	Name() string
	Version() string
	Capabilities() []Capability

	Initialize(ctx context.Context, config map[string]interface{}) error
	Close() error
	IsHealthy() bool
}

// ProviderRequest is the request type exchanged with plugin-hosted providers.
type ProviderRequest struct {
	Operation  string                 `json:"operation"`
	Algorithm  string                 `json:"algorithm"`
	Data       []byte                 `json:"data"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ProviderResponse is the response type exchanged with plugin-hosted providers.
type ProviderResponse struct {
	Success bool   `json:"success"`
	Data    []byte `json:"data"`
	Error   string `json:"error"`
}

// ProviderRegistryConfig configures a registry.
type ProviderRegistryConfig struct {
	ProviderConfigs  map[string]map[string]interface{} `json:"provider_configs"`
	OperationTimeout time.Duration                     `json:"operation_timeout"`
}

// Provider errors
var (
	ErrProviderNotFound      = goerrors.New("PRV_001", "provider not found")
	ErrProviderUnhealthy     = goerrors.New("PRV_002", "provider health check failed")
	ErrProviderInitFailed    = goerrors.New("PRV_003", "provider initialization failed")
	ErrProviderAlreadyLoaded = goerrors.New("PRV_004", "provider already loaded")
	ErrProviderNil           = goerrors.New("PRV_005", "provider cannot be nil")
)

// ProviderRegistry holds the loaded providers of an engine.
type ProviderRegistry struct {
	mu            sync.RWMutex
	pluginManager *goplugins.Manager[ProviderRequest, ProviderResponse]
	active        map[string]PrimitiveProvider
	config        *ProviderRegistryConfig
}

// NewProviderRegistry creates an empty registry. pluginManager may be nil.
func NewProviderRegistry(config *ProviderRegistryConfig, pluginManager *goplugins.Manager[ProviderRequest, ProviderResponse]) *ProviderRegistry {
	if config == nil {
		config = &ProviderRegistryConfig{OperationTimeout: 10 * time.Second}
	}
	return &ProviderRegistry{
		pluginManager: pluginManager,
		active:        make(map[string]PrimitiveProvider),
		config:        config,
	}
}

// PluginManager returns the plugin manager external providers are attached through.
func (r *ProviderRegistry) PluginManager() *goplugins.Manager[ProviderRequest, ProviderResponse] {
	return r.pluginManager
}

// RegisterProvider initializes provider and makes it available under name.
func (r *ProviderRegistry) RegisterProvider(name string, provider PrimitiveProvider) error {
	return r.register(context.Background(), name, provider)
}

func (r *ProviderRegistry) register(ctx context.Context, name string, provider PrimitiveProvider) error {
	if provider == nil {
		return ErrProviderNil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.active[name]; exists {
		return fmt.Errorf("%w: %s", ErrProviderAlreadyLoaded, name)
	}

	if timeout := r.config.OperationTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := provider.Initialize(ctx, r.config.ProviderConfigs[name]); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProviderInitFailed, name, err)
	}

	r.active[name] = provider
	L.Info("provider loaded", "provider", name, "version", provider.Version())
	return nil
}

// GetProvider returns a loaded, healthy provider. Directly registered
// providers take precedence over plugins of the same name.
func (r *ProviderRegistry) GetProvider(name string) (PrimitiveProvider, error) {
	r.mu.RLock()
	provider, exists := r.active[name]
	r.mu.RUnlock()

	if !exists {
		if r.pluginManager == nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
		}
		plugin, err := r.pluginManager.GetPlugin(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
		}
		provider = &pluginProvider{plugin: plugin, timeout: r.config.OperationTimeout}
	}
	if !provider.IsHealthy() {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnhealthy, name)
	}
	return provider, nil
}

// Loaded reports whether name is loaded and healthy.
func (r *ProviderRegistry) Loaded(name string) bool {
	_, err := r.GetProvider(name)
	return err == nil
}

// Names returns the loaded provider names in lexical order.
func (r *ProviderRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.active))
	for name := range r.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unregister closes and removes one provider.
func (r *ProviderRegistry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	provider, exists := r.active[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	delete(r.active, name)
	L.Info("provider unloaded", "provider", name)
	return provider.Close()
}

// Close closes every provider and empties the registry.
func (r *ProviderRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, provider := range r.active {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %s: %w", name, err))
		}
		delete(r.active, name)
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close some providers: %v", errs)
	}
	return nil
}

// builtinProvider is the in-process provider backing the resolver tables.
type builtinProvider struct {
	name         string
	version      string
	capabilities []Capability
	initialized  atomic.Bool
}

func newDefaultProvider() *builtinProvider {
	return &builtinProvider{
		name:         ProviderDefault,
		version:      "1.0.0",
		capabilities: []Capability{CapabilityCipher, CapabilityAuth, CapabilityAEAD, CapabilityAsym},
	}
}

func newLegacyProvider() *builtinProvider {
	return &builtinProvider{
		name:         ProviderLegacy,
		version:      "1.0.0",
		capabilities: []Capability{CapabilityCipher},
	}
}

func (p *builtinProvider) Name() string               { return p.name }
func (p *builtinProvider) Version() string            { return p.version }
func (p *builtinProvider) Capabilities() []Capability { return p.capabilities }
func (p *builtinProvider) IsHealthy() bool            { return p.initialized.Load() }

func (p *builtinProvider) Initialize(ctx context.Context, _ map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.initialized.Store(true)
	return nil
}

func (p *builtinProvider) Close() error {
	p.initialized.Store(false)
	return nil
}

// pluginProvider exposes a plugin hosted by the go-plugins manager. The
// manager owns the plugin lifecycle, so Initialize and Close do nothing.
type pluginProvider struct {
	plugin  goplugins.Plugin[ProviderRequest, ProviderResponse]
	timeout time.Duration
}

func (p *pluginProvider) Name() string    { return p.plugin.Info().Name }
func (p *pluginProvider) Version() string { return p.plugin.Info().Version }

func (p *pluginProvider) Capabilities() []Capability {
	names := p.plugin.Info().Capabilities
	caps := make([]Capability, len(names))
	for i, name := range names {
		caps[i] = Capability(name)
	}
	return caps
}

func (p *pluginProvider) Initialize(context.Context, map[string]interface{}) error { return nil }
func (p *pluginProvider) Close() error                                             { return nil }

func (p *pluginProvider) IsHealthy() bool {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.plugin.Health(ctx).Status == goplugins.StatusHealthy
}
