// Package registry builds and holds the ordered, filtered set of active
// provider adapters from a list of provider configurations.
package registry

import (
	"log/slog"
	"sort"

	"skillforge-hq/anvil/pkg/providers"
	"skillforge-hq/anvil/pkg/providers/anthropic"
	"skillforge-hq/anvil/pkg/providers/gemini"
	"skillforge-hq/anvil/pkg/providers/ollama"
	"skillforge-hq/anvil/pkg/providers/openai"
)

// constructor builds one adapter from its configuration.
type constructor func(providers.Config) (providers.Adapter, error)

// constructors maps each known identity to its adapter implementation.
// Configs referencing an identity outside this map are skipped with a
// warning, never a fatal error.
var constructors = map[providers.ID]constructor{
	providers.IDOllama:    func(cfg providers.Config) (providers.Adapter, error) { return ollama.New(cfg) },
	providers.IDOpenAI:    func(cfg providers.Config) (providers.Adapter, error) { return openai.New(cfg) },
	providers.IDAnthropic: func(cfg providers.Config) (providers.Adapter, error) { return anthropic.New(cfg) },
	providers.IDGemini:    func(cfg providers.Config) (providers.Adapter, error) { return gemini.New(cfg) },
}

// Registry holds the active adapters. It is immutable after Build and
// safe for concurrent use without synchronization.
type Registry struct {
	// adapters keys adapters by identity. Two enabled configs sharing an
	// identity collapse last-wins; see the warning in Build.
	adapters map[providers.ID]providers.Adapter

	// ordered lists the active adapters ascending by priority.
	ordered []providers.Adapter
}

// Build constructs the registry from a configuration list. Disabled
// configs, unknown identities and failed constructions are skipped with
// a log line; the registry always constructs, possibly empty.
func Build(configs []providers.Config) *Registry {
	r := &Registry{
		adapters: make(map[providers.ID]providers.Adapter),
	}

	for _, cfg := range configs {
		if !cfg.Enabled {
			slog.Info("provider disabled, skipping", "provider", cfg.Identity)
			continue
		}

		build, known := constructors[cfg.Identity]
		if !known {
			slog.Warn("unknown provider identity, skipping", "provider", cfg.Identity)
			continue
		}

		adapter, err := build(cfg)
		if err != nil {
			slog.Warn("failed to construct provider adapter, skipping",
				"provider", cfg.Identity,
				"error", err,
			)
			continue
		}

		if _, dup := r.adapters[cfg.Identity]; dup {
			// Last-wins: the map is keyed by identity, so a duplicate
			// config replaces the earlier one rather than adding a
			// second account.
			slog.Warn("duplicate provider identity, replacing earlier config",
				"provider", cfg.Identity,
			)
		}
		r.adapters[cfg.Identity] = adapter
	}

	r.ordered = make([]providers.Adapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		r.ordered = append(r.ordered, adapter)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Config().Priority < r.ordered[j].Config().Priority
	})

	slog.Info("provider registry built",
		"active_providers", len(r.ordered),
		"identities", identityNames(r.ordered),
	)

	return r
}

// FromAdapters constructs a registry directly from pre-built adapters,
// bypassing configuration. Intended for embedding anvil as a library
// with custom Adapter implementations. Duplicate identities collapse
// last-wins, matching Build.
func FromAdapters(adapters ...providers.Adapter) *Registry {
	r := &Registry{
		adapters: make(map[providers.ID]providers.Adapter, len(adapters)),
	}

	for _, adapter := range adapters {
		r.adapters[adapter.Identity()] = adapter
	}

	r.ordered = make([]providers.Adapter, 0, len(r.adapters))
	for _, adapter := range r.adapters {
		r.ordered = append(r.ordered, adapter)
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Config().Priority < r.ordered[j].Config().Priority
	})

	return r
}

// AdapterFor returns the active adapter for an identity, if any.
func (r *Registry) AdapterFor(id providers.ID) (providers.Adapter, bool) {
	adapter, ok := r.adapters[id]
	return adapter, ok
}

// OrderedAdapters returns the active adapters ascending by priority.
// The returned slice is shared and must not be modified.
func (r *Registry) OrderedAdapters() []providers.Adapter {
	return r.ordered
}

// ActiveIdentities returns the identities of all active adapters, in
// priority order.
func (r *Registry) ActiveIdentities() []providers.ID {
	ids := make([]providers.ID, 0, len(r.ordered))
	for _, adapter := range r.ordered {
		ids = append(ids, adapter.Identity())
	}
	return ids
}

// Len returns the number of active adapters.
func (r *Registry) Len() int {
	return len(r.ordered)
}

func identityNames(adapters []providers.Adapter) []string {
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, string(a.Identity()))
	}
	return names
}
