package source

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// Factory is a function that creates a new source adapter instance.
type Factory func(config map[string]interface{}) (reconcile.Source, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register adds a source factory to the registry.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = factory
}

// Create creates a new source adapter instance by name.
func Create(name string, config map[string]interface{}) (reconcile.Source, error) {
	mu.RLock()
	defer mu.RUnlock()

	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return factory(config)
}

// List returns all registered source names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
