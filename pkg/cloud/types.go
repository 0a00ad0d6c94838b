package cloud

import (
	"context"
	"fmt"
	"sort"

	"janusops/pkg/configuration"
	"janusops/pkg/types"
)

// InventoryProvider lists the running cluster instances per region.
type InventoryProvider interface {
	Instances(ctx context.Context, regions []string) (types.InstancesByRegion, error)
}

type initProvider func(*configuration.Config) (InventoryProvider, error)

var registry = map[string]initProvider{}

func RegisterProvider(name string, f initProvider) {
	registry[name] = f
}

func GetProvider(name string, cfg *configuration.Config) (InventoryProvider, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no inventory provider registered as %q (known: %v)", name, registeredNames())
	}

	return f(cfg)
}

func registeredNames() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}
