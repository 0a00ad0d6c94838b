// Package static serves the inventory listed in the configuration file. It is
// used for clusters that are not tagged in EC2 and for dry runs.
package static

import (
	"context"

	"janusops/pkg/cloud"
	"janusops/pkg/configuration"
	"janusops/pkg/types"
)

type Provider struct {
	addrs map[string][]string
}

func (p *Provider) Instances(_ context.Context, regions []string) (types.InstancesByRegion, error) {
	wanted := types.NewSet(regions...)
	out := make(types.InstancesByRegion)

	for region, addrs := range p.addrs {
		if len(regions) > 0 && !wanted.Has(region) {
			continue
		}

		instances := make([]*types.Instance, len(addrs))
		for i, addr := range addrs {
			instances[i] = &types.Instance{Region: region, PublicIP: addr}
		}
		out[region] = instances
	}

	return out, nil
}

func New(cfg *configuration.Config) *Provider {
	return &Provider{addrs: cfg.Inventory.Static}
}

func init() {
	cloud.RegisterProvider("static", func(cfg *configuration.Config) (cloud.InventoryProvider, error) {
		return New(cfg), nil
	})
}
