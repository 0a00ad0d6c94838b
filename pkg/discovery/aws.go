// Package discovery resolves cluster members through hashicorp/go-discover,
// which only needs read access to EC2 tags and works with the same credential
// sources as the go-discover aws provider.
package discovery

import (
	"context"
	"fmt"
	stdlog "log"

	"janusops/pkg/cloud"
	"janusops/pkg/configuration"
	"janusops/pkg/types"

	discover "github.com/hashicorp/go-discover"
	discoveraws "github.com/hashicorp/go-discover/provider/aws"
	log "github.com/sirupsen/logrus"
)

type addrsFunc func(cfg string, l *stdlog.Logger) ([]string, error)

type Provider struct {
	tagKey   string
	tagValue string
	addrs    addrsFunc
}

func (p *Provider) Instances(ctx context.Context, regions []string) (types.InstancesByRegion, error) {
	logger := stdlog.New(log.StandardLogger().WriterLevel(log.DebugLevel), "", 0)
	out := make(types.InstancesByRegion)

	for _, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		addrs, err := p.addrs(p.lookupConfig(region), logger)
		if err != nil {
			return nil, fmt.Errorf("discover-aws: looking up instances in %s failed: %w", region, err)
		}

		if len(addrs) == 0 {
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

func (p *Provider) lookupConfig(region string) string {
	return discover.Config{
		"provider":  "aws",
		"region":    region,
		"tag_key":   p.tagKey,
		"tag_value": p.tagValue,
		"addr_type": "public_v4",
	}.String()
}

func New(cfg *configuration.Config) (*Provider, error) {
	d, err := discover.New(discover.WithProviders(map[string]discover.Provider{
		"aws": &discoveraws.Provider{},
	}))
	if err != nil {
		return nil, fmt.Errorf("discover-aws: %w", err)
	}

	return &Provider{
		tagKey:   cfg.Inventory.TagKey,
		tagValue: cfg.Inventory.TagValue,
		addrs:    d.Addrs,
	}, nil
}

func init() {
	cloud.RegisterProvider("discover", func(cfg *configuration.Config) (cloud.InventoryProvider, error) {
		return New(cfg)
	})
}
