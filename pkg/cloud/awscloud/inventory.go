package awscloud

import (
	"context"
	"fmt"
	"sort"

	"janusops/pkg/cloud"
	"janusops/pkg/configuration"
	"janusops/pkg/types"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	log "github.com/sirupsen/logrus"
)

// InventoryProvider lists running instances carrying the cluster tag.
type InventoryProvider struct {
	tagKey   string
	tagValue string
	clients  ClientFactory
}

func (p *InventoryProvider) Instances(ctx context.Context, regions []string) (types.InstancesByRegion, error) {
	out := make(types.InstancesByRegion)

	for _, region := range regions {
		instances, err := p.regionInstances(ctx, region)
		if err != nil {
			return nil, err
		}

		if len(instances) == 0 {
			log.Debugf("no cluster instances found in %s", region)
			continue
		}

		out[region] = instances
	}

	return out, nil
}

func (p *InventoryProvider) regionInstances(ctx context.Context, region string) ([]*types.Instance, error) {
	client, err := p.clients(region)
	if err != nil {
		return nil, err
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{
			{
				Name:   aws.String("tag:" + p.tagKey),
				Values: []*string{aws.String(p.tagValue)},
			},
			{
				Name:   aws.String("instance-state-name"),
				Values: []*string{aws.String(ec2.InstanceStateNameRunning)},
			},
		},
	}

	instances := make([]*types.Instance, 0)
	err = client.DescribeInstancesPagesWithContext(ctx, input, func(page *ec2.DescribeInstancesOutput, _ bool) bool {
		for _, r := range page.Reservations {
			for _, inst := range r.Instances {
				instances = append(instances, &types.Instance{
					ID:        aws.StringValue(inst.InstanceId),
					Region:    region,
					PublicIP:  aws.StringValue(inst.PublicIpAddress),
					PrivateIP: aws.StringValue(inst.PrivateIpAddress),
				})

				log.Debugf("found instance %s (%s) in %s", aws.StringValue(inst.InstanceId), getTagValue(inst.Tags, "Name"), region)
			}
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: describing instances in %s failed: %w", region, err)
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].ID < instances[j].ID
	})

	return instances, nil
}

func NewInventoryProvider(cfg *configuration.Config, clients ClientFactory) *InventoryProvider {
	return &InventoryProvider{
		tagKey:   cfg.Inventory.TagKey,
		tagValue: cfg.Inventory.TagValue,
		clients:  clients,
	}
}

func init() {
	cloud.RegisterProvider("ec2", func(cfg *configuration.Config) (cloud.InventoryProvider, error) {
		return NewInventoryProvider(cfg, NewClientFactory()), nil
	})
}
