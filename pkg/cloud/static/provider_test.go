package static

import (
	"context"
	"testing"

	"janusops/pkg/cloud"
	"janusops/pkg/configuration"
	"janusops/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Instances(t *testing.T) {
	cfg := configuration.Default()
	cfg.Inventory.Static = map[string][]string{
		"us-east-1": {"1.2.3.4"},
		"eu-west-1": {"5.6.7.8", "5.6.7.9"},
	}

	tests := map[string]struct {
		regions  []string
		expected types.InstancesByRegion
	}{
		"returns every region when none requested": {
			nil,
			types.InstancesByRegion{
				"us-east-1": {{Region: "us-east-1", PublicIP: "1.2.3.4"}},
				"eu-west-1": {
					{Region: "eu-west-1", PublicIP: "5.6.7.8"},
					{Region: "eu-west-1", PublicIP: "5.6.7.9"},
				},
			},
		},
		"filters to requested regions": {
			[]string{"us-east-1", "ap-south-1"},
			types.InstancesByRegion{
				"us-east-1": {{Region: "us-east-1", PublicIP: "1.2.3.4"}},
			},
		},
	}

	p := New(cfg)
	for name, test := range tests {
		actual, err := p.Instances(context.Background(), test.regions)
		assert.NoError(t, err, name)
		assert.Equal(t, test.expected, actual, name)
	}
}

func TestRegistered(t *testing.T) {
	p, err := cloud.GetProvider("static", configuration.Default())
	require.NoError(t, err)
	assert.IsType(t, &Provider{}, p)

	_, err = cloud.GetProvider("nope", configuration.Default())
	assert.EqualError(t, err, `no inventory provider registered as "nope" (known: [static])`)
}
