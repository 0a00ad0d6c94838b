package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testInventory() InstancesByRegion {
	return InstancesByRegion{
		"us-west-2": {
			{ID: "i-3", Region: "us-west-2", PublicIP: "5.6.7.8"},
			{ID: "i-4", Region: "us-west-2"},
		},
		"eu-west-1": {
			{ID: "i-1", Region: "eu-west-1", PublicIP: "1.2.3.4"},
			{ID: "i-2", Region: "eu-west-1", PublicIP: "1.2.3.5"},
		},
	}
}

func TestInstancesByRegion_PublicIPs(t *testing.T) {
	tests := map[string]struct {
		inventory InstancesByRegion
		expected  []string
	}{
		"returns empty list for empty inventory": {
			InstancesByRegion{},
			[]string{},
		},
		"returns addresses in region order and skips instances without public ip": {
			testInventory(),
			[]string{"1.2.3.4", "1.2.3.5", "5.6.7.8"},
		},
	}

	for name, test := range tests {
		assert.Equal(t, test.expected, test.inventory.PublicIPs(), name)
	}
}

func TestInstancesByRegion_ByPublicIP(t *testing.T) {
	inv := testInventory()

	assert.Equal(t, "i-3", inv.ByPublicIP("5.6.7.8").ID)
	assert.Nil(t, inv.ByPublicIP("10.0.0.1"))
}

func TestNewRoles(t *testing.T) {
	tests := map[string]struct {
		inventory InstancesByRegion
		leader    string
		expected  *Roles
	}{
		"returns empty roles for empty inventory": {
			InstancesByRegion{},
			"",
			&Roles{Leaders: []string{}, Servers: []string{}, All: []string{}},
		},
		"uses first address as leader when none configured": {
			testInventory(),
			"",
			&Roles{
				Leaders: []string{"1.2.3.4"},
				Servers: []string{"1.2.3.5", "5.6.7.8"},
				All:     []string{"1.2.3.4", "1.2.3.5", "5.6.7.8"},
			},
		},
		"uses configured leader": {
			testInventory(),
			"5.6.7.8",
			&Roles{
				Leaders: []string{"5.6.7.8"},
				Servers: []string{"1.2.3.4", "1.2.3.5"},
				All:     []string{"1.2.3.4", "1.2.3.5", "5.6.7.8"},
			},
		},
	}

	for name, test := range tests {
		assert.Equal(t, test.expected, NewRoles(test.inventory, test.leader), name)
	}
}

func TestRoles_ServersAndLeaders(t *testing.T) {
	roles := NewRoles(testInventory(), "")

	assert.Equal(t, "1.2.3.4", roles.Leader())
	assert.Equal(t, []string{"1.2.3.5", "5.6.7.8", "1.2.3.4"}, roles.ServersAndLeaders())
	assert.Equal(t, "", (&Roles{}).Leader())
}
