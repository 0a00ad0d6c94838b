package types

import "sort"

// Instance is a cluster host as reported by the inventory provider. The cloud
// provider owns its lifecycle; janusops only reads it.
type Instance struct {
	ID        string
	Region    string
	PublicIP  string
	PrivateIP string
}

type InstancesByRegion map[string][]*Instance

// Regions returns the regions that have an entry, sorted.
func (ir InstancesByRegion) Regions() []string {
	regions := make([]string, 0, len(ir))
	for r := range ir {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	return regions
}

// PublicIPs walks regions in sorted order and returns every instance public
// address. Instances without one are skipped.
func (ir InstancesByRegion) PublicIPs() []string {
	addrs := make([]string, 0)
	for _, r := range ir.Regions() {
		for _, inst := range ir[r] {
			if inst == nil || inst.PublicIP == "" {
				continue
			}
			addrs = append(addrs, inst.PublicIP)
		}
	}

	return addrs
}

func (ir InstancesByRegion) ByPublicIP(ip string) *Instance {
	for _, r := range ir.Regions() {
		for _, inst := range ir[r] {
			if inst != nil && inst.PublicIP == ip {
				return inst
			}
		}
	}

	return nil
}

// Roles groups host addresses the way provisioning tasks target them.
type Roles struct {
	Leaders []string
	Servers []string
	All     []string
}

// NewRoles picks the leader (the configured address, or the first public
// address in region order) and makes every other address a server.
func NewRoles(instances InstancesByRegion, leader string) *Roles {
	all := instances.PublicIPs()

	roles := &Roles{
		Leaders: make([]string, 0, 1),
		Servers: make([]string, 0, len(all)),
		All:     all,
	}

	if leader == "" && len(all) > 0 {
		leader = all[0]
	}

	if leader != "" {
		roles.Leaders = append(roles.Leaders, leader)
	}

	for _, addr := range all {
		if addr != leader {
			roles.Servers = append(roles.Servers, addr)
		}
	}

	return roles
}

// Leader returns the NFS server address, or "" if there is none.
func (r *Roles) Leader() string {
	if len(r.Leaders) == 0 {
		return ""
	}
	return r.Leaders[0]
}

// ServersAndLeaders returns the deduplicated union targeted by the NFS client
// and limits tasks.
func (r *Roles) ServersAndLeaders() []string {
	seen := make(Set[string])
	hosts := make([]string, 0, len(r.Servers)+len(r.Leaders))

	for _, h := range append(append([]string{}, r.Servers...), r.Leaders...) {
		if seen.Has(h) {
			continue
		}
		seen.Add(h)
		hosts = append(hosts, h)
	}

	return hosts
}
