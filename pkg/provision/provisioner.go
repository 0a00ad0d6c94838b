// Package provision holds the cluster tasks: NFS server and client setup,
// limits and ssh configuration, connectivity checks and the janus host list.
package provision

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"janusops/pkg/configuration"
	"janusops/pkg/remote"
	"janusops/pkg/render"
	"janusops/pkg/types"

	log "github.com/sirupsen/logrus"
)

type Provisioner struct {
	cfg       *configuration.Config
	group     *remote.Group
	render    *render.Renderer
	instances types.InstancesByRegion
	roles     *types.Roles
}

func New(cfg *configuration.Config, group *remote.Group, r *render.Renderer, instances types.InstancesByRegion) *Provisioner {
	return &Provisioner{
		cfg:       cfg,
		group:     group,
		render:    r,
		instances: instances,
		roles:     types.NewRoles(instances, cfg.Cluster.Leader),
	}
}

func (p *Provisioner) Roles() *types.Roles {
	return p.roles
}

func (p *Provisioner) leader() (string, error) {
	leader := p.roles.Leader()
	if leader == "" {
		return "", errors.New("no leader host: inventory is empty and cluster.leader is not set")
	}

	return leader, nil
}

func (p *Provisioner) put(ctx context.Context, ex remote.Executor, name render.Name, data any, dest string, opts remote.PutOptions) error {
	contents, err := p.render.Render(name, data)
	if err != nil {
		return err
	}

	log.Debugf("[%s] %s:\n%s", ex.Host(), dest, contents)

	return ex.Put(ctx, strings.NewReader(contents), dest, opts)
}

func (p *Provisioner) homeDir() string {
	if p.cfg.SSH.User == "root" {
		return "/root"
	}

	return path.Join("/home", p.cfg.SSH.User)
}

// DisableSSHHostCheck lets cluster hosts ssh to each other without prompting
// for unknown host keys.
func (p *Provisioner) DisableSSHHostCheck(ctx context.Context) error {
	dest := path.Join(p.homeDir(), ".ssh", "config")

	return p.group.Each(ctx, p.roles.All, true, func(ctx context.Context, ex remote.Executor) error {
		return p.put(ctx, ex, render.SSHConfig, nil, dest, remote.PutOptions{Mode: 0o600})
	})
}

// Ping checks that the leader reaches every cluster instance.
func (p *Provisioner) Ping(ctx context.Context) error {
	return p.group.Each(ctx, p.roles.Leaders, false, func(ctx context.Context, ex remote.Executor) error {
		for _, ip := range p.instances.PublicIPs() {
			out, err := ex.Run(ctx, "ping -c 3 "+ip)
			if err != nil {
				return err
			}
			log.Infof("[%s] ping %s:\n%s", ex.Host(), ip, out)
		}
		return nil
	})
}

// PutLimitsConfig installs the file descriptor and process limits.
func (p *Provisioner) PutLimitsConfig(ctx context.Context) error {
	data := &render.LimitsData{Users: []string{"*", "root"}, NoFile: 65536, NProc: 65536}

	return p.group.Each(ctx, p.roles.ServersAndLeaders(), false, func(ctx context.Context, ex remote.Executor) error {
		return p.put(ctx, ex, render.Limits, data, "/etc/security/limits.conf", remote.PutOptions{UseSudo: true, Mode: 0o644})
	})
}

func (p *Provisioner) configDir() string {
	return path.Join(p.cfg.Cluster.NFSHome, "config")
}

func (p *Provisioner) String() string {
	return fmt.Sprintf("cluster %s (leader %s, %d hosts)", p.cfg.Cluster.Name, p.roles.Leader(), len(p.roles.All))
}
