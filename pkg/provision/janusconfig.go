package provision

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"janusops/pkg/remote"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const hostsFileName = "aws_hosts.yml"

type awsHosts struct {
	Host map[string]string `yaml:"host"`
}

// HostsConfig names every non-leader instance "<region>-<n>", numbered per
// region in inventory order.
func (p *Provisioner) HostsConfig() ([]byte, error) {
	hosts := awsHosts{Host: make(map[string]string)}
	leader := p.roles.Leader()

	for _, region := range p.instances.Regions() {
		cnt := 0
		for _, inst := range p.instances[region] {
			if inst.PublicIP == "" || inst.PublicIP == leader {
				continue
			}
			hosts.Host[fmt.Sprintf("%s-%d", region, cnt)] = inst.PublicIP
			cnt++
		}
	}

	return yaml.Marshal(&hosts)
}

// PutJanusConfig copies local configuration files into the shared config
// directory on the leader, skipping files that are already identical, and
// writes the cluster host list next to them.
func (p *Provisioner) PutJanusConfig(ctx context.Context, copyConfigs []string) error {
	hostsYAML, err := p.HostsConfig()
	if err != nil {
		return err
	}

	return p.group.Each(ctx, p.roles.Leaders, false, func(ctx context.Context, ex remote.Executor) error {
		if _, err := ex.Run(ctx, "mkdir -p "+remote.ShellQuote(p.configDir())); err != nil {
			return err
		}

		for _, c := range copyConfigs {
			dest := path.Join(p.configDir(), filepath.Base(c))

			same, err := checksumsEqual(ctx, ex, c, dest)
			if err != nil {
				return err
			}
			if same {
				log.Debugf("[%s] %s is up to date", ex.Host(), dest)
				continue
			}

			if err := putFile(ctx, ex, c, dest); err != nil {
				return err
			}
		}

		dest := path.Join(p.configDir(), hostsFileName)
		return ex.Put(ctx, bytes.NewReader(hostsYAML), dest, remote.PutOptions{})
	})
}

func putFile(ctx context.Context, ex remote.Executor, local, dest string) error {
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	log.Infof("[%s] copying %s to %s", ex.Host(), local, dest)

	return ex.Put(ctx, f, dest, remote.PutOptions{})
}
