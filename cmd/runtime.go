package cmd

import (
	"context"
	"fmt"
	"os"

	"janusops/pkg/cloud"
	"janusops/pkg/cloud/awscloud"
	"janusops/pkg/provision"
	"janusops/pkg/remote"
	"janusops/pkg/render"
	"janusops/pkg/secgroup"
	"janusops/pkg/types"

	_ "janusops/pkg/cloud/static"
	_ "janusops/pkg/discovery"

	log "github.com/sirupsen/logrus"
)

func loadInstances(ctx context.Context, regions []string) (types.InstancesByRegion, error) {
	p, err := cloud.GetProvider(cfg.Inventory.Provider, cfg)
	if err != nil {
		return nil, err
	}

	instances, err := p.Instances(ctx, regions)
	if err != nil {
		return nil, err
	}

	log.Infof("created instances: %d in %v", len(instances.PublicIPs()), instances.Regions())

	return instances, nil
}

func newReconciler() *secgroup.Reconciler {
	return secgroup.NewReconciler(cfg, awscloud.NewClientFactory())
}

func newDialer() (remote.Dialer, error) {
	keyPath := cfg.SSH.GetPrivateKeyPath()

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading ssh private key: %w", err)
	}

	return remote.NewSSHDialer(remote.SSHConfig{
		User:        cfg.SSH.User,
		Port:        cfg.SSH.Port,
		PrivateKey:  key,
		DialTimeout: cfg.SSH.DialTimeout(),
	})
}

func newProvisioner(ctx context.Context) (*provision.Provisioner, error) {
	instances, err := loadInstances(ctx, cfg.AWS.Regions)
	if err != nil {
		return nil, err
	}

	d, err := newDialer()
	if err != nil {
		return nil, err
	}

	p := provision.New(cfg, remote.NewGroup(d, cfg.SSH.Parallelism), render.New(cfg.NFS.TemplateDir), instances)
	log.Infof("provisioning %s", p)

	return p, nil
}
