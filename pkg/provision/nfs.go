package provision

import (
	"context"
	"fmt"

	"janusops/pkg/remote"
	"janusops/pkg/render"

	log "github.com/sirupsen/logrus"
)

const exportDir = "/export"

var nfsServerCommands = []string{
	"apt-get -y install nfs-kernel-server",
	"service nfs-kernel-server stop",
	"mkdir -p " + exportDir,
	"chmod 777 " + exportDir,
}

// ConfigNFSServer turns the leader into the cluster NFS server, restricted to
// cluster addresses, and reboots it.
func (p *Provisioner) ConfigNFSServer(ctx context.Context) error {
	leader, err := p.leader()
	if err != nil {
		return err
	}

	return p.group.On(ctx, leader, func(ctx context.Context, ex remote.Executor) error {
		for _, c := range nfsServerCommands {
			if _, err := ex.Sudo(ctx, c); err != nil {
				return err
			}
		}

		sudo := remote.PutOptions{UseSudo: true, Mode: 0o644}

		if err := p.put(ctx, ex, render.HostsDeny, nil, "/etc/hosts.deny", sudo); err != nil {
			return err
		}

		exports := &render.ExportsData{ExportDir: exportDir, Options: p.cfg.NFS.ExportOptions, IPs: p.roles.All}
		if err := p.put(ctx, ex, render.Exports, exports, "/etc/exports", sudo); err != nil {
			return err
		}

		allow := &render.HostsAllowData{IPs: p.roles.All}
		if err := p.put(ctx, ex, render.HostsAllow, allow, "/etc/hosts.allow", sudo); err != nil {
			return err
		}

		if _, err := ex.Sudo(ctx, "exportfs -a"); err != nil {
			return err
		}

		return remote.Reboot(ctx, p.group.Dialer(), ex, p.cfg.SSH.RebootWait())
	})
}

// MountNFS mounts the shared directory on every host. Failures are logged and
// do not stop other hosts.
func (p *Provisioner) MountNFS(ctx context.Context) error {
	return p.group.Each(ctx, p.roles.ServersAndLeaders(), true, func(ctx context.Context, ex remote.Executor) error {
		p.mount(ctx, ex)
		return nil
	})
}

func (p *Provisioner) mount(ctx context.Context, ex remote.Executor) {
	if _, err := ex.Sudo(ctx, "mount "+p.cfg.NFS.MountPoint); err != nil {
		log.Warnf("[%s] mounting %s failed: %s", ex.Host(), p.cfg.NFS.MountPoint, err)
	}
}

// NFSServerIP returns the public address of the leader instance.
func (p *Provisioner) NFSServerIP() (string, error) {
	leader, err := p.leader()
	if err != nil {
		return "", err
	}

	inst := p.instances.ByPublicIP(leader)
	if inst == nil || inst.PublicIP == "" {
		return "", fmt.Errorf("can't find leader instance %s or it has no public ip", leader)
	}

	return inst.PublicIP, nil
}

// ConfigNFSClient points every host's fstab at serverIP and mounts it. An empty
// serverIP means the leader.
func (p *Provisioner) ConfigNFSClient(ctx context.Context, serverIP string) error {
	if serverIP == "" {
		ip, err := p.NFSServerIP()
		if err != nil {
			return err
		}
		serverIP = ip
	}

	log.Infof("using %s for the nfs server", serverIP)

	data := &render.FstabData{ServerIP: serverIP, MountPoint: p.cfg.NFS.MountPoint}

	return p.group.Each(ctx, p.roles.ServersAndLeaders(), false, func(ctx context.Context, ex remote.Executor) error {
		if err := p.put(ctx, ex, render.Fstab, data, "/etc/fstab", remote.PutOptions{UseSudo: true, Mode: 0o644}); err != nil {
			return err
		}

		p.mount(ctx, ex)
		return nil
	})
}
