package cmd

import (
	"github.com/spf13/cobra"
)

var nfsServerIP string

var nfs = &cobra.Command{
	Use:   "nfs",
	Short: "Set up the shared NFS directory",
}

var nfsServer = &cobra.Command{
	Use:   "server",
	Short: "Install and export NFS on the leader, then reboot it",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.ConfigNFSServer(cmd.Context())
	},
}

var nfsClient = &cobra.Command{
	Use:   "client",
	Short: "Point every host's fstab at the NFS server and mount it",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.ConfigNFSClient(cmd.Context(), nfsServerIP)
	},
}

var nfsMount = &cobra.Command{
	Use:   "mount",
	Short: "Mount the NFS share on every host",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.MountNFS(cmd.Context())
	},
}

func init() {
	nfsClient.Flags().StringVar(&nfsServerIP, "server-ip", "", "NFS server address (default: the leader's public ip)")

	nfs.AddCommand(nfsServer, nfsClient, nfsMount)
	root.AddCommand(nfs)
}
