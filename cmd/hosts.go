package cmd

import (
	"github.com/spf13/cobra"
)

var copyConfigs string

var disableSSHHostCheck = &cobra.Command{
	Use:   "ssh-config",
	Short: "Disable ssh host key checking between cluster hosts",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.DisableSSHHostCheck(cmd.Context())
	},
}

var ping = &cobra.Command{
	Use:   "ping",
	Short: "Ping every cluster instance from the leader",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.Ping(cmd.Context())
	},
}

var limits = &cobra.Command{
	Use:   "limits",
	Short: "Install /etc/security/limits.conf on every host",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.PutLimitsConfig(cmd.Context())
	},
}

var janusConfig = &cobra.Command{
	Use:   "janus-config",
	Short: "Copy config files and the cluster host list into the shared config directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newProvisioner(cmd.Context())
		if err != nil {
			return err
		}

		return p.PutJanusConfig(cmd.Context(), splitList(copyConfigs))
	},
}

func init() {
	janusConfig.Flags().StringVar(&copyConfigs, "copy-configs", "", "colon separated local files to copy")

	root.AddCommand(disableSSHHostCheck, ping, limits, janusConfig)
}
