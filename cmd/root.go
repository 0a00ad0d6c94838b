package cmd

import (
	"context"
	"strings"

	"janusops/pkg/configuration"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        *configuration.Config
)

var root = &cobra.Command{
	Use:   "janusops",
	Short: "janusops provisions the janus cluster: security groups, NFS and host configuration",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)

		cfg, err = configuration.New(configPath)
		return err
	},
	SilenceUsage: true,
}

func Execute() {
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}

// splitList accepts the colon separated lists used by the old fabric tasks as
// well as comma separated ones.
func splitList(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' }) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

func init() {
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the configuration file (default $JANUSOPS_CONFIG or ~/.janusops.toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
