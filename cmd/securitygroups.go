package cmd

import (
	"fmt"
	"io"
	"sort"

	"janusops/pkg/secgroup"

	"github.com/jedib0t/go-pretty/v6/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	sgRegions string
	sgStrict  bool
)

var securityGroups = &cobra.Command{
	Use:     "security-groups",
	Aliases: []string{"sg"},
	Short:   "Manage the per-region cluster security groups",
}

var setupSecurityGroups = &cobra.Command{
	Use:   "setup",
	Short: "Create the cluster security group in every region, or find the existing one",
	RunE: func(cmd *cobra.Command, args []string) error {
		regions := cfg.AWS.Regions
		if sgRegions != "" {
			regions = splitList(sgRegions)
		}

		groups, err := newReconciler().EnsureGroups(cmd.Context(), regions)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Region", "Group"})
		for _, region := range sortedKeys(groups) {
			t.AppendRow(table.Row{region, groups[region]})
		}
		t.Render()

		return nil
	},
}

var authorizeSecurityGroups = &cobra.Command{
	Use:   "authorize",
	Short: "Allow traffic from every cluster instance and the allowed ranges into every group",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := loadInstances(cmd.Context(), cfg.AWS.Regions)
		if err != nil {
			return err
		}

		var regions []string
		if sgRegions != "" {
			regions = splitList(sgRegions)
		}

		log.Infof("setup security group for regions: %v", instances.Regions())

		report, err := newReconciler().AuthorizeClusterIngress(cmd.Context(), regions, instances)
		if err != nil {
			return err
		}

		printReport(cmd.OutOrStdout(), report)

		if err := report.Err(); err != nil {
			if sgStrict {
				return err
			}
			log.Warnf("%d region(s) failed, continuing", len(report.Failed()))
		}

		return nil
	},
}

var deleteSecurityGroup = &cobra.Command{
	Use:   "delete REGION",
	Short: "Delete the cluster security group in a region; errors are reported but not fatal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var region string
		if len(args) == 1 {
			region = args[0]
		}

		r := newReconciler()
		res := r.DeleteGroup(cmd.Context(), region)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.GroupName(region), res.Outcome)

		return nil
	},
}

func printReport(w io.Writer, report *secgroup.Report) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Region", "Group", "Outcome", "Added", "Error"})

	for _, res := range report.Results {
		var errText string
		if res.Err != nil {
			errText = res.Err.Error()
		}
		t.AppendRow(table.Row{res.Region, res.GroupID, res.Outcome, len(res.CIDRs), errText})
	}

	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func init() {
	securityGroups.PersistentFlags().StringVar(&sgRegions, "regions", "", "colon separated regions (default: aws.regions from the config)")
	authorizeSecurityGroups.Flags().BoolVar(&sgStrict, "strict", false, "exit non-zero if any region failed")

	securityGroups.AddCommand(setupSecurityGroups, authorizeSecurityGroups, deleteSecurityGroup)
	root.AddCommand(securityGroups)
}
