package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raysh454/pharmaflow/internal/agents"
)

func newAgentsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List the agent catalog for the current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTYPE\tUNIT\tDESCRIPTION")
			for _, a := range agents.Catalog(agents.DefaultUnits, cfg.Report.Enabled) {
				unit := a.Unit
				if unit == "" {
					unit = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Name, a.Type, unit, a.Description)
			}
			fmt.Fprintf(tw, "\nmode: %s\n", cfg.Agents.Mode)
			return tw.Flush()
		},
	}
}
