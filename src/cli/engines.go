// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/search/manager"
	"github.com/apimgr/seesea/src/search/orchestrator"
)

func newListEnginesCommand(orc *orchestrator.Orchestrator) *cobra.Command {
	var (
		enabledOnly  bool
		disabledOnly bool
		withStats    bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "list-engines",
		Short: "List registered search engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := orc.Manager()
			infos := mgr.List()

			var filtered []model.EngineInfo
			for _, info := range infos {
				if enabledOnly && info.Disabled {
					continue
				}
				if disabledOnly && !info.Disabled {
					continue
				}
				filtered = append(filtered, info)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(filtered)
			}
			return printEngines(cmd, mgr, filtered, withStats)
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "show only enabled engines")
	cmd.Flags().BoolVar(&disabledOnly, "disabled", false, "show only disabled engines")
	cmd.Flags().BoolVar(&withStats, "stats", false, "include per-engine failure/recovery state")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")

	return cmd
}

func printEngines(cmd *cobra.Command, mgr *manager.Manager, infos []model.EngineInfo, withStats bool) error {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)

	if withStats {
		fmt.Fprintln(tw, "NAME\tTYPE\tSTATUS\tFAILURES\tRECOVERY")
		for _, info := range infos {
			state, ok := mgr.State(info.Name)
			failures := 0
			recovery := "-"
			if ok {
				failures = state.ConsecutiveFailures
				if !state.RecoveryDeadline.IsZero() {
					recovery = state.RecoveryDeadline.Format("15:04:05")
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", info.Name, info.EngineType, info.Status, failures, recovery)
		}
	} else {
		fmt.Fprintln(tw, "NAME\tTYPE\tSTATUS")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.EngineType, info.Status)
		}
	}

	return tw.Flush()
}
