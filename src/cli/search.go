// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/search/orchestrator"
)

func newSearchCommand(orc *orchestrator.Orchestrator) *cobra.Command {
	var (
		page     int
		pageSize int
		engines  string
		language string
		region   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a search and print the ranked results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := model.DefaultSearchQuery()
			q.Query = strings.Join(args, " ")
			if page > 0 {
				q.Page = page
			}
			if pageSize > 0 {
				q.PageSize = pageSize
			}
			q.Language = language
			q.Region = region
			if engines != "" {
				q.Params = map[string]string{"engines": engines}
			}

			resp, err := orc.Search(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return printSearchResults(cmd, resp)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "result page (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "results per page")
	cmd.Flags().StringVar(&engines, "engines", "", "comma-separated engine names to restrict to")
	cmd.Flags().StringVar(&language, "language", "", "language hint (e.g. en)")
	cmd.Flags().StringVar(&region, "region", "", "region hint (e.g. US)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON response")

	return cmd
}

func printSearchResults(cmd *cobra.Command, resp model.SearchResponse) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d results for %q (%dms, cached=%v)\n\n", resp.TotalCount, resp.Query.Query, resp.QueryTimeMs, resp.Cached)

	titleWidth := 60
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 40 {
		titleWidth = w - 30
	}

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tENGINE\tURL")
	for i, item := range resp.Results {
		title := item.Title
		if len(title) > titleWidth {
			title = title[:titleWidth-3] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, title, item.Engine, item.URL)
	}
	return tw.Flush()
}
