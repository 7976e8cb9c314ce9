// SPDX-License-Identifier: MIT

// Package cli is the command-line surface: search, list-engines, and an
// interactive REPL, built as a cobra command tree. Commands call the
// orchestrator directly in-process rather than through an HTTP client ,
// this binary IS the search engine, not a client of one.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/apimgr/seesea/src/search/orchestrator"
)

// Version is set by main at build time (ldflags) or left as "dev".
var Version = "dev"

// NewRootCommand builds the seesea command tree around an already-wired
// Orchestrator. orc must not be nil.
func NewRootCommand(orc *orchestrator.Orchestrator) *cobra.Command {
	root := &cobra.Command{
		Use:     "seesea",
		Short:   "Privacy-preserving metasearch engine",
		Version: Version,
		Long: `SeeSea fans a query out to many search backends in parallel, ranks and
deduplicates the results, and serves them back without ever exposing a
client's identity to the backends it queried.`,
	}

	root.AddCommand(newSearchCommand(orc))
	root.AddCommand(newListEnginesCommand(orc))
	root.AddCommand(newInteractiveCommand(orc))

	return root
}
