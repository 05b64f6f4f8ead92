// Command lucid runs the memory retrieval engine over caller-owned YAML
// corpora: ranked retrieval, raw spreading, graph diagnostics, embedding,
// and video ingestion.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zeattacker/lucid-go/internal/profiling"
)

func main() {
	// Best effort: missing .env is fine
	_ = godotenv.Load()

	if path := os.Getenv("LUCID_PROFILE_LOG"); path != "" {
		if err := profiling.SetSink(path); err != nil {
			fmt.Fprintf(os.Stderr, "profiling sink: %v\n", err)
		}
		defer profiling.CloseSink()
	}

	root := &cobra.Command{
		Use:   "lucid",
		Short: "Cognitively-grounded memory retrieval engine",
		Long: `lucid retrieves memories the way people do: ACT-R base-level decay,
MINERVA 2 instance matching, and spreading activation over an association
graph. Corpora are plain YAML files owned by the caller; nothing is
persisted.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRetrieveCmd(),
		newSpreadCmd(),
		newPageRankCmd(),
		newEmbedCmd(),
		newVideoCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
