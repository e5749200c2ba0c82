package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelfscan",
		Short: "Turn bookshelf photos into bibliographic records",
		Long: `Shelfscan identifies the books in a photograph of a bookshelf using a
vision-capable LLM, then resolves each book against Open Library to attach
ISBNs, cover images, and publication metadata.

Large photos are partitioned into overlapping regions that are classified in
parallel, deduplicated, and cleaned up by a text-only correction pass.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
