package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/kb"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base as a Markdown vault",
	Long: `Write every location and plot thread as a Markdown page, plus an index.md.
Pages are named after their entity so [[wiki links]] resolve in Obsidian.

Examples:
  chronicler export
  chronicler export --output ~/vaults/campaign`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "vault", "Output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := kb.ExportVault(a.db, exportOutput)
	if err != nil {
		return err
	}

	a.log.Info("cli", "vault exported", map[string]interface{}{
		"dir":          result.Dir,
		"locations":    result.Locations,
		"plot_threads": result.PlotThreads,
	})
	fmt.Printf("Exported %d location(s) and %d plot thread(s) to %s\n", result.Locations, result.PlotThreads, result.Dir)
	return nil
}
