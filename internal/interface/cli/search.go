package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/search"
)

var (
	searchLimit int
	searchKind  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search locations and plot threads",
	Long: `Full-text search across the knowledge base.

Uses FTS5 with porter stemming; queries with punctuation fall back to substring
matching. An entry whose name equals the query is listed first.

Examples:
  chronicler search ameiko
  chronicler search "goblin festival" --kind plot-thread
  chronicler search "tower-top"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Restrict to location or plot-thread")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	kind := models.EntityKind(searchKind)
	if kind != "" && kind != models.KindLocation && kind != models.KindPlotThread {
		return fmt.Errorf("unknown kind %q (use %s or %s)", searchKind, models.KindLocation, models.KindPlotThread)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := search.SearchKind(a.db, query, kind, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No results found for: %s\n", query)
		return nil
	}

	fmt.Printf("Found %d result(s) for: %s\n\n", len(results), query)
	for _, r := range results {
		fmt.Printf("%s [%s]\n", r.Name, r.Kind)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", truncate(r.Snippet, 120))
		}
	}
	return nil
}
