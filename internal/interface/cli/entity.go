package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/kb"
)

var entityRaw bool

var entityCmd = &cobra.Command{
	Use:   "entity <name>",
	Short: "Show a location or plot thread",
	Long: `Show one knowledge base entry by name (case-insensitive): its fields, links to
other entries (dangling links are marked missing), the sessions that contributed
to it and the accumulated pages.

Examples:
  chronicler entity "rusty dragon"
  chronicler entity Goblin Raids --raw`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEntity,
}

func init() {
	rootCmd.AddCommand(entityCmd)
	entityCmd.Flags().BoolVar(&entityRaw, "raw", false, "Print only the accumulated pages")
}

func runEntity(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := kb.Lookup(a.db, name)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("no location or plot thread named %q", name)
	}

	if entityRaw {
		if entry.Location != nil {
			fmt.Println(entry.Location.RawContent)
		} else {
			fmt.Println(entry.PlotThread.RawContent)
		}
		return nil
	}

	text, err := kb.Describe(a.db, entry)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}
