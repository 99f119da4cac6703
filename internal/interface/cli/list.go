package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List processing sessions",
	Long: `List processing sessions, newest session date first.

The optional query supports filters:
  tag:<name>               sessions carrying the tag (repeatable)
  status:complete|pending  finished or unfinished sessions
  after:<date>             session date on or after (2024-03-01, yesterday, 2-weeks-ago)
  before:<date>            session date before
Anything else is matched against title and transcript.

Examples:
  chronicler list
  chronicler list tag:sandpoint status:pending
  chronicler list after:2024-01-01 goblin`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of sessions to display")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	filters := filter.ParseQuery(strings.Join(args, " "))
	sessions, err := a.svc.List(filters)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		if !filters.Empty() {
			fmt.Println("No sessions match the query.")
		} else {
			fmt.Println("No sessions yet. Run 'chronicler new' to start one.")
		}
		return nil
	}

	total := len(sessions)
	if listLimit > 0 && total > listLimit {
		sessions = sessions[:listLimit]
	}
	fmt.Printf("Showing %d of %d session(s)\n\n", len(sessions), total)

	machine := a.svc.Machine()
	for i, s := range sessions {
		status := fmt.Sprintf("phase %d/%d", s.CurrentPhaseIndex, len(s.Phases))
		if machine.IsComplete(s) {
			status = "complete"
		}
		fmt.Printf("[%d] %s  %s\n", i+1, s.ID, s.Title)
		fmt.Printf("    Date: %s  Progress: %d%% (%s)\n", s.Date, machine.ProgressPercent(s), status)
		if len(s.Tags) > 0 {
			fmt.Printf("    Tags: %s\n", tags.Format(s.Tags))
		}
		fmt.Printf("    Updated: %s\n", humanize.Time(s.Modified))
		fmt.Println()
	}
	return nil
}
