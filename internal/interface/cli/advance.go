package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/merge"
)

var advanceCmd = &cobra.Command{
	Use:   "advance <session-id>",
	Short: "Accept the current phase and move to the next",
	Long: `Validate the current phase's response and move the session on. Accepting the
last phase merges its locations and plot threads into the knowledge base.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdvance,
}

func init() {
	rootCmd.AddCommand(advanceCmd)
}

func runAdvance(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return advance(a, args[0])
}

func advance(a *app, id string) error {
	result, err := a.svc.Advance(id)
	if err != nil {
		return err
	}

	session := result.Session
	if !result.Completed {
		phase := session.CurrentPhase()
		fmt.Printf("Now on phase %d: %s (%d%% done)\n", phase.Number, phase.Name, a.svc.Machine().ProgressPercent(session))
		fmt.Printf("Next: chronicler prompt %s\n", session.ID)
		return nil
	}

	fmt.Printf("Session %q complete.\n", session.Title)
	printMerge(result.Merge)
	return nil
}

func printMerge(r *merge.Result) {
	if r == nil {
		return
	}
	fmt.Printf("  Locations:    %d new, %d updated, %d unchanged\n",
		r.Locations.Created, r.Locations.Updated, r.Locations.Unchanged)
	fmt.Printf("  Plot threads: %d new, %d updated, %d unchanged\n",
		r.PlotThreads.Created, r.PlotThreads.Updated, r.PlotThreads.Unchanged)
}
