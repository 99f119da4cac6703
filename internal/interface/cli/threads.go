package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var threadsStatus string

var threadsCmd = &cobra.Command{
	Use:   "threads",
	Short: "List knowledge base plot threads",
	Long: `List every plot thread with its status and priority.

Examples:
  chronicler threads
  chronicler threads --status active`,
	RunE: runThreads,
}

func init() {
	rootCmd.AddCommand(threadsCmd)
	threadsCmd.Flags().StringVar(&threadsStatus, "status", "", "Only show threads with this status")
}

func runThreads(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	threads, err := a.db.ListPlotThreads()
	if err != nil {
		return err
	}

	shown := 0
	for _, th := range threads {
		if threadsStatus != "" && !strings.EqualFold(th.Status, threadsStatus) {
			continue
		}
		shown++
		status := th.Status
		if status == "" {
			status = "unknown"
		}
		if th.Priority != "" {
			status += ", " + th.Priority + " priority"
		}
		fmt.Printf("%s (%s)\n", th.Name, status)
		if th.Summary != "" {
			fmt.Printf("    %s\n", truncate(th.Summary, 100))
		}
		if len(th.RelatedLocations) > 0 {
			fmt.Printf("    Locations: %s\n", strings.Join(th.RelatedLocations, ", "))
		}
	}

	if shown == 0 {
		fmt.Println("No plot threads found.")
	}
	return nil
}
