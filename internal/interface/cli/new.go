package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/tags"
)

var (
	newTitle     string
	newDate      string
	newTags      string
	newFile      string
	newClipboard bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start processing a session transcript",
	Long: `Create a processing session from a transcript. The transcript is read from
--file, the clipboard, or stdin.

Examples:
  chronicler new --title "Session 12" --file session12.txt
  chronicler new --title "Session 12" --date 2024-03-02 --tags sandpoint,goblins < session12.txt
  chronicler new --title "Session 12" --clipboard`,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVarP(&newTitle, "title", "t", "", "Session title (required)")
	newCmd.Flags().StringVarP(&newDate, "date", "d", time.Now().Format("2006-01-02"), "Session date")
	newCmd.Flags().StringVar(&newTags, "tags", "", "Comma-separated tags")
	newCmd.Flags().StringVarP(&newFile, "file", "f", "", "Read transcript from file")
	newCmd.Flags().BoolVar(&newClipboard, "clipboard", false, "Read transcript from clipboard")
}

func runNew(cmd *cobra.Command, args []string) error {
	transcript, err := readInput(newFile, newClipboard)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.svc.Create(newTitle, newDate, transcript, tags.Normalize(newTags))
	if err != nil {
		return err
	}

	fmt.Printf("Created session %s\n", session.ID)
	fmt.Printf("  Title: %s\n", session.Title)
	if session.Date != "" {
		fmt.Printf("  Date:  %s\n", session.Date)
	}
	if len(session.Tags) > 0 {
		fmt.Printf("  Tags:  %s\n", tags.Format(session.Tags))
	}
	fmt.Println()
	fmt.Printf("Next: chronicler prompt %s\n", session.ID)
	return nil
}
