package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	respondFile      string
	respondClipboard bool
	respondAdvance   bool
)

var respondCmd = &cobra.Command{
	Use:   "respond <session-id>",
	Short: "Store the AI response for the current phase",
	Long: `Store the response for the session's current phase, replacing any earlier one.
The response is read from --file, the clipboard, or stdin.

Examples:
  chronicler respond 1710400000000-abc1234 --clipboard
  chronicler respond 1710400000000-abc1234 --file extract.md --advance
  pbpaste | chronicler respond 1710400000000-abc1234`,
	Args: cobra.ExactArgs(1),
	RunE: runRespond,
}

func init() {
	rootCmd.AddCommand(respondCmd)
	respondCmd.Flags().StringVarP(&respondFile, "file", "f", "", "Read response from file")
	respondCmd.Flags().BoolVar(&respondClipboard, "clipboard", false, "Read response from clipboard")
	respondCmd.Flags().BoolVarP(&respondAdvance, "advance", "a", false, "Advance after saving")
}

func runRespond(cmd *cobra.Command, args []string) error {
	text, err := readInput(respondFile, respondClipboard)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.svc.SaveResponse(args[0], text)
	if err != nil {
		return err
	}
	phase := session.CurrentPhase()
	fmt.Printf("Saved phase %d (%s) response: %d characters\n", phase.Number, phase.Name, len([]rune(text)))

	if respondAdvance {
		return advance(a, session.ID)
	}
	fmt.Printf("Next: chronicler advance %s\n", session.ID)
	return nil
}
