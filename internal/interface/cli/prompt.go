package cli

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var promptCopy bool

var promptCmd = &cobra.Command{
	Use:   "prompt <session-id>",
	Short: "Print the prompt for a session's current phase",
	Long: `Print the prompt for the current phase. Run it with your AI tool, then store
the answer with 'chronicler respond'.

Set copy_prompts = true in config.toml to always copy to the clipboard.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().BoolVarP(&promptCopy, "copy", "c", false, "Copy the prompt to the clipboard")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	prompt, session, err := a.svc.Prompt(args[0])
	if err != nil {
		return err
	}

	if promptCopy || a.cfg.CopyPrompts {
		if err := clipboard.WriteAll(prompt); err != nil {
			return fmt.Errorf("failed to copy prompt: %w", err)
		}
		phase := session.CurrentPhase()
		fmt.Fprintf(os.Stderr, "Copied phase %d (%s) prompt to clipboard (%d characters)\n",
			phase.Number, phase.Name, len([]rune(prompt)))
		return nil
	}

	fmt.Println(prompt)
	return nil
}
