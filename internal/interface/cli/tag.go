package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/tags"
)

var tagCmd = &cobra.Command{
	Use:   "tag <session-id> <tags>",
	Short: "Replace a session's tags",
	Long: `Replace a session's tags with a comma-separated list. Pass "" to clear them.

Examples:
  chronicler tag 1710400000000-abc1234 sandpoint,goblins
  chronicler tag 1710400000000-abc1234 ""`,
	Args: cobra.MinimumNArgs(2),
	RunE: runTag,
}

func init() {
	rootCmd.AddCommand(tagCmd)
}

func runTag(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.svc.SetTags(args[0], tags.Normalize(strings.Join(args[1:], ",")))
	if err != nil {
		return err
	}
	if len(session.Tags) == 0 {
		fmt.Println("Tags cleared")
		return nil
	}
	fmt.Printf("Tags: %s\n", tags.Format(session.Tags))
	return nil
}
