package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <session-id>",
	Short: "Merge a completed session into the knowledge base again",
	Long: `Parse a completed session's final document and merge it again. Entities that
already list the session are left unchanged, so this is safe to repeat.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func init() {
	rootCmd.AddCommand(reprocessCmd)
}

func runReprocess(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.svc.Reprocess(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Reprocessed session %s\n", args[0])
	printMerge(result)
	return nil
}
