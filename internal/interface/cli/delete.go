package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a processing session",
	Long: `Delete a processing session. Locations and plot threads it contributed to are
kept, including their record of this session.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
