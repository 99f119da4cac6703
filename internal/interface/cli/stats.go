package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  `Display session progress and knowledge base counts.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Println("Database Statistics")
	fmt.Println("===================")
	fmt.Println()
	fmt.Printf("Sessions:          %d (%d complete)\n", stats.TotalSessions, stats.CompletedSessions)
	fmt.Printf("Locations:         %d\n", stats.Locations)
	fmt.Printf("Plot Threads:      %d (%d active)\n", stats.PlotThreads, stats.ActiveThreads)
	fmt.Println()

	if stats.TotalSessions > 0 {
		fmt.Printf("Oldest Session:    %s\n", stats.OldestSession.Local().Format("Jan 2, 2006 3:04 PM"))
		fmt.Printf("Newest Session:    %s\n", stats.NewestSession.Local().Format("Jan 2, 2006 3:04 PM"))
		fmt.Println()
	}
	if stats.BusiestRegion != "" {
		fmt.Printf("Busiest Region:    %s (%d locations)\n", stats.BusiestRegion, stats.BusiestRegionSize)
		fmt.Println()
	}

	fileInfo, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	fmt.Printf("Database Location: %s\n", dbPath)
	fmt.Printf("Database Size:     %s\n", humanize.Bytes(uint64(fileInfo.Size())))
	return nil
}
