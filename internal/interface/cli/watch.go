package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/daemon"
	"github.com/neilberkman/chronicler/internal/core/importer"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

var (
	watchTags   string
	watchSettle time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import transcripts as they are written to a directory",
	Long: `Import every transcript already in a directory, then keep watching it and
create a session for each new or changed transcript file. A file is imported
once it has been quiet for --settle. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchTags, "tags", "", "Comma-separated tags added to every session")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", daemon.DefaultSettle, "Quiet period before a changed file is imported")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	imp := importer.New(a.db, a.svc, a.log)
	imp.Tags = tags.Normalize(watchTags)

	w, err := daemon.New(imp, args[0], a.log)
	if err != nil {
		return err
	}
	w.Settle = watchSettle
	w.OnImport = func(s *models.ProcessingSession) {
		fmt.Printf("Created session %s (%s)\n", s.ID, s.Title)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	if err := w.Start(ctx); err != nil {
		return err
	}

	stats := w.Stats()
	fmt.Printf("\nImported %d sessions, skipped %d, %d errors (up %s)\n",
		stats.Imported, stats.Skipped, stats.Errors, time.Since(stats.StartTime).Round(time.Second))
	return nil
}
