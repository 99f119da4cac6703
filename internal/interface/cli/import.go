package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/importer"
	"github.com/neilberkman/chronicler/internal/core/tags"
)

var importTags string

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Create sessions from transcript files",
	Long: `Create a processing session for every transcript file (.txt, .md, .jsonl)
under a directory, or for a single file.

Text files may begin with Title:, Date: and Tags: lines followed by a blank
line. Otherwise the title comes from the file name and the date from a
YYYY-MM-DD in the name or the file's modification time. Files whose content
was imported before are skipped.

Examples:
  chronicler import ~/campaigns/rotrl/transcripts
  chronicler import session13.md --tags rotrl`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importTags, "tags", "", "Comma-separated tags added to every session")
}

func runImport(cmd *cobra.Command, args []string) error {
	sourcePath := args[0]
	info, err := os.Stat(sourcePath)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	imp := importer.New(a.db, a.svc, a.log)
	imp.Tags = tags.Normalize(importTags)

	if !info.IsDir() {
		session, err := imp.ImportFile(sourcePath)
		if err != nil {
			return err
		}
		if session == nil {
			fmt.Println("Already imported, skipping")
			return nil
		}
		fmt.Printf("Created session %s (%s)\n", session.ID, session.Title)
		return nil
	}

	files, err := importer.FindFiles(sourcePath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No transcript files found")
		return nil
	}

	fmt.Printf("Importing transcripts from: %s\n", sourcePath)
	fmt.Printf("Database: %s\n\n", dbPath)

	progress := importer.NewProgressReporter(os.Stdout, len(files))
	summary, err := imp.ImportDirectory(sourcePath, progress)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	progress.Finish(summary)

	for _, session := range summary.Sessions {
		fmt.Printf("  %s  %s\n", session.ID, session.Title)
	}
	return nil
}
