package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neilberkman/chronicler/internal/core/config"
	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/workflow"
	"github.com/neilberkman/chronicler/internal/pkg/logger"
)

var (
	dbPath      string
	configDir   string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Validation failed: %s\n", verr.Reason)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chronicler",
	Short: "Campaign session chronicler",
	Long: `chronicler - turn tabletop session transcripts into a campaign wiki

Each transcript goes through three phases (Extract, Summarize, Refine). For each
phase chronicler builds a prompt, you run it with the AI tool of your choice and
paste the response back. When the last phase is accepted, the locations and plot
threads it describes are merged into a searchable knowledge base.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to TUI if no subcommand specified
		return tuiCmd.RunE(cmd, args)
	},
}

func init() {
	defaultDir := config.DefaultDir()
	defaultDB := filepath.Join(defaultDir, "chronicler.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Database path")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", defaultDir, "Config directory")
}

// app bundles what every command needs
type app struct {
	cfg *config.Config
	db  *db.DB
	svc *pipeline.Service
	log logger.Logger
}

// openApp loads config, opens the log and database, and builds the pipeline.
// A broken config or log file is reported and replaced by defaults.
func openApp() (*app, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	var log logger.Logger = logger.Nop{}
	if cfg.LogFile != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		} else {
			log = fileLog
		}
	}

	database, err := db.New(dbPath)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	machine := workflow.New(workflow.DefaultPhases(), cfg.PromptTemplates)
	machine.MinResponseLength = cfg.MinResponseLength

	return &app{
		cfg: cfg,
		db:  database,
		svc: pipeline.New(database, machine, log),
		log: log,
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	_ = a.log.Sync()
}
