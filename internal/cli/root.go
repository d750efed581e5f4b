// Package cli defines the cobra command tree for project-tracker.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/evcraddock/project-tracker/internal/activity"
	"github.com/evcraddock/project-tracker/internal/comment"
	"github.com/evcraddock/project-tracker/internal/db"
	"github.com/evcraddock/project-tracker/internal/logging"
	"github.com/evcraddock/project-tracker/internal/people"
	"github.com/evcraddock/project-tracker/internal/project"
	"github.com/evcraddock/project-tracker/internal/target"
)

var (
	flagFormat string
	flagDB     string
	flagDev    bool

	settings CLIConfig
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pt",
		Short: "Track projects, tasks and the comments on them",
		Long: "A tool to track projects and discuss their tasks, conversations, pages and notes. " +
			"Comments log time, notify watchers and keep the project's activity feed.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: ~/.config/pt/tracker.db)")
	root.PersistentFlags().BoolVar(&flagDev, "dev", false, "human-readable debug logging")

	root.AddCommand(
		newUserCmd(),
		newProjectCmd(),
		newTargetCmd(),
		newCommentCmd(),
		newUploadCmd(),
		newHoursCmd(),
		newActivityCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)

	logging.Instrument(root)
	return root
}

// setup loads configuration and configures logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd.Flags().Changed("dev"))
	if err != nil {
		return err
	}
	settings = cfg
	logging.Setup(os.Stderr, settings.Dev)
	return nil
}

// app holds the stores and services a command works with.
type app struct {
	db        *sql.DB
	users     *people.Store
	directory *people.CachedDirectory
	projects  *project.Repository
	targets   *target.Store
	comments  *comment.Repository
	activity  *activity.Repository
	service   *comment.Service
}

// openApp opens the database and wires the stores together.
func openApp() (*app, error) {
	database, err := openDB()
	if err != nil {
		return nil, err
	}

	a := &app{
		db:       database,
		users:    people.NewStore(database),
		projects: project.NewRepository(database),
		targets:  target.NewStore(database),
		comments: comment.NewRepository(database),
		activity: activity.NewRepository(database),
	}

	a.directory, err = people.NewCachedDirectory(a.users, settings.UserCacheSize)
	if err != nil {
		closeDB(database)
		return nil, fmt.Errorf("creating user cache: %w", err)
	}
	a.service = comment.NewService(a.comments, a.targets, a.directory, a.activity)

	return a, nil
}

func (a *app) close() {
	closeDB(a.db)
}

// openDB opens the SQLite database at the configured path.
func openDB() (*sql.DB, error) {
	path := settings.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return db.Open(path)
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *sql.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}

// output returns where a command writes its results.
func output(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
