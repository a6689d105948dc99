// Package cli provides the command-line interface for deptrack.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/raphaelgruber/deptrack/internal/backend"
	"github.com/raphaelgruber/deptrack/internal/config"
	"github.com/raphaelgruber/deptrack/internal/service"
	"github.com/raphaelgruber/deptrack/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// StoreOpener opens the dependency store for a command run.
type StoreOpener func(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error)

// app carries the state shared by every command of one invocation.
type app struct {
	open  StoreOpener
	clock func() time.Time
	theme Theme

	// Global flags
	verbose    bool
	jsonOutput bool
	storeName  string
	sqlitePath string

	cfg   config.Config
	store store.Store
	svc   *service.DependencyService
}

// NewRootCmd builds the command tree. A nil opener uses backend.Open.
func NewRootCmd(open StoreOpener) *cobra.Command {
	if open == nil {
		open = backend.Open
	}
	a := &app{open: open, clock: time.Now, theme: defaultTheme}

	rootCmd := &cobra.Command{
		Use:   "deptrack",
		Short: "Track software dependencies across test and production",
		Long: `Deptrack keeps a registry of software dependencies with the version
running in test and in production, when each environment was last updated and
when the next update is planned.

It reports version drift, overdue updates and stale dependencies. The same
operations are served to AI assistants by deptrack-server over MCP.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.connect,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.store != nil {
				if err := a.store.Close(cmd.Context()); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close store: %v\n", err)
				}
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&a.storeName, "store", "", "store backend (sqlite, surrealdb, memory)")
	rootCmd.PersistentFlags().StringVar(&a.sqlitePath, "sqlite-path", "", "path of the sqlite database")

	rootCmd.AddCommand(
		a.listCmd(),
		a.getCmd(),
		a.searchCmd(),
		a.existsCmd(),
		a.addCmd(),
		a.healthCmd(),
		a.staleCmd(),
		a.updatedCmd(),
		a.plannedCmd(),
		a.seedCmd(),
		a.remoteCmd(),
	)
	return rootCmd
}

// Execute runs the CLI against the configured store.
func Execute(ctx context.Context) error {
	return NewRootCmd(nil).ExecuteContext(ctx)
}

// connect loads configuration and opens the store before a command runs.
func (a *app) connect(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	remote := cmd.Annotations[remoteAnnotation] == "true"

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.storeName != "" {
		cfg.Store = a.storeName
	}
	if a.sqlitePath != "" {
		cfg.SQLitePath = a.sqlitePath
	}
	a.cfg = cfg
	if remote {
		return nil
	}

	level := slog.LevelWarn
	if a.verbose {
		level = cfg.LogLevel
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	st, err := a.open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	a.store = st
	a.svc = service.NewDependencyService(st,
		service.WithClock(a.clock),
		service.WithStalePolicy(cfg.StalePolicy),
		service.WithLogger(logger),
	)
	return nil
}

// printJSON writes v as indented JSON, the same shape the MCP tools return.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
