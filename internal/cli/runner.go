package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/idilsaglam/todoproxy/internal/astra"
	"github.com/idilsaglam/todoproxy/internal/config"
	"github.com/idilsaglam/todoproxy/internal/server"
	"github.com/idilsaglam/todoproxy/internal/todos"
	"github.com/idilsaglam/todoproxy/internal/ui"
)

// app carries what every subcommand needs once the root has run.
type app struct {
	configPath string
	verbose    bool
	theme      string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "todo - proxy and viewer for an Astra todo table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			ui.SetTheme(a.theme)

			zc := zap.NewProductionConfig()
			if a.verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			a.logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "todo.yaml", "path to YAML config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.theme, "theme", "classic", "classic | neon | mono")

	root.AddCommand(a.serveCmd(), a.viewCmd(), a.rowsCmd(), a.tablesCmd())
	return root
}

func (a *app) astraOptions() astra.Options {
	c := a.cfg.Astra
	return astra.Options{
		DatabaseID: c.DatabaseID,
		Region:     c.Region,
		Token:      c.Token,
		Keyspace:   c.Keyspace,
		BaseURL:    c.BaseURL,
		Timeout:    c.Timeout,
	}
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GET /getTodos and GET /testAPI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			opts := a.astraOptions()
			srv := server.New(
				todos.NewRowFetcher(opts, a.logger).Rows,
				todos.NewSchemaFetcher(opts, a.logger).Data,
				server.Options{
					StrictErrors: a.cfg.Server.StrictErrors,
					AllowOrigin:  a.cfg.Server.AllowOrigin,
				},
				a.logger,
			)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx, a.cfg.Server.Addr); err != nil {
				return err
			}
			ui.OK(cmd.ErrOrStderr(), "stopped listening on "+a.cfg.Server.Addr)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) viewCmd() *cobra.Command {
	var (
		url  string
		once bool
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the todo table fetched from the proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = a.cfg.Display.URL
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err := ui.Run(ctx, ui.Options{URL: url, Once: once}, cmd.OutOrStdout())
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "rows endpoint (overrides config)")
	cmd.Flags().BoolVar(&once, "once", false, "print once and exit")
	return cmd
}

func (a *app) rowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows",
		Short: "Fetch the todo rows straight from the database and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := todos.NewRowFetcher(a.astraOptions(), a.logger).Rows(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
}

func (a *app) tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the keyspace's tables straight from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := todos.NewSchemaFetcher(a.astraOptions(), a.logger).Data(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}

// Run executes the command tree and returns an exit code (0 ok, 1 error).
func Run(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		ui.Fail(err.Error())
		return 1
	}
	return 0
}
