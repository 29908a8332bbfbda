package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/audit"
	"backoffice-cli/internal/config"
	"backoffice-cli/internal/format"
	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/session"
	"backoffice-cli/internal/tui"

	"github.com/spf13/cobra"
)

// App carries the persistent flag state and the lazily built collaborators
// shared by every subcommand.
type App struct {
	ConfigPath string
	APIURL     string
	DataDir    string
	Format     string
	PrettyJSON bool
	Verbose    bool

	cfg     *config.Config
	client  *api.Client
	store   session.Store
	journal *audit.Journal
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "backoffice",
		Short:        "Back-office admin console (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  backoffice

  # Log in first
  backoffice login --email ops@example.com

  # Scriptable commands
  backoffice staff list --search ada --status ACTIVE
  backoffice banners bulk-status DEACTIVE --id b1 --id b2
  backoffice history --resource subject
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("BACKOFFICE_CONFIG", ""), "Path to config file (yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Backend base URL (overrides config)")
	cmd.PersistentFlags().StringVar(&app.DataDir, "data-dir", envOr("BACKOFFICE_DATA_DIR", ""), "Directory for session + local history (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BACKOFFICE_FORMAT", "json"), "Output format (json|edn|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Log request diagnostics to stderr")

	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		_ = app.journal.Close()
	}

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	for _, res := range resource.All() {
		cmd.AddCommand(newResourceCmd(app, res))
	}

	return cmd
}

// setup builds the client/session pair. Called by every command that talks
// to the backend.
func (app *App) setup(cmd *cobra.Command) error {
	if app.client != nil {
		return nil
	}
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	app.cfg = cfg
	if strings.TrimSpace(app.APIURL) != "" {
		cfg.API.BaseURL = app.APIURL
	}

	var opts []api.Option
	if app.Verbose {
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, api.WithLogger(logger))
	}
	app.store = session.Store{Dir: app.DataDir}
	app.client = api.New(cfg.API.BaseURL, cfg.API.Timeout, opts...)
	app.client.OnSessionExpired(func() {
		_ = app.store.Clear()
		fmt.Fprintln(cmd.ErrOrStderr(), "session expired; run `backoffice login`")
	})

	sess, err := app.store.Load()
	if err == nil && sess.Token != "" {
		app.client.SetToken(sess.Token)
	}
	return nil
}

// openJournal is best effort: local history must never block a mutation.
func (app *App) openJournal(ctx context.Context) *audit.Journal {
	if app.journal != nil {
		return app.journal
	}
	dir := strings.TrimSpace(app.DataDir)
	if dir == "" {
		d, err := session.DefaultDir()
		if err != nil {
			return nil
		}
		dir = d
	}
	j, err := audit.Open(ctx, dir)
	if err != nil {
		return nil
	}
	app.journal = j
	return j
}

func (app *App) record(ctx context.Context, e audit.Entry) {
	_ = app.openJournal(ctx).Record(ctx, e)
}

func runTUI(app *App) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(app.APIURL) != "" {
		cfg.API.BaseURL = app.APIURL
	}
	return tui.Run(tui.Options{
		Config:     cfg,
		SessionDir: app.DataDir,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	f := app.Format
	if f == "table" {
		// Commands without a tabular shape fall back to JSON.
		f = "json"
	}
	return format.Write(cmd.OutOrStdout(), v, f, app.PrettyJSON)
}

func writeTableOut(cmd *cobra.Command, headers []string, rows [][]string) error {
	return format.WriteTable(cmd.OutOrStdout(), headers, rows)
}
