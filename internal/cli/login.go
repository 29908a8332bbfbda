package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice-cli/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend and store the session",
		Long: "Exchanges email + password for a bearer token and saves it in the\n" +
			"session file. The password can come from --password, the\n" +
			"BACKOFFICE_PASSWORD environment variable, or stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				password = envOr("BACKOFFICE_PASSWORD", "")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			token, err := app.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := app.store.Save(&session.Session{
				Token:   token,
				Email:   email,
				SavedAt: time.Now(),
			}); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			out := map[string]any{"email": email, "loggedIn": true}
			if exp, ok := session.TokenExpiry(token); ok {
				out["expiresAt"] = exp.Format(time.RFC3339)
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&email, "email", envOr("BACKOFFICE_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prefer BACKOFFICE_PASSWORD or stdin)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.Store{Dir: app.DataDir}
			if err := store.Clear(); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"loggedIn": false})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := session.Store{Dir: app.DataDir}
			sess, err := store.Load()
			if err != nil {
				return err
			}
			out := map[string]any{
				"loggedIn": sess.Token != "",
				"email":    sess.Email,
			}
			if exp, ok := session.TokenExpiry(sess.Token); ok {
				out["expiresAt"] = exp.Format(time.RFC3339)
				out["expired"] = session.Expired(sess.Token, time.Now())
			}
			return writeOut(cmd, app, out)
		},
	}
}
