// Package tui is the interactive admin console: a menu of managed screens,
// each one the same paginated list + modal workflows machine.
package tui

import (
	"context"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/audit"
	"backoffice-cli/internal/config"
	"backoffice-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Config *config.Config
	// SessionDir overrides where session/uistate/journal files live.
	SessionDir string
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()

	store := session.Store{Dir: opts.SessionDir}
	client := api.New(opts.Config.API.BaseURL, opts.Config.API.Timeout)
	if sess, err := store.Load(); err == nil && sess.Token != "" {
		client.SetToken(sess.Token)
	}

	journalDir := opts.SessionDir
	if journalDir == "" {
		if d, err := session.DefaultDir(); err == nil {
			journalDir = d
		}
	}
	// Journal failures are non-fatal: a nil journal is a no-op sink.
	journal, _ := audit.Open(context.Background(), journalDir)
	defer journal.Close()

	m := newAppModel(opts.Config, client, store, journal)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// The 401 hook can fire from any request goroutine; route it into the
	// update loop.
	client.OnSessionExpired(func() {
		_ = store.Clear()
		p.Send(sessionExpiredMsg{})
	})

	_, err := p.Run()
	return err
}
