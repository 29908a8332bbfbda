package tui

import (
	"fmt"
	"strings"

	"backoffice-cli/internal/model"
	"backoffice-cli/internal/resource"

	"github.com/charmbracelet/bubbles/list"
)

type resourceMenuItem struct {
	res resource.Resource
}

func (i resourceMenuItem) FilterValue() string { return i.res.Title }
func (i resourceMenuItem) Title() string       { return i.res.Title }
func (i resourceMenuItem) Description() string {
	parts := []string{i.res.Key}
	if i.res.HasImage {
		parts = append(parts, "images")
	}
	if i.res.PreviewField != "" {
		parts = append(parts, "markdown")
	}
	return strings.Join(parts, " · ")
}

// recordRowItem is one backend record in the list view. checked reflects the
// bulk selection set.
type recordRowItem struct {
	item    model.Item
	res     resource.Resource
	checked bool
}

func (i recordRowItem) FilterValue() string { return i.item.Name() }

func (i recordRowItem) Title() string {
	box := "[ ]"
	if i.checked {
		box = "[x]"
	}
	cols := make([]string, 0, len(i.res.Columns))
	for _, c := range i.res.Columns {
		if v := strings.TrimSpace(i.item.Fields[c]); v != "" {
			cols = append(cols, v)
		}
	}
	label := strings.Join(cols, "  ")
	if label == "" {
		label = i.item.Name()
	}
	badge := renderStatusBadge(string(i.item.Status))
	if badge == "" {
		return fmt.Sprintf("%s %s", box, label)
	}
	return fmt.Sprintf("%s %s %s", box, badge, label)
}

func (i recordRowItem) Description() string { return i.item.ID }

func newList(title, statusName string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	// We render our own header/footer chrome, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Server-side search replaces the built-in fuzzy filter.
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName(statusName, statusName+"s")
	// ESC is "back/cancel" here, not quit.
	l.KeyMap.Quit.SetKeys("ctrl+c")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}
