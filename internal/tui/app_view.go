package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading…"
	}
	if m.resizing {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styleMuted().Render("Resizing…"))
	}

	var base string
	switch m.view {
	case viewMenu:
		base = m.renderMenuView()
	case viewList:
		base = m.renderListView()
	case viewDetail:
		base = m.renderDetailView()
	}
	base = normalizePane(base, m.width, m.height)

	if m.modal == modalNone {
		return base
	}
	return overlayCenter(dimBackground(base), m.renderModal(), m.width, m.height)
}

func (m appModel) breadcrumb(parts ...string) string {
	all := append([]string{"Back Office"}, parts...)
	return lipgloss.NewStyle().Foreground(colorChromeMutedFg).Bold(true).Render(strings.Join(all, " / "))
}

func (m appModel) renderMenuView() string {
	var b strings.Builder
	b.WriteString("\n " + m.breadcrumb() + "\n\n")
	b.WriteString(m.menuList.View())
	b.WriteString("\n")
	b.WriteString(" " + styleMuted().Render("enter: open   q: quit"))
	if m.minibufferText != "" {
		b.WriteString("\n " + m.minibufferText)
	}
	return b.String()
}

func (m appModel) renderListView() string {
	ctrl := m.controllers[m.res.Key]
	var b strings.Builder
	b.WriteString("\n " + m.breadcrumb(m.res.Title) + "\n")

	// Scope line: search + active filters.
	var scope []string
	if m.searchFocused {
		scope = append(scope, "search: "+m.searchInput.View())
	} else if s := ctrl.Query().SearchText; s != "" {
		scope = append(scope, fmt.Sprintf("search: %q", s))
	} else {
		scope = append(scope, styleMuted().Render("/: search"))
	}
	if s := ctrl.Query().StatusFilter; s != "" {
		scope = append(scope, "status: "+renderStatusBadge(s))
	}
	extra := ctrl.Query().Extra
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		scope = append(scope, k+": "+extra[k])
	}
	b.WriteString(" " + strings.Join(scope, "   ") + "\n\n")

	switch {
	case ctrl.FirstLoad() && ctrl.Loading():
		b.WriteString(" " + styleMuted().Render("Loading…") + "\n")
	case ctrl.FirstLoad() && ctrl.Err() != nil:
		b.WriteString(" " + lipgloss.NewStyle().Foreground(colorErrorFg).Render("Error: "+ctrl.Err().Error()) + "\n")
		b.WriteString(" " + styleMuted().Render("r: retry") + "\n")
	case len(ctrl.Items()) == 0 && !ctrl.Loading():
		b.WriteString(" " + styleMuted().Render("No results") + "\n")
		if ctrl.Err() != nil {
			b.WriteString(" " + lipgloss.NewStyle().Foreground(colorErrorFg).Render("Error: "+ctrl.Err().Error()) + "\n")
		}
	default:
		if ctrl.Err() != nil {
			// Refresh failed: keep showing the last good page with the error inline.
			b.WriteString(" " + lipgloss.NewStyle().Foreground(colorErrorFg).Render("Error: "+ctrl.Err().Error()) +
				"  " + styleMuted().Render("r: retry") + "\n")
		} else if ctrl.Loading() {
			b.WriteString(" " + styleMuted().Render("Refreshing…") + "\n")
		}
		b.WriteString(m.rowsList.View())
	}
	b.WriteString("\n")

	// Pagination footer.
	prev := "‹ prev"
	next := "next ›"
	if !ctrl.CanPrev() {
		prev = styleMuted().Render(prev)
	}
	if !ctrl.CanNext() {
		next = styleMuted().Render(next)
	}
	footer := fmt.Sprintf(" %s  page %d/%d  %s   %d total", prev, ctrl.Query().Page, ctrl.TotalPages(), next, ctrl.Total())
	if n := ctrl.Selection().Len(); n > 0 {
		footer += fmt.Sprintf("   %d selected", n)
	}
	b.WriteString(footer + "\n")

	help := "space: select   n: new   e: edit   t: status   b: bulk   d: delete   s: filter   p: page size"
	if m.res.HasImage {
		help += "   u: image"
	}
	if len(m.res.Filters) > 0 {
		help += "   f: filters"
	}
	b.WriteString(" " + styleMuted().Render(help))
	if m.minibufferText != "" {
		b.WriteString("\n " + m.minibufferText)
	}
	return b.String()
}

func (m appModel) renderDetailView() string {
	it := m.detailItem
	var b strings.Builder
	b.WriteString("\n " + m.breadcrumb(m.res.Title, it.Name()) + "\n\n")
	b.WriteString(" ID      " + it.ID + "\n")
	b.WriteString(" Status  " + renderStatusBadge(string(it.Status)) + "\n")

	for _, f := range m.res.Fields {
		if f.Key == m.res.PreviewField {
			continue
		}
		if v := strings.TrimSpace(it.Fields[f.Key]); v != "" {
			b.WriteString(fmt.Sprintf(" %-7s %s\n", f.Label, v))
		}
	}

	if m.res.PreviewField != "" {
		if md := it.Fields[m.res.PreviewField]; strings.TrimSpace(md) != "" {
			w := m.width - 4
			if w > 96 {
				w = 96
			}
			b.WriteString("\n" + renderMarkdown(md, w) + "\n")
		}
	}

	b.WriteString("\n " + styleMuted().Render("esc: back"))
	return b.String()
}

func (m appModel) renderModal() string {
	w := modalWidth(m.width)
	bodyW := modalBodyWidth(w)

	errLine := ""
	if m.modalErr != "" {
		errLine = lipgloss.NewStyle().Foreground(colorErrorFg).Width(bodyW).Render(m.modalErr) + "\n"
	}
	if m.mutationBusy {
		errLine = styleMuted().Width(bodyW).Render("Working…") + "\n" + errLine
	}

	switch m.modal {
	case modalCreate, modalEdit:
		return m.form.render(w, m.modalErr)

	case modalConfirmDelete:
		name := m.pendingTargetID
		if it, ok := m.selectedItem(); ok && it.ID == m.pendingTargetID {
			name = it.Name()
		}
		return renderConfirmModal(w, "Delete", errLine+"Delete "+name+"? This cannot be undone.", "Delete", "Cancel", m.confirmFocus)

	case modalConfirmBulk:
		n := m.controllers[m.res.Key].Selection().Len()
		body := fmt.Sprintf("Set %d record(s) to %s?", n, m.pendingStatus)
		return renderConfirmModal(w, "Bulk status", errLine+body, "Apply", "Cancel", m.confirmFocus)

	case modalPickStatus, modalPickFilter, modalPickPageSize:
		return renderModalBox(w, m.pickTitle(), errLine+m.renderPickList(bodyW))

	case modalFilterValue:
		if len(m.pickOptions) > 0 {
			return renderModalBox(w, "Filter: "+m.pendingFilterKey, errLine+m.renderPickList(bodyW))
		}
		content := errLine + renderInputLine(bodyW, m.input.View()) + "\n\n" +
			styleMuted().Width(bodyW).Render("enter: apply   esc: cancel")
		return renderModalBox(w, "Filter: "+m.pendingFilterKey, content)

	case modalUploadPath:
		content := errLine + renderInputLine(bodyW, m.input.View()) + "\n\n" +
			styleMuted().Width(bodyW).Render("enter: upload   esc: cancel")
		return renderModalBox(w, "Upload image", content)

	case modalLogin:
		var b strings.Builder
		b.WriteString(errLine)
		b.WriteString("Email\n")
		b.WriteString(renderInputLine(bodyW, m.emailInput.View()) + "\n\n")
		b.WriteString("Password\n")
		b.WriteString(renderInputLine(bodyW, m.passwordInput.View()) + "\n\n")
		if m.loginBusy {
			b.WriteString(styleMuted().Render("Signing in…"))
		} else {
			b.WriteString(styleMuted().Width(bodyW).Render("tab: next   enter: sign in   esc: cancel"))
		}
		return renderModalBox(w, "Sign in", b.String())
	}
	return ""
}

func (m appModel) pickTitle() string {
	switch m.modal {
	case modalPickPageSize:
		return "Page size"
	case modalPickFilter:
		return "Filter by"
	case modalPickStatus:
		switch m.pickFor {
		case statusPickFilter:
			return "Status filter"
		case statusPickBulk:
			return "Bulk status"
		}
		return "Set status"
	}
	return "Select"
}

func (m appModel) renderPickList(bodyW int) string {
	var b strings.Builder
	for i, opt := range m.pickOptions {
		line := "  " + opt
		if i == m.pickIdx {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Width(bodyW).
				Render("› " + opt)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render("↑/↓: move   enter: select   esc: cancel"))
	return b.String()
}
