package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Modal rendering.
//
// While a modal is open it captures all key input; the view behind it is
// dimmed and never receives events (the terminal equivalent of a scroll-locked
// backdrop). Esc always cancels.

const (
	modalMaxW    = 64
	modalMinW    = 30
	modalPadding = 2
)

func modalWidth(screenW int) int {
	w := screenW - 8
	if w > modalMaxW {
		w = modalMaxW
	}
	if w < modalMinW {
		w = modalMinW
	}
	return w
}

func modalBodyWidth(width int) int {
	return width - 2*modalPadding
}

// renderModalBox draws the shared modal chrome: a header bar with the title
// and a padded surface holding content.
//
// No borders: some terminals show background artifacts when nesting bordered
// components inside a surface with a background color.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)

	header := lipgloss.NewStyle().
		Width(width).
		Padding(0, modalPadding).
		Background(colorModalHeaderBg).
		Foreground(colorModalHeaderFg).
		Bold(true).
		Render(title)

	surface := lipgloss.NewStyle().
		Width(width).
		Padding(1, modalPadding).
		Background(colorModalSurfaceBg).
		Foreground(colorModalSurfaceFg)

	// Pre-wrap content lines to the body width so background fill stays flush.
	var lines []string
	for _, ln := range strings.Split(content, "\n") {
		if xansi.StringWidth(ln) > bodyW {
			ln = xansi.Cut(ln, 0, bodyW)
		}
		lines = append(lines, ln)
	}

	return header + "\n" + surface.Render(strings.Join(lines, "\n"))
}

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}

// dimBackground strips colors from the backdrop so the modal reads as the
// only active surface.
func dimBackground(s string) string {
	return styleMuted().Render(xansi.Strip(s))
}

// overlayCenter splices the modal into the dimmed base view, centered. The
// base must already be normalized to screenW x screenH.
func overlayCenter(base, modal string, screenW, screenH int) string {
	baseLines := strings.Split(normalizePane(base, screenW, screenH), "\n")
	modalLines := strings.Split(modal, "\n")

	modalW := 0
	for _, ln := range modalLines {
		if w := xansi.StringWidth(ln); w > modalW {
			modalW = w
		}
	}
	top := (screenH - len(modalLines)) / 2
	if top < 0 {
		top = 0
	}
	left := (screenW - modalW) / 2
	if left < 0 {
		left = 0
	}

	for i, ln := range modalLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		ln = normalizePane(ln, modalW, 1)
		prefix := xansi.Cut(baseLines[row], 0, left)
		suffix := xansi.Cut(baseLines[row], left+modalW, screenW)
		// Reset styling between segments so backdrop colors don't bleed
		// into the modal surface.
		baseLines[row] = prefix + "\x1b[0m" + ln + "\x1b[0m" + suffix
	}
	return strings.Join(baseLines, "\n")
}
