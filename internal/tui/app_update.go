package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/listctl"
	"backoffice-cli/internal/model"
	"backoffice-cli/internal/mutate"
	"backoffice-cli/internal/session"
	"backoffice-cli/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		if !m.seenWindowSize {
			m.seenWindowSize = true
			m.resizing = false
			return m, nil
		}
		m.resizing = true
		m.resizeSeq++
		seq := m.resizeSeq
		return m, tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return resizeDoneMsg{seq: seq} })

	case resizeDoneMsg:
		// Debounce: only clear if this corresponds to the latest resize seq.
		if msg.seq == m.resizeSeq {
			m.resizing = false
		}
		return m, nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case searchCommitMsg:
		// Stale timer: more keystrokes arrived after this one was scheduled.
		if msg.seq != m.searchSeq || m.view != viewList {
			return m, nil
		}
		if m.ctrl().SetSearch(m.searchInput.Value()) {
			return m, m.startFetchCmd()
		}
		return m, nil

	case listFetchedMsg:
		ctrl, ok := m.controllers[msg.resKey]
		if !ok {
			return m, nil
		}
		applied, refetch := ctrl.Apply(msg.fetch)
		m.debugLogf("fetch res=%s seq=%d applied=%v err=%v", msg.resKey, msg.fetch.Seq, applied, msg.fetch.Err)
		if !applied {
			return m, nil
		}
		if errors.Is(msg.fetch.Err, api.ErrSessionExpired) {
			m.loggedIn = false
			m.openLoginModal()
			return m, nil
		}
		if m.view == viewList && msg.resKey == m.res.Key {
			m.syncRows()
			if refetch {
				// The total proved the page was past the end; the page was
				// clamped, fetch the rows that exist there.
				return m, m.startFetchCmd()
			}
		}
		return m, nil

	case mutationDoneMsg:
		return m.applyMutationDone(msg)

	case loginDoneMsg:
		m.loginBusy = false
		if msg.err != nil {
			m.modalErr = msg.err.Error()
			return m, nil
		}
		m.loggedIn = true
		m.closeAllModals()
		cmds := []tea.Cmd{m.showMinibuffer("Logged in as " + msg.email)}
		if m.view == viewList {
			cmds = append(cmds, m.startFetchCmd())
		}
		return m, tea.Batch(cmds...)

	case sessionExpiredMsg:
		m.loggedIn = false
		m.openLoginModal()
		m.modalErr = "Session expired, log in again"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m appModel) applyMutationDone(msg mutationDoneMsg) (tea.Model, tea.Cmd) {
	m.debugLogf("mutation op=%s target=%s err=%v", msg.op, msg.targetID, msg.err)
	m.mutationBusy = false
	if msg.err == nil {
		m.closeAllModals()
		if msg.op == "bulk-status" {
			m.ctrl().Selection().Clear()
		}
		// Refresh-after-mutation: the backend is the source of truth, the
		// page is never patched locally.
		return m, tea.Batch(
			m.showMinibuffer(msg.op+" ok"),
			m.startFetchCmd(),
		)
	}

	if errors.Is(msg.err, api.ErrSessionExpired) {
		m.loggedIn = false
		m.openLoginModal()
		return m, nil
	}

	var fe validate.FieldError
	if m.form != nil && errors.As(msg.err, &fe) {
		m.form.setErrors([]validate.FieldError{fe})
		return m, nil
	}
	if m.modal != modalNone {
		// Keep the modal (and its values) so the operator can fix and retry.
		m.modalErr = msg.err.Error()
		return m, nil
	}
	return m, m.showMinibuffer("Error: " + msg.err.Error())
}

func (m appModel) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "ctrl+c" {
		m.stateSaver.Flush()
		m.stateSaver.Stop()
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.handleModalKey(k)
	}
	if m.searchFocused {
		return m.handleSearchKey(k)
	}

	switch m.view {
	case viewMenu:
		return m.handleMenuKey(k)
	case viewList:
		return m.handleListKey(k)
	case viewDetail:
		return m.handleDetailKey(k)
	}
	return m, nil
}

func (m appModel) handleMenuKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "q":
		m.stateSaver.Flush()
		m.stateSaver.Stop()
		return m, tea.Quit
	case "enter":
		if it, ok := m.menuList.SelectedItem().(resourceMenuItem); ok {
			m.view = viewList
			m.res = it.res
			m.searchInput.SetValue(m.ctrl().Query().SearchText)
			m.noteStateChanged()
			m.syncRows()
			if !m.loggedIn {
				m.openLoginModal()
				return m, nil
			}
			return m, m.startFetchCmd()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.menuList, cmd = m.menuList.Update(k)
	return m, cmd
}

func (m appModel) handleSearchKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc":
		m.searchFocused = false
		m.searchInput.Blur()
		return m, nil
	case "enter":
		// Commit immediately, skipping the debounce window.
		m.searchFocused = false
		m.searchInput.Blur()
		m.searchSeq++
		if m.ctrl().SetSearch(m.searchInput.Value()) {
			return m, m.startFetchCmd()
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(k)
	if m.searchInput.Value() == before {
		return m, cmd
	}
	// Every keystroke pushes the deadline out; only the last timer commits.
	m.searchSeq++
	seq := m.searchSeq
	debounced := tea.Tick(m.cfg.UI.SearchDebounce, func(time.Time) tea.Msg { return searchCommitMsg{seq: seq} })
	return m, tea.Batch(cmd, debounced)
}

func (m appModel) handleListKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.ctrl()

	switch k.String() {
	case "esc":
		m.view = viewMenu
		m.noteStateChanged()
		return m, nil

	case "/":
		m.searchFocused = true
		m.searchInput.Focus()
		return m, nil

	case "r":
		return m, m.startFetchCmd()

	case " ":
		if it, ok := m.selectedItem(); ok {
			ctrl.Selection().Toggle(it.ID)
			m.syncRows()
		}
		return m, nil

	case "A":
		ctrl.Selection().Clear()
		m.syncRows()
		return m, nil

	case "]", "right":
		if ctrl.NextPage() {
			return m, m.startFetchCmd()
		}
		return m, nil

	case "[", "left":
		if ctrl.PrevPage() {
			return m, m.startFetchCmd()
		}
		return m, nil

	case "p":
		m.closeAllModals()
		m.modal = modalPickPageSize
		for i, n := range listctl.PageSizes {
			m.pickOptions = append(m.pickOptions, strconv.Itoa(n))
			if n == ctrl.Query().PageSize {
				m.pickIdx = i
			}
		}
		return m, nil

	case "s":
		m.closeAllModals()
		m.modal = modalPickStatus
		m.pickFor = statusPickFilter
		m.pickOptions = append(m.pickOptions, "(all)")
		for _, st := range m.res.Statuses {
			m.pickOptions = append(m.pickOptions, string(st))
		}
		return m, nil

	case "f":
		if len(m.res.Filters) == 0 {
			return m, nil
		}
		m.closeAllModals()
		if len(m.res.Filters) == 1 {
			m.openFilterValueModal(m.res.Filters[0].Key)
			return m, nil
		}
		m.modal = modalPickFilter
		for _, f := range m.res.Filters {
			m.pickOptions = append(m.pickOptions, f.Key)
		}
		return m, nil

	case "n":
		m.closeAllModals()
		m.modal = modalCreate
		m.form = newFormState(m.res, "", nil)
		return m, nil

	case "e":
		if it, ok := m.selectedItem(); ok {
			m.closeAllModals()
			m.modal = modalEdit
			m.form = newFormState(m.res, it.ID, it.Fields)
		}
		return m, nil

	case "t":
		if it, ok := m.selectedItem(); ok {
			m.closeAllModals()
			m.modal = modalPickStatus
			m.pickFor = statusPickSingle
			m.pendingTargetID = it.ID
			for i, st := range m.res.Statuses {
				m.pickOptions = append(m.pickOptions, string(st))
				if st == it.Status.Toggled() {
					m.pickIdx = i
				}
			}
		}
		return m, nil

	case "b":
		if ctrl.Selection().Len() == 0 {
			return m, m.showMinibuffer("Nothing selected")
		}
		m.closeAllModals()
		m.modal = modalPickStatus
		m.pickFor = statusPickBulk
		for _, st := range m.res.Statuses {
			m.pickOptions = append(m.pickOptions, string(st))
		}
		return m, nil

	case "d":
		if it, ok := m.selectedItem(); ok {
			m.closeAllModals()
			m.modal = modalConfirmDelete
			m.pendingTargetID = it.ID
		}
		return m, nil

	case "u":
		if !m.res.HasImage {
			return m, nil
		}
		if it, ok := m.selectedItem(); ok {
			m.closeAllModals()
			m.modal = modalUploadPath
			m.pendingTargetID = it.ID
			m.input.Placeholder = "path/to/image.png"
			m.input.Focus()
		}
		return m, nil

	case "enter":
		if it, ok := m.selectedItem(); ok {
			m.detailItem = it
			m.view = viewDetail
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.rowsList, cmd = m.rowsList.Update(k)
	return m, cmd
}

func (m appModel) handleDetailKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "esc", "q", "enter":
		m.view = viewList
	}
	return m, nil
}

func (m *appModel) openFilterValueModal(key string) {
	m.modal = modalFilterValue
	m.pendingFilterKey = key
	for _, f := range m.res.Filters {
		if f.Key == key && len(f.Options) > 0 {
			m.pickOptions = append(m.pickOptions, "(clear)")
			m.pickOptions = append(m.pickOptions, f.Options...)
			return
		}
	}
	// Free-form filter value (e.g. an id).
	m.input.Placeholder = key
	m.input.SetValue(m.ctrl().Query().Extra[key])
	m.input.Focus()
}

func (m appModel) handleModalKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mutationBusy {
		// A request is in flight; the workflow reports back through
		// mutationDoneMsg before any further input (esc included) counts.
		return m, nil
	}
	if k.String() == "esc" {
		// Esc always cancels; state behind the modal is untouched.
		m.closeAllModals()
		return m, nil
	}

	switch m.modal {
	case modalCreate, modalEdit:
		return m.handleFormKey(k)
	case modalConfirmDelete, modalConfirmBulk:
		return m.handleConfirmKey(k)
	case modalPickStatus, modalPickFilter, modalPickPageSize:
		return m.handlePickKey(k)
	case modalFilterValue:
		if len(m.pickOptions) > 0 {
			return m.handlePickKey(k)
		}
		if k.String() == "enter" {
			key, val := m.pendingFilterKey, m.input.Value()
			m.closeAllModals()
			if m.ctrl().SetFilter(key, val) {
				return m, m.startFetchCmd()
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(k)
		return m, cmd
	case modalUploadPath:
		if k.String() == "enter" {
			path := strings.TrimSpace(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.mutationBusy = true
			return m, m.uploadImageCmd(m.pendingTargetID, path)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(k)
		return m, cmd
	case modalLogin:
		return m.handleLoginKey(k)
	}
	return m, nil
}

func (m appModel) handleFormKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch k.String() {
	case "tab", "down":
		f.focusNext()
		return m, nil
	case "shift+tab", "up":
		f.focusPrev()
		return m, nil
	case "left":
		if f.cycleOption(-1) {
			return m, nil
		}
	case "right":
		if f.cycleOption(1) {
			return m, nil
		}
	case "enter":
		if f.onCancel() {
			m.closeAllModals()
			return m, nil
		}
		if f.onSave() || f.focus == len(f.fields)-1 {
			return m.submitForm()
		}
		f.focusNext()
		return m, nil
	}
	return m, f.update(k)
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	values := f.values()
	if errs := mutate.ValidateFields(f.res, values, f.creating()); len(errs) > 0 {
		f.setErrors(errs)
		return m, nil
	}

	client := m.client
	res := f.res
	m.mutationBusy = true
	if f.creating() {
		// Snapshot the loaded page for the duplicate-name guard.
		page := append([]model.Item(nil), m.ctrl().Items()...)
		return m, m.mutationCmd("create", "", values["name"], func(ctx context.Context) error {
			_, err := mutate.Create(ctx, client, res, values, page)
			return err
		})
	}
	id := f.editID
	return m, m.mutationCmd("edit", id, "", func(ctx context.Context) error {
		return mutate.UpdateFields(ctx, client, res, id, values)
	})
}

func (m appModel) handleConfirmKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		if m.confirmFocus == confirmFocusCancel {
			m.closeAllModals()
			return m, nil
		}
		switch m.modal {
		case modalConfirmDelete:
			id := m.pendingTargetID
			client, res := m.client, m.res
			m.mutationBusy = true
			return m, m.mutationCmd("delete", id, "", func(ctx context.Context) error {
				return mutate.Delete(ctx, client, res, id)
			})
		case modalConfirmBulk:
			ids := m.ctrl().Selection().IDs(m.visibleIDs())
			status := m.pendingStatus
			client, res := m.client, m.res
			detail := string(status) + " x" + strconv.Itoa(len(ids))
			m.mutationBusy = true
			return m, m.mutationCmd("bulk-status", "", detail, func(ctx context.Context) error {
				return mutate.BulkSetStatus(ctx, client, res, ids, status)
			})
		}
	}
	return m, nil
}

func (m appModel) handlePickKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "up", "ctrl+p":
		if m.pickIdx > 0 {
			m.pickIdx--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.pickIdx < len(m.pickOptions)-1 {
			m.pickIdx++
		}
		return m, nil
	case "enter":
		return m.applyPick()
	}
	return m, nil
}

func (m appModel) applyPick() (tea.Model, tea.Cmd) {
	if m.pickIdx < 0 || m.pickIdx >= len(m.pickOptions) {
		return m, nil
	}
	choice := m.pickOptions[m.pickIdx]

	switch m.modal {
	case modalPickPageSize:
		n, _ := strconv.Atoi(choice)
		m.closeAllModals()
		if m.ctrl().SetPageSize(n) {
			m.noteStateChanged()
			return m, m.startFetchCmd()
		}
		return m, nil

	case modalPickFilter:
		m.pickOptions = nil
		m.pickIdx = 0
		m.openFilterValueModal(choice)
		return m, nil

	case modalFilterValue:
		key := m.pendingFilterKey
		val := choice
		if choice == "(clear)" {
			val = ""
		}
		m.closeAllModals()
		if m.ctrl().SetFilter(key, val) {
			return m, m.startFetchCmd()
		}
		return m, nil

	case modalPickStatus:
		switch m.pickFor {
		case statusPickFilter:
			val := choice
			if choice == "(all)" {
				val = ""
			}
			m.closeAllModals()
			if m.ctrl().SetStatusFilter(val) {
				return m, m.startFetchCmd()
			}
			return m, nil

		case statusPickSingle:
			id := m.pendingTargetID
			status := model.Status(choice)
			client, res := m.client, m.res
			m.mutationBusy = true
			return m, m.mutationCmd("status", id, choice, func(ctx context.Context) error {
				return mutate.SetStatus(ctx, client, res, id, status)
			})

		case statusPickBulk:
			m.pendingStatus = model.Status(choice)
			m.modal = modalConfirmBulk
			m.confirmFocus = confirmFocusConfirm
			return m, nil
		}
	}
	return m, nil
}

func (m appModel) handleLoginKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loginBusy {
		return m, nil
	}
	switch k.String() {
	case "tab", "down", "shift+tab", "up":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			m.passwordInput.Focus()
		} else {
			m.loginFocus = 0
			m.passwordInput.Blur()
			m.emailInput.Focus()
		}
		return m, nil
	case "enter":
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.emailInput.Blur()
			m.passwordInput.Focus()
			return m, nil
		}
		email := strings.TrimSpace(m.emailInput.Value())
		password := m.passwordInput.Value()
		if email == "" || password == "" {
			m.modalErr = "Email and password are required"
			return m, nil
		}
		m.loginBusy = true
		m.modalErr = ""
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.emailInput, cmd = m.emailInput.Update(k)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(k)
	}
	return m, cmd
}

func (m *appModel) loginCmd(email, password string) tea.Cmd {
	client := m.client
	store := m.store
	timeout := m.cfg.API.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		token, err := client.Login(ctx, email, password)
		if err == nil {
			_ = store.Save(&session.Session{Token: token, Email: email, SavedAt: time.Now()})
		}
		return loginDoneMsg{email: email, err: err}
	}
}

func (m *appModel) uploadImageCmd(id, path string) tea.Cmd {
	client := m.client
	res := m.res
	name := filepath.Base(path)
	return m.mutationCmd("upload-image", id, name, func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return mutate.UploadImage(ctx, client, res, id, name, f)
	})
}

func (m appModel) visibleIDs() []string {
	items := m.ctrl().Items()
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
