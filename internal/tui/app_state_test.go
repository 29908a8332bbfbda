package tui

import (
	"errors"
	"testing"
	"time"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/config"
	"backoffice-cli/internal/listctl"
	"backoffice-cli/internal/model"
	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T) appModel {
	t.Helper()
	cfg := &config.Config{
		API: config.API{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		UI:  config.UI{PageSize: 10, SearchDebounce: 10 * time.Millisecond},
	}
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout)
	m := newAppModel(cfg, client, session.Store{Dir: t.TempDir()}, nil)
	// A fresh model with no stored token opens the login modal; the tests
	// below exercise a signed-in session.
	m.loggedIn = true
	m.closeAllModals()
	m.width = 100
	m.height = 40
	m.resizeLists()
	return m
}

func openScreen(t *testing.T, m *appModel, key string) *listctl.Controller {
	t.Helper()
	res, err := resource.Lookup(key)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	m.res = res
	m.view = viewList
	return m.ctrl()
}

func loadPage(t *testing.T, ctrl *listctl.Controller, items []model.Item, total int) {
	t.Helper()
	seq, _ := ctrl.StartFetch()
	applied, _ := ctrl.Apply(listctl.Fetch{Seq: seq, Result: api.ListResult{Items: items, Total: total}})
	if !applied {
		t.Fatalf("fetch not applied")
	}
}

func TestSearchCommit_StaleSeqIgnored(t *testing.T) {
	m := newTestModel(t)
	ctrl := openScreen(t, &m, "subjects")
	m.searchInput.SetValue("algebra")
	m.searchSeq = 5

	mm, cmd := m.Update(searchCommitMsg{seq: 3})
	m = mm.(appModel)
	if cmd != nil {
		t.Fatalf("stale timer must not trigger a fetch")
	}
	if ctrl.Query().SearchText != "" {
		t.Fatalf("stale timer committed search: %q", ctrl.Query().SearchText)
	}

	mm, cmd = m.Update(searchCommitMsg{seq: 5})
	m = mm.(appModel)
	if cmd == nil {
		t.Fatalf("newest timer must trigger a fetch")
	}
	if got := m.ctrl().Query().SearchText; got != "algebra" {
		t.Fatalf("search = %q", got)
	}
	if m.ctrl().Query().Page != 1 {
		t.Fatalf("search must reset to page 1")
	}
}

func TestListFetched_StaleResultDiscarded(t *testing.T) {
	m := newTestModel(t)
	ctrl := openScreen(t, &m, "subjects")
	loadPage(t, ctrl, []model.Item{{ID: "a"}, {ID: "b"}}, 2)

	// A newer fetch is now outstanding; a result carrying an older seq
	// arrives late and must not overwrite anything.
	ctrl.StartFetch()
	mm, _ := m.Update(listFetchedMsg{
		resKey: "subjects",
		fetch:  listctl.Fetch{Seq: 0, Result: api.ListResult{Items: []model.Item{{ID: "zzz"}}, Total: 1}},
	})
	m = mm.(appModel)
	if len(ctrl.Items()) != 2 || ctrl.Items()[0].ID != "a" {
		t.Fatalf("stale result overwrote items: %+v", ctrl.Items())
	}
}

func TestMutationDone_ErrorKeepsModalAndValues(t *testing.T) {
	m := newTestModel(t)
	openScreen(t, &m, "subjects")
	m.modal = modalCreate
	m.form = newFormState(m.res, "", map[string]string{"name": "Algebra"})

	mm, _ := m.applyMutationDone(mutationDoneMsg{op: "create", err: errors.New("name already exists")})
	m = mm.(appModel)
	if m.modal != modalCreate {
		t.Fatalf("modal closed on failure")
	}
	if m.modalErr == "" {
		t.Fatalf("server message not surfaced")
	}
	if got := m.form.values()["name"]; got != "Algebra" {
		t.Fatalf("form values lost on failure: %q", got)
	}
}

func TestMutationDone_SuccessClosesModalAndRefetches(t *testing.T) {
	m := newTestModel(t)
	openScreen(t, &m, "subjects")
	m.modal = modalCreate
	m.form = newFormState(m.res, "", nil)

	mm, cmd := m.applyMutationDone(mutationDoneMsg{op: "create"})
	m = mm.(appModel)
	if m.modal != modalNone {
		t.Fatalf("modal still open after success")
	}
	if cmd == nil {
		t.Fatalf("success must schedule a refetch")
	}
	if !m.ctrl().Loading() {
		t.Fatalf("refresh-after-mutation not started")
	}
}

func TestSessionExpired_OpensLoginModal(t *testing.T) {
	m := newTestModel(t)
	openScreen(t, &m, "subjects")
	m.loggedIn = true

	mm, _ := m.Update(sessionExpiredMsg{})
	m = mm.(appModel)
	if m.loggedIn {
		t.Fatalf("still logged in after session expiry")
	}
	if m.modal != modalLogin {
		t.Fatalf("login modal not opened, modal = %d", m.modal)
	}
}

func TestSelectionToggle_SpaceKey(t *testing.T) {
	m := newTestModel(t)
	ctrl := openScreen(t, &m, "subjects")
	loadPage(t, ctrl, []model.Item{{ID: "a"}, {ID: "b"}}, 2)
	m.syncRows()

	mm, _ := m.handleListKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	m = mm.(appModel)
	if ctrl.Selection().Len() != 1 {
		t.Fatalf("selection len = %d", ctrl.Selection().Len())
	}
	mm, _ = m.handleListKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" ")})
	m = mm.(appModel)
	if ctrl.Selection().Len() != 0 {
		t.Fatalf("toggle did not unselect")
	}
}

func TestConfirmDelete_EnterWhileSubmittingIgnored(t *testing.T) {
	m := newTestModel(t)
	ctrl := openScreen(t, &m, "subjects")
	loadPage(t, ctrl, []model.Item{{ID: "su1"}}, 1)
	m.syncRows()
	m.modal = modalConfirmDelete
	m.pendingTargetID = "su1"
	m.confirmFocus = confirmFocusConfirm

	mm, cmd := m.handleModalKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = mm.(appModel)
	if cmd == nil {
		t.Fatalf("first enter must issue the delete")
	}
	if !m.mutationBusy {
		t.Fatalf("submit did not mark the workflow busy")
	}

	mm, cmd = m.handleModalKey(tea.KeyMsg{Type: tea.KeyEnter})
	m = mm.(appModel)
	if cmd != nil {
		t.Fatalf("second enter while submitting issued another mutation")
	}
	if m.modal != modalConfirmDelete {
		t.Fatalf("in-flight workflow must keep its modal")
	}

	// The outcome clears the guard either way.
	mm, _ = m.applyMutationDone(mutationDoneMsg{op: "delete", targetID: "su1", err: errors.New("boom")})
	m = mm.(appModel)
	if m.mutationBusy {
		t.Fatalf("busy flag not cleared after the mutation reported back")
	}
}

func TestBulkWithoutSelection_Refused(t *testing.T) {
	m := newTestModel(t)
	ctrl := openScreen(t, &m, "subjects")
	loadPage(t, ctrl, []model.Item{{ID: "a"}}, 1)
	m.syncRows()

	mm, _ := m.handleListKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	m = mm.(appModel)
	if m.modal != modalNone {
		t.Fatalf("bulk modal opened with empty selection")
	}
}

func TestResizeDebounce_OnlyNewestSeqClears(t *testing.T) {
	m := newTestModel(t)
	m.seenWindowSize = true

	mm, _ := m.Update(tea.WindowSizeMsg{Width: 90, Height: 30})
	m = mm.(appModel)
	if !m.resizing {
		t.Fatalf("resize overlay not shown")
	}
	seq := m.resizeSeq

	mm, _ = m.Update(tea.WindowSizeMsg{Width: 95, Height: 30})
	m = mm.(appModel)

	mm, _ = m.Update(resizeDoneMsg{seq: seq})
	m = mm.(appModel)
	if !m.resizing {
		t.Fatalf("stale resizeDone cleared the overlay")
	}
	mm, _ = m.Update(resizeDoneMsg{seq: m.resizeSeq})
	m = mm.(appModel)
	if m.resizing {
		t.Fatalf("newest resizeDone did not clear the overlay")
	}
}

func TestCloseAllModals_ResetsPickerState(t *testing.T) {
	m := newTestModel(t)
	openScreen(t, &m, "staff")
	m.modal = modalPickStatus
	m.pickOptions = []string{"ACTIVE", "DEACTIVE"}
	m.pickIdx = 1
	m.pendingTargetID = "s1"
	m.modalErr = "boom"

	m.closeAllModals()
	if m.modal != modalNone || m.pickOptions != nil || m.pickIdx != 0 {
		t.Fatalf("picker state not reset")
	}
	if m.pendingTargetID != "" || m.modalErr != "" {
		t.Fatalf("pending state not reset")
	}
}

func TestUIState_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := saveUIState(dir, uiState{ResourceKey: "banners", PageSize: 25}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err := loadUIState(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.ResourceKey != "banners" || st.PageSize != 25 {
		t.Fatalf("state = %+v", st)
	}
}

func TestUIState_MissingFileIsEmpty(t *testing.T) {
	st, err := loadUIState(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.ResourceKey != "" {
		t.Fatalf("expected empty state, got %+v", st)
	}
}
