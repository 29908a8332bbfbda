package tui

import (
	"context"
	"time"

	"backoffice-cli/internal/api"
	"backoffice-cli/internal/audit"
	"backoffice-cli/internal/config"
	"backoffice-cli/internal/debounce"
	"backoffice-cli/internal/listctl"
	"backoffice-cli/internal/model"
	"backoffice-cli/internal/resource"
	"backoffice-cli/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	client  *api.Client
	cfg     *config.Config
	store   session.Store
	journal *audit.Journal

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user-driven
	// resize; without this we'd flash the "Resizing…" overlay on startup.
	seenWindowSize bool
	resizing       bool
	resizeSeq      int

	view view
	res  resource.Resource // current screen, valid when view != viewMenu
	// One controller per screen so switching back keeps query state.
	controllers map[string]*listctl.Controller

	menuList list.Model
	rowsList list.Model

	searchInput   textinput.Model
	searchFocused bool
	// searchSeq guards the debounce timer; only the newest timer commits.
	searchSeq int

	modal        modalKind
	modalErr     string
	confirmFocus confirmModalFocus
	form         *formState
	// mutationBusy is set while a modal-initiated mutation is in flight;
	// further input is ignored so a held enter can't submit twice.
	mutationBusy bool

	// Generic picker state (status/filter/page-size modals).
	pickIdx     int
	pickOptions []string
	pickFor     statusPickFor
	// pendingStatus carries the picked status into the bulk confirm modal.
	pendingStatus model.Status
	// pendingFilterKey is the extra filter being edited.
	pendingFilterKey string
	// pendingTargetID is the row a status/delete/upload modal applies to.
	pendingTargetID string

	input         textinput.Model // filter value / upload path
	emailInput    textinput.Model
	passwordInput textinput.Model
	loginFocus    int // 0 email, 1 password
	loginBusy     bool
	loggedIn      bool

	detailItem model.Item

	minibufferText string
	minibufferSeq  int

	statePersist *uiStatePersist
	stateSaver   *debounce.Saver
}

func newAppModel(cfg *config.Config, client *api.Client, store session.Store, journal *audit.Journal) appModel {
	m := appModel{
		client:      client,
		cfg:         cfg,
		store:       store,
		journal:     journal,
		view:        viewMenu,
		controllers: map[string]*listctl.Controller{},
	}

	menuItems := make([]list.Item, 0, len(resource.All()))
	for _, r := range resource.All() {
		menuItems = append(menuItems, resourceMenuItem{res: r})
	}
	m.menuList = newList("Screens", "screen", menuItems)
	m.rowsList = newList("Records", "record", nil)

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search"
	m.searchInput.CharLimit = 120
	m.searchInput.Width = 32

	m.input = textinput.New()
	m.input.CharLimit = 400
	m.input.Width = 40

	m.emailInput = textinput.New()
	m.emailInput.Placeholder = "email"
	m.emailInput.CharLimit = 120
	m.emailInput.Width = 40

	m.passwordInput = textinput.New()
	m.passwordInput.Placeholder = "password"
	m.passwordInput.CharLimit = 120
	m.passwordInput.Width = 40
	m.passwordInput.EchoMode = textinput.EchoPassword

	if sess, err := store.Load(); err == nil && sess.Token != "" {
		m.loggedIn = !session.Expired(sess.Token, time.Now())
	}

	// Best effort: restore the last open screen.
	if st, err := loadUIState(store.Dir); err == nil && st.ResourceKey != "" {
		if res, err := resource.Lookup(st.ResourceKey); err == nil {
			m.res = res
			m.view = viewList
			ctrl := m.ctrl()
			if st.PageSize > 0 {
				ctrl.SetPageSize(st.PageSize)
			}
		}
	}

	m.statePersist = &uiStatePersist{dir: store.Dir}
	m.stateSaver = debounce.NewSaver(500*time.Millisecond, m.statePersist.write)

	if !m.loggedIn {
		m.openLoginModal()
	}
	return m
}

// noteStateChanged snapshots the resumable UI state and schedules a debounced
// write. Called on navigation and page-size changes, not per keystroke.
func (m *appModel) noteStateChanged() {
	st := uiState{Version: 1}
	if m.view != viewMenu {
		st.ResourceKey = m.res.Key
		st.PageSize = m.ctrl().Query().PageSize
	}
	m.statePersist.set(st)
	m.stateSaver.Notify()
}

// ctrl returns the current screen's controller, creating it on first visit.
func (m *appModel) ctrl() *listctl.Controller {
	c, ok := m.controllers[m.res.Key]
	if !ok {
		c = listctl.NewController(m.client, m.res.Path, m.cfg.UI.PageSize)
		m.controllers[m.res.Key] = c
	}
	return c
}

func (m appModel) Init() tea.Cmd {
	if !m.loggedIn {
		return nil
	}
	if m.view == viewList {
		return m.startFetchCmd()
	}
	return nil
}

// startFetchCmd issues the current screen's list request on a worker
// goroutine. The runner only reads captured copies; the result comes back
// through listFetchedMsg and is applied on the update loop.
func (m *appModel) startFetchCmd() tea.Cmd {
	ctrl := m.ctrl()
	_, run := ctrl.StartFetch()
	timeout := m.cfg.API.Timeout
	resKey := m.res.Key
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return listFetchedMsg{resKey: resKey, fetch: run(ctx)}
	}
}

// mutationCmd runs one state-changing call off the update loop and records
// the outcome in the local journal.
func (m *appModel) mutationCmd(op, targetID, detail string, fn func(ctx context.Context) error) tea.Cmd {
	timeout := m.cfg.API.Timeout
	journal := m.journal
	resPath := m.res.Path
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := fn(ctx)
		_ = journal.Record(ctx, audit.Entry{
			Resource: resPath, Op: op, TargetID: targetID, Detail: detail, OK: err == nil,
		})
		return mutationDoneMsg{op: op, targetID: targetID, detail: detail, err: err}
	}
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = text
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

// syncRows rebuilds the bubbles list from the controller state, keeping the
// cursor near its previous position.
func (m *appModel) syncRows() {
	ctrl := m.ctrl()
	sel := ctrl.Selection()
	items := make([]list.Item, 0, len(ctrl.Items()))
	for _, it := range ctrl.Items() {
		items = append(items, recordRowItem{item: it, res: m.res, checked: sel.Has(it.ID)})
	}
	idx := m.rowsList.Index()
	m.rowsList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.rowsList.Select(idx)
	}
}

func (m appModel) selectedItem() (model.Item, bool) {
	if it, ok := m.rowsList.SelectedItem().(recordRowItem); ok {
		return it.item, true
	}
	return model.Item{}, false
}

func (m *appModel) resizeLists() {
	headerH := 4 // breadcrumb + search/filter line + gap
	footerH := 3 // pagination + minibuffer/help
	h := m.height - headerH - footerH
	if h < 3 {
		h = 3
	}
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	m.menuList.SetSize(w, h)
	m.rowsList.SetSize(w, h)
}

func (m *appModel) openLoginModal() {
	m.closeAllModals()
	m.modal = modalLogin
	m.loginFocus = 0
	if sess, err := m.store.Load(); err == nil {
		m.emailInput.SetValue(sess.Email)
	}
	m.emailInput.Focus()
}
