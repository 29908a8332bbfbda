package tui

import (
	"backoffice-cli/internal/listctl"
)

type view int

const (
	viewMenu view = iota
	viewList
	viewDetail
)

type modalKind int

const (
	modalNone modalKind = iota
	modalCreate
	modalEdit
	modalConfirmDelete
	modalConfirmBulk
	modalPickStatus
	modalPickFilter
	modalPickPageSize
	modalFilterValue
	modalUploadPath
	modalLogin
)

// statusPickFor disambiguates what the status picker applies to.
type statusPickFor int

const (
	statusPickFilter statusPickFor = iota
	statusPickSingle
	statusPickBulk
)

type resizeDoneMsg struct{ seq int }

// searchCommitMsg fires when the debounce window after the last keystroke
// elapses. Stale seqs are ignored; only the newest timer commits.
type searchCommitMsg struct{ seq int }

type listFetchedMsg struct {
	resKey string
	fetch  listctl.Fetch
}

type mutationDoneMsg struct {
	op       string
	targetID string
	detail   string
	err      error
}

type loginDoneMsg struct {
	email string
	err   error
}

type sessionExpiredMsg struct{}

type minibufferClearMsg struct{ seq int }

func (m *appModel) closeAllModals() {
	if m == nil {
		return
	}
	m.modal = modalNone
	m.modalErr = ""
	m.mutationBusy = false
	m.confirmFocus = confirmFocusConfirm
	m.pickIdx = 0
	m.pickOptions = nil
	m.pendingStatus = ""
	m.pendingFilterKey = ""
	m.pendingTargetID = ""
	m.form = nil

	m.input.Placeholder = ""
	m.input.SetValue("")
	m.input.Blur()

	m.emailInput.SetValue("")
	m.emailInput.Blur()
	m.passwordInput.SetValue("")
	m.passwordInput.Blur()
}
