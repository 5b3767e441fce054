package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

// modalClosedMsg is sent when the sessions modal is dismissed.
type modalClosedMsg struct{}

// switchSessionMsg asks to load a session's history.
type switchSessionMsg struct {
	SessionID string
}

// newSessionMsg starts a fresh conversation.
type newSessionMsg struct{}

// renameSessionMsg carries a submitted title.
type renameSessionMsg struct {
	SessionID string
	Title     string
}

// deleteSessionMsg is sent once a deletion is confirmed.
type deleteSessionMsg struct {
	SessionID string
}

// clearAllSessionsMsg is sent once clearing everything is confirmed.
type clearAllSessionsMsg struct{}

type sessionsLoadedMsg struct {
	err       error
	summaries []chat.Summary
}

type historyLoadedMsg struct {
	err     error
	history *chat.History
}

// sessionsChangedMsg reports the outcome of a mutation on the session
// registry.
type sessionsChangedMsg struct {
	err     error
	info    string
	renamed string
	title   string
	deleted string
	cleared string
	all     bool
}

type exchangeDoneMsg struct {
	result  *chat.Result
	message string
}

type exchangeFailedMsg struct {
	err     error
	message string
}

type replyCopiedMsg struct {
	err error
}

// sessionEventMsg forwards a registry event published outside the UI.
type sessionEventMsg struct {
	event pubsub.Event[events.SessionEvent]
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
