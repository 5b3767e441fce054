package events

import "time"

// SessionEventType represents session-specific event types.
type SessionEventType string

// Session event type constants.
const (
	SessionEventCreated      SessionEventType = "created"
	SessionEventRenamed      SessionEventType = "renamed"
	SessionEventModelChanged SessionEventType = "model_changed"
	SessionEventDeleted      SessionEventType = "deleted"
	SessionEventCleared      SessionEventType = "cleared"
	SessionEventAllCleared   SessionEventType = "all_cleared"
	SessionEventMessageAdded SessionEventType = "message_added"
)

// SessionEvent represents a session lifecycle event.
type SessionEvent struct {
	SessionID string
	Title     string
	Model     string
	Type      SessionEventType
	Timestamp time.Time

	// Optional fields
	MessageRole string // For MessageAdded
	MessageText string // For MessageAdded
}

// NewSessionCreatedEvent creates a session created event.
func NewSessionCreatedEvent(id, title, model string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Model:     model,
		Type:      SessionEventCreated,
		Timestamp: time.Now(),
	}
}

// NewSessionRenamedEvent creates a session renamed event.
func NewSessionRenamedEvent(id, title string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Title:     title,
		Type:      SessionEventRenamed,
		Timestamp: time.Now(),
	}
}

// NewSessionModelChangedEvent creates a model reassignment event.
func NewSessionModelChangedEvent(id, model string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Model:     model,
		Type:      SessionEventModelChanged,
		Timestamp: time.Now(),
	}
}

// NewSessionDeletedEvent creates a session deleted event.
func NewSessionDeletedEvent(id string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Type:      SessionEventDeleted,
		Timestamp: time.Now(),
	}
}

// NewSessionClearedEvent creates a session cleared event.
func NewSessionClearedEvent(id string) SessionEvent {
	return SessionEvent{
		SessionID: id,
		Type:      SessionEventCleared,
		Timestamp: time.Now(),
	}
}

// NewAllSessionsClearedEvent creates an event for a registry-wide wipe.
func NewAllSessionsClearedEvent() SessionEvent {
	return SessionEvent{
		Type:      SessionEventAllCleared,
		Timestamp: time.Now(),
	}
}

// NewSessionMessageAddedEvent creates a message added event.
func NewSessionMessageAddedEvent(sessionID, role, text string) SessionEvent {
	return SessionEvent{
		SessionID:   sessionID,
		Type:        SessionEventMessageAdded,
		MessageRole: role,
		MessageText: text,
		Timestamp:   time.Now(),
	}
}
