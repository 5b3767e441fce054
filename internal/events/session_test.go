//nolint:goconst // Test files use literal strings for clarity.
package events

import (
	"testing"
	"time"
)

func TestSessionEventTypes(t *testing.T) {
	types := []SessionEventType{
		SessionEventCreated,
		SessionEventRenamed,
		SessionEventModelChanged,
		SessionEventDeleted,
		SessionEventCleared,
		SessionEventAllCleared,
		SessionEventMessageAdded,
	}

	seen := make(map[SessionEventType]bool)
	for _, typ := range types {
		if seen[typ] {
			t.Errorf("duplicate event type: %s", typ)
		}
		seen[typ] = true

		if string(typ) == "" {
			t.Error("event type should have non-empty string value")
		}
	}
}

func TestSessionEventConstructors(t *testing.T) {
	tests := []struct {
		name      string
		event     SessionEvent
		wantType  SessionEventType
		wantID    string
		wantTitle string
		wantModel string
	}{
		{
			name:      "created",
			event:     NewSessionCreatedEvent("s-1", "New Chat", "llama3.2:3b"),
			wantType:  SessionEventCreated,
			wantID:    "s-1",
			wantTitle: "New Chat",
			wantModel: "llama3.2:3b",
		},
		{
			name:      "renamed",
			event:     NewSessionRenamedEvent("s-2", "Phishing triage"),
			wantType:  SessionEventRenamed,
			wantID:    "s-2",
			wantTitle: "Phishing triage",
		},
		{
			name:      "model changed",
			event:     NewSessionModelChangedEvent("s-3", "mistral:7b"),
			wantType:  SessionEventModelChanged,
			wantID:    "s-3",
			wantModel: "mistral:7b",
		},
		{
			name:     "deleted",
			event:    NewSessionDeletedEvent("s-4"),
			wantType: SessionEventDeleted,
			wantID:   "s-4",
		},
		{
			name:     "cleared",
			event:    NewSessionClearedEvent("s-5"),
			wantType: SessionEventCleared,
			wantID:   "s-5",
		},
		{
			name:     "all cleared",
			event:    NewAllSessionsClearedEvent(),
			wantType: SessionEventAllCleared,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", tt.event.Type, tt.wantType)
			}
			if tt.event.SessionID != tt.wantID {
				t.Errorf("SessionID = %q, want %q", tt.event.SessionID, tt.wantID)
			}
			if tt.event.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tt.event.Title, tt.wantTitle)
			}
			if tt.event.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", tt.event.Model, tt.wantModel)
			}
			if tt.event.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}
}

func TestNewSessionMessageAddedEvent(t *testing.T) {
	before := time.Now()
	event := NewSessionMessageAddedEvent("s-1", "user", "Is 10.0.0.5 beaconing?")
	after := time.Now()

	if event.Type != SessionEventMessageAdded {
		t.Errorf("Type = %q, want %q", event.Type, SessionEventMessageAdded)
	}
	if event.MessageRole != "user" {
		t.Errorf("MessageRole = %q, want %q", event.MessageRole, "user")
	}
	if event.MessageText != "Is 10.0.0.5 beaconing?" {
		t.Errorf("MessageText = %q", event.MessageText)
	}
	if event.Timestamp.Before(before) || event.Timestamp.After(after) {
		t.Error("timestamp should be within test bounds")
	}
}
