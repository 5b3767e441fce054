// Package events defines domain-specific event types for the pub/sub system.
package events

import (
	"time"
)

// ExchangeEventType represents the phases of one chat exchange.
type ExchangeEventType string

// Exchange event type constants.
const (
	ExchangeEventStarted   ExchangeEventType = "started"
	ExchangeEventCompleted ExchangeEventType = "completed"
	ExchangeEventFailed    ExchangeEventType = "failed"
)

// ExchangeEvent reports progress of a single user/assistant exchange.
type ExchangeEvent struct { //nolint:govet // fieldalignment: preserving logical field order
	SessionID string
	Model     string
	Type      ExchangeEventType
	Timestamp time.Time

	Duration time.Duration // For Completed and Failed
	Error    error         // For Failed
}

// NewExchangeStartedEvent creates an exchange started event.
func NewExchangeStartedEvent(sessionID, model string) ExchangeEvent {
	return ExchangeEvent{
		SessionID: sessionID,
		Model:     model,
		Type:      ExchangeEventStarted,
		Timestamp: time.Now(),
	}
}

// NewExchangeCompletedEvent creates an exchange completed event.
func NewExchangeCompletedEvent(sessionID, model string, d time.Duration) ExchangeEvent {
	return ExchangeEvent{
		SessionID: sessionID,
		Model:     model,
		Type:      ExchangeEventCompleted,
		Duration:  d,
		Timestamp: time.Now(),
	}
}

// NewExchangeFailedEvent creates an exchange failed event.
func NewExchangeFailedEvent(sessionID, model string, d time.Duration, err error) ExchangeEvent {
	return ExchangeEvent{
		SessionID: sessionID,
		Model:     model,
		Type:      ExchangeEventFailed,
		Duration:  d,
		Error:     err,
		Timestamp: time.Now(),
	}
}
