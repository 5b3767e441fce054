package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

// Service is the session registry. It owns session metadata and cascades
// deletes into the message log.
type Service struct {
	store        Store
	messages     message.Store
	broker       pubsub.Publisher[events.SessionEvent]
	defaultModel string
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultModel sets the model used when Create is called without one.
func WithDefaultModel(model string) Option {
	return func(s *Service) {
		s.defaultModel = model
	}
}

// WithBroker publishes session lifecycle events to broker.
func WithBroker(broker pubsub.Publisher[events.SessionEvent]) Option {
	return func(s *Service) {
		s.broker = broker
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new session registry.
func NewService(store Store, messages message.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		messages: messages,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultModel returns the model assigned to sessions created without one.
func (s *Service) DefaultModel() string {
	return s.defaultModel
}

// Create registers a new session. An empty title becomes DefaultTitle and an
// empty model becomes the default model.
func (s *Service) Create(ctx context.Context, model, title string) (*Session, error) {
	return s.CreateWithID(ctx, uuid.New().String(), model, title)
}

// CreateWithID registers a new session under a caller-chosen id, applying the
// same defaults as Create.
func (s *Service) CreateWithID(ctx context.Context, id, model, title string) (*Session, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	if model == "" {
		model = s.defaultModel
	}

	now := s.now()
	sess := &Session{
		ID:        id,
		Title:     title,
		Model:     model,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.publish(pubsub.EventCreated, events.NewSessionCreatedEvent(sess.ID, sess.Title, sess.Model))
	return sess, nil
}

// Get retrieves a session by ID. Returns ErrNotFound if absent.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// List returns all sessions, most recently active first.
func (s *Service) List(ctx context.Context) ([]*Session, error) {
	return s.store.List(ctx)
}

// Touch marks the session as active now. Unknown ids are ignored.
func (s *Service) Touch(ctx context.Context, id string) error {
	return s.store.Touch(ctx, id, s.now())
}

// Rename changes a session's title.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	if err := s.store.UpdateTitle(ctx, id, title); err != nil {
		return err
	}
	s.publish(pubsub.EventUpdated, events.NewSessionRenamedEvent(id, title))
	return nil
}

// SetModel rebinds a session to model for all future exchanges.
func (s *Service) SetModel(ctx context.Context, id, model string) error {
	if err := s.store.UpdateModel(ctx, id, model); err != nil {
		return err
	}
	s.publish(pubsub.EventUpdated, events.NewSessionModelChangedEvent(id, model))
	return nil
}

// Delete removes a session and its message log. Deleting an unknown id
// succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	if p, ok := s.store.(Purger); ok {
		if err := p.Purge(ctx, id); err != nil {
			return err
		}
		s.publish(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
		return nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.messages.Clear(ctx, id); err != nil {
		return fmt.Errorf("cascading delete: %w", err)
	}
	s.publish(pubsub.EventDeleted, events.NewSessionDeletedEvent(id))
	return nil
}

// ClearAll removes every session and every message log.
func (s *Service) ClearAll(ctx context.Context) error {
	if p, ok := s.store.(Purger); ok {
		if err := p.PurgeAll(ctx); err != nil {
			return err
		}
		s.publish(pubsub.EventDeleted, events.NewAllSessionsClearedEvent())
		return nil
	}

	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	if err := s.messages.ClearAll(ctx); err != nil {
		return fmt.Errorf("cascading clear: %w", err)
	}
	s.publish(pubsub.EventDeleted, events.NewAllSessionsClearedEvent())
	return nil
}

func (s *Service) publish(t pubsub.EventType, ev events.SessionEvent) {
	if s.broker != nil {
		s.broker.Publish(t, ev)
	}
}
