// Package chat orchestrates conversation exchanges: it binds sessions to
// models, bounds the history sent to the model and persists the result.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/finalizer"
	"github.com/guilhermegouw/socchat/internal/keylock"
	"github.com/guilhermegouw/socchat/internal/llm"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/prompt"
	"github.com/guilhermegouw/socchat/internal/pubsub"
	"github.com/guilhermegouw/socchat/internal/session"
)

// DefaultMaxTokens is the token budget used when a request does not set one.
const DefaultMaxTokens = 500

// Settings are the generation parameters applied to every exchange.
type Settings struct {
	Persona     string
	Temperature *float64
	TopP        *float64
	Stop        []string
	MaxTokens   int
	WindowSize  int
}

// DefaultSettings returns the settings used when none are supplied.
func DefaultSettings() Settings {
	temperature, topP := 0.7, 0.9
	return Settings{
		Temperature: &temperature,
		TopP:        &topP,
		Stop:        []string{"\n\n\n", "---", "###"},
		MaxTokens:   DefaultMaxTokens,
		WindowSize:  prompt.DefaultWindowSize,
	}
}

// Request is one user message to exchange with the model.
type Request struct {
	SessionID string
	Message   string
	// Model overrides and rebinds the session's model when set.
	Model string
	// MaxTokens is the response budget. Zero selects the configured default.
	MaxTokens int
	Streaming bool
}

// Result is the finalized reply of an exchange.
type Result struct {
	Timestamp    time.Time
	Response     string
	SessionID    string
	Model        string
	ResponseTime time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithSettings replaces the default generation settings.
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		if settings.MaxTokens <= 0 {
			settings.MaxTokens = DefaultMaxTokens
		}
		s.settings = settings
	}
}

// WithBroker publishes exchange lifecycle events to broker.
func WithBroker(broker pubsub.Publisher[events.ExchangeEvent]) Option {
	return func(s *Service) {
		s.broker = broker
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the conversation orchestrator. All session mutations go through
// it so that exchanges on the same session are serialized.
type Service struct {
	sessions  *session.Service
	messages  *message.Service
	generator llm.Generator
	locks     *keylock.Locker
	broker    pubsub.Publisher[events.ExchangeEvent]
	now       func() time.Time
	settings  Settings
}

// NewService creates an orchestrator over the given registry, message store
// and generator.
func NewService(sessions *session.Service, messages *message.Service, generator llm.Generator, opts ...Option) *Service {
	s := &Service{
		sessions:  sessions,
		messages:  messages,
		generator: generator,
		locks:     keylock.New(),
		now:       time.Now,
		settings:  DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exchange sends one user message to the session's model and records the
// finalized reply. Nothing is persisted when generation fails, including the
// session itself for a first message.
func (s *Service) Exchange(ctx context.Context, req Request) (*Result, error) {
	const op = "exchange"

	if strings.TrimSpace(req.Message) == "" {
		return nil, invalid(op, ErrEmptyMessage)
	}
	maxTokens := req.MaxTokens
	switch {
	case maxTokens == 0:
		maxTokens = s.settings.MaxTokens
	case maxTokens < 0:
		return nil, invalid(op, ErrInvalidMaxTokens)
	}

	if req.SessionID != "" {
		unlock := s.locks.Lock(req.SessionID)
		defer unlock()
	}

	start := s.now()
	b, err := s.bind(ctx, req)
	if err != nil {
		return nil, storeFailed(op, err)
	}

	history, err := s.messages.List(ctx, b.id)
	if err != nil {
		return nil, storeFailed(op, err)
	}

	persona := prompt.Persona(s.settings.Persona, maxTokens)
	turns := append(prompt.Window(history, persona, s.settings.WindowSize),
		message.NewTurn(message.RoleUser, req.Message))

	debug.Event("chat", "exchange", fmt.Sprintf("session=%s model=%s new=%t history=%d sent=%d streaming=%t",
		b.id, b.model, b.create, len(history), len(turns), req.Streaming))
	s.publish(pubsub.EventStarted, events.NewExchangeStartedEvent(b.id, b.model))

	raw, err := s.generator.Generate(ctx, llm.Request{
		Model:    b.model,
		Messages: turns,
		Options: llm.Options{
			MaxTokens:   maxTokens,
			Temperature: s.settings.Temperature,
			TopP:        s.settings.TopP,
			Stop:        s.settings.Stop,
		},
	})
	if err != nil {
		s.publish(pubsub.EventFailed, events.NewExchangeFailedEvent(b.id, b.model, s.now().Sub(start), err))
		return nil, generationFailed(op, err)
	}
	elapsed := s.now().Sub(start)

	reply := finalizer.Finalize(raw, maxTokens)

	// Recording is not cancelled with the request.
	if err := s.commit(context.WithoutCancel(ctx), b, req.Message, reply); err != nil {
		return nil, storeFailed(op, err)
	}

	s.publish(pubsub.EventCompleted, events.NewExchangeCompletedEvent(b.id, b.model, elapsed))

	return &Result{
		Response:     reply,
		ResponseTime: elapsed,
		SessionID:    b.id,
		Model:        b.model,
		Timestamp:    s.now(),
	}, nil
}

// binding is the session an exchange is recorded under. It is resolved
// before generation and written only by commit.
type binding struct {
	id    string
	model string
	// create registers the session on commit.
	create bool
	// generated is set when the id was minted here rather than by the caller.
	generated bool
	// rebind stores model as the session's model on commit.
	rebind bool
}

// bind resolves the request's session without writing anything. An empty id
// gets a fresh one; an unknown id is kept and registered on commit.
func (s *Service) bind(ctx context.Context, req Request) (binding, error) {
	if req.SessionID == "" {
		return binding{
			id:        uuid.New().String(),
			model:     s.modelOrDefault(req.Model),
			create:    true,
			generated: true,
		}, nil
	}

	sess, err := s.sessions.Get(ctx, req.SessionID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		debug.Log("chat: session %s is not registered, registering it", req.SessionID)
		return binding{id: req.SessionID, model: s.modelOrDefault(req.Model), create: true}, nil
	case err != nil:
		return binding{}, err
	}

	b := binding{id: sess.ID, model: sess.Model}
	if req.Model != "" && req.Model != sess.Model {
		b.model = req.Model
		b.rebind = true
	}
	return b, nil
}

func (s *Service) modelOrDefault(model string) string {
	if model == "" {
		return s.sessions.DefaultModel()
	}
	return model
}

// commit records a successful exchange: the session registration or model
// rebind, both turns, then the activity timestamp.
func (s *Service) commit(ctx context.Context, b binding, user, reply string) error {
	switch {
	case b.create:
		if _, err := s.sessions.CreateWithID(ctx, b.id, b.model, ""); err != nil {
			return err
		}
	case b.rebind:
		if err := s.sessions.SetModel(ctx, b.id, b.model); err != nil {
			return err
		}
	}

	if err := s.messages.AppendExchange(ctx, b.id, user, reply); err != nil {
		if b.generated {
			if derr := s.sessions.Delete(ctx, b.id); derr != nil {
				debug.Error("chat", derr, "removing session "+b.id+" after failed append")
			}
		}
		return err
	}

	// The turns are recorded; a stale activity time is logged, not reported.
	if err := s.sessions.Touch(ctx, b.id); err != nil {
		debug.Error("chat", err, "touching session "+b.id)
	}
	return nil
}

func (s *Service) publish(t pubsub.EventType, ev events.ExchangeEvent) {
	if s.broker != nil {
		s.broker.Publish(t, ev)
	}
}
