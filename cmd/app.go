package cmd

import (
	"fmt"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/config"
	"github.com/guilhermegouw/socchat/internal/db"
	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/llm"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/pubsub"
	"github.com/guilhermegouw/socchat/internal/session"
)

// app holds the services shared by the commands.
type app struct {
	cfg      *config.Config
	db       *db.DB
	hub      *pubsub.Hub
	sessions *session.Service
	messages *message.Service
	chat     *chat.Service
	storage  string
}

// newApp opens the configured stores and wires the chat service. memory
// forces the in-memory stores regardless of configuration.
func newApp(cfg *config.Config, memory bool) (*app, error) {
	a := &app{
		cfg:     cfg,
		hub:     pubsub.NewHub(),
		storage: cfg.Storage.Driver,
	}
	if memory {
		a.storage = config.StorageMemory
	}

	var (
		sessionStore session.Store
		messageStore message.Store
	)
	switch a.storage {
	case config.StorageMemory:
		sessionStore = session.NewMemoryStore()
		messageStore = message.NewMemoryStore()
	default:
		database, err := db.Open(cfg.Storage.Path)
		if err != nil {
			a.hub.Shutdown()
			return nil, fmt.Errorf("opening store: %w", err)
		}
		a.db = database
		sessionStore = session.NewSQLiteStore(database.Conn())
		messageStore = message.NewSQLiteStore(database.Conn())
	}
	debug.Log("storage: %s", a.storage)

	a.messages = message.NewService(messageStore, a.hub.Session)
	a.sessions = session.NewService(sessionStore, messageStore,
		session.WithDefaultModel(cfg.Chat.DefaultModel),
		session.WithBroker(a.hub.Session),
	)

	generator := llm.NewFantasyGenerator(llm.NewBuilder(cfg))
	a.chat = chat.NewService(a.sessions, a.messages, generator,
		chat.WithSettings(settingsFrom(cfg)),
		chat.WithBroker(a.hub.Exchange),
	)
	return a, nil
}

// settingsFrom maps the chat section of the configuration.
func settingsFrom(cfg *config.Config) chat.Settings {
	return chat.Settings{
		Persona:     cfg.Chat.Persona,
		Temperature: cfg.Chat.Temperature,
		TopP:        cfg.Chat.TopP,
		Stop:        cfg.Chat.Stop,
		MaxTokens:   cfg.Chat.DefaultMaxTokens,
		WindowSize:  cfg.Chat.WindowSize,
	}
}

// Close shuts down event brokers and the database.
func (a *app) Close() error {
	a.hub.Shutdown()
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// openApp loads configuration and opens the configured stores.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, false)
}
