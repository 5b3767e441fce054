package pubsub

import (
	"github.com/guilhermegouw/socchat/internal/events"
)

// Hub is the central container for all domain brokers.
type Hub struct {
	Session  *Broker[events.SessionEvent]
	Exchange *Broker[events.ExchangeEvent]
}

// NewHub creates a new Hub with all domain brokers initialized.
func NewHub() *Hub {
	return &Hub{
		Session:  NewBroker[events.SessionEvent]("session", DefaultBufferSize),
		Exchange: NewBroker[events.ExchangeEvent]("exchange", DefaultBufferSize),
	}
}

// Shutdown shuts down all brokers.
func (h *Hub) Shutdown() {
	h.Session.Shutdown()
	h.Exchange.Shutdown()
}

// Metrics returns metrics for every broker keyed by broker name.
func (h *Hub) Metrics() map[string]BrokerMetrics {
	return map[string]BrokerMetrics{
		h.Session.Name():  h.Session.Metrics(),
		h.Exchange.Name(): h.Exchange.Metrics(),
	}
}
