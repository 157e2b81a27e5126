package gateway

import (
	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/models"
	natspkg "github.com/piresc/kasbot/internal/pkg/nats"
)

// EventsGWImpl publishes domain events to NATS for downstream
// consumers (dashboard, analytics)
type EventsGWImpl struct {
	natsClient *natspkg.Client
}

// NewEventsGW creates a new events gateway
func NewEventsGW(natsClient *natspkg.Client) *EventsGWImpl {
	return &EventsGWImpl{
		natsClient: natsClient,
	}
}

// TransactionConfirmed publishes a transaction.confirmed event
func (g *EventsGWImpl) TransactionConfirmed(event models.TransactionConfirmedEvent) error {
	return g.natsClient.PublishJSON(constants.SubjectTransactionConfirmed, event)
}

// BatchConfirmed publishes a transaction.batch.confirmed event
func (g *EventsGWImpl) BatchConfirmed(event models.BatchConfirmedEvent) error {
	return g.natsClient.PublishJSON(constants.SubjectBatchConfirmed, event)
}

// ContextCreated publishes a context.created event
func (g *EventsGWImpl) ContextCreated(event models.ContextCreatedEvent) error {
	return g.natsClient.PublishJSON(constants.SubjectContextCreated, event)
}
