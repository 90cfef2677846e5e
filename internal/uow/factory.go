package uow

import (
	"context"

	"github.com/dayforge/dayforge/ent"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/masking"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/worker"
)

// Factory holds the process-wide collaborators every UoW needs and binds
// them consistently, so command handlers and reactive handlers never
// construct a UoW by hand (and never forget to bind the deferred-job
// broker).
type Factory struct {
	client     *ent.Client
	dispatcher *events.Dispatcher
	publisher  pubsub.Publisher
	broker     worker.Broker
	masker     *masking.Service
}

// NewFactory wires the collaborators a UoW.Begin call needs. masker may be
// nil, in which case audit rows are written with entity_data unmasked (the
// zero value is only acceptable in tests; production wiring always passes a
// *masking.Service).
func NewFactory(client *ent.Client, dispatcher *events.Dispatcher, publisher pubsub.Publisher, broker worker.Broker, masker *masking.Service) *Factory {
	return &Factory{client: client, dispatcher: dispatcher, publisher: publisher, broker: broker, masker: masker}
}

// New opens a fresh top-level UoW scoped to userID with the deferred worker
// queue already bound to the broker.
func (f *Factory) New(ctx context.Context, userID string) (*UoW, error) {
	u, err := Begin(ctx, f.client, userID, f.dispatcher, f.publisher)
	if err != nil {
		return nil, err
	}
	u.masker = f.masker
	u.Workers().Bind(f.broker)
	return u, nil
}
