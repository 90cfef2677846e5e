package reactive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/dayforge/dayforge/internal/commands"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/events"
	"github.com/dayforge/dayforge/internal/pubsub"
	"github.com/dayforge/dayforge/internal/uow"
)

// AlarmDispatchHandler is the "downstream handler [that] translates the
// event to transport (push/SMS/kiosk) based on alarm.type" referenced by
// §4.5.1. It is registered on the process-wide events.Dispatcher at
// startup and runs after the triggering UoW has already committed, so it
// opens its own UoW per alarm to record the delivery attempt.
type AlarmDispatchHandler struct {
	factory     *uow.Factory
	pushGateway commands.PushGateway
	publisher   pubsub.Publisher
}

// NewAlarmDispatchHandler wires the collaborators needed to turn a fired
// alarm into an actual notification.
func NewAlarmDispatchHandler(factory *uow.Factory, pushGateway commands.PushGateway, publisher pubsub.Publisher) *AlarmDispatchHandler {
	return &AlarmDispatchHandler{factory: factory, pushGateway: pushGateway, publisher: publisher}
}

// Types declares this handler only cares about AlarmTriggeredEvent.
func (h *AlarmDispatchHandler) Types() []string { return []string{"AlarmTriggeredEvent"} }

// Handle dispatches by alarm.type: GENTLE/FIRM/LOUD/SIREN send a push
// notification, KIOSK publishes verbatim on the kiosk channel (§4.5.6
// shape), URL is a client-side affordance with no server transport.
func (h *AlarmDispatchHandler) Handle(ctx context.Context, evt events.Event) error {
	ae, ok := evt.(domain.AlarmTriggeredEvent)
	if !ok {
		return nil
	}

	switch ae.AlarmType {
	case domain.AlarmKiosk:
		return h.publishKiosk(ctx, ae)
	case domain.AlarmURL:
		return nil
	default:
		return h.sendPush(ctx, ae)
	}
}

// sendPush defers the actual delivery through the WorkersToSchedule
// collector rather than calling commands.SendPushNotification inline: an
// alarm only ever fires once (it's driven by the dispatcher, not polled),
// so there's no dedup reason to write the audit row synchronously, and
// routing it through the worker pool gets it the pool's retry/backoff on
// gateway failure for free.
func (h *AlarmDispatchHandler) sendPush(ctx context.Context, ae domain.AlarmTriggeredEvent) error {
	u, err := h.factory.New(ctx, ae.UserID())
	if err != nil {
		return err
	}
	content := fmt.Sprintf("Alarm: %s", ae.AlarmID)
	u.Workers().ScheduleSendPushNotification(
		ae.UserID(),
		fmt.Sprintf("alarm:%s:%s", ae.DayIDVal, ae.AlarmID),
		content,
		nil,
	)
	return u.Commit()
}

func (h *AlarmDispatchHandler) publishKiosk(ctx context.Context, ae domain.AlarmTriggeredEvent) error {
	message := fmt.Sprintf("Alarm: %s", ae.AlarmID)
	sum := sha256.Sum256([]byte(message))
	payload := pubsub.KioskPayload{Message: message, Priority: "high", MessageHash: hex.EncodeToString(sum[:])}
	if err := h.publisher.PublishKioskNotification(ctx, ae.UserID(), payload); err != nil {
		slog.Error("failed to publish kiosk alarm", "user_id", ae.UserID(), "alarm_id", ae.AlarmID, "error", err)
		return err
	}
	return nil
}
