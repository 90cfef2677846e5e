package commands

import (
	"context"

	"github.com/dayforge/dayforge/ent/pushsubscription"
	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
	"github.com/google/uuid"
)

// SendPushNotificationInput is the command's input. TriggeredBy is the
// dedup key the reactive layer computed (e.g.
// "calendar_entry_reminder:<entry>:<minutes>:<channel>", §4.5.2/§4.5.3).
type SendPushNotificationInput struct {
	UserID      string
	TriggeredBy string
	Content     string
	LLMSnapshot *domain.LLMRunResultSnapshot
}

// SendPushNotification loads the user's subscriptions, attempts delivery
// through gw, and records the outcome as a PushNotification audit row
// regardless of success — a skip (no subscriptions) or a delivery error is
// still valuable as an audit trail (§4.5.3).
func SendPushNotification(ctx context.Context, u *uow.UoW, gw PushGateway, in SendPushNotificationInput) (*domain.PushNotification, error) {
	tx := u.Tx()

	subRows, err := tx.PushSubscription.Query().Where(pushsubscription.UserID(in.UserID)).All(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	subIDs := make([]string, len(subRows))
	for i, r := range subRows {
		subIDs[i] = r.ID
	}

	if len(subRows) == 0 {
		n := domain.NewPushNotification(id, in.UserID, in.TriggeredBy, domain.PushSkipped, subIDs, in.Content)
		noSubs := "no_subscriptions"
		n.ErrorMessage = &noSubs
		n.LLMSnapshot = in.LLMSnapshot
		if err := persistPushNotification(ctx, tx, n); err != nil {
			return nil, err
		}
		u.Add(n)
		return n, nil
	}

	var sendErr error
	for _, r := range subRows {
		sub := domain.PushSubscription{ID: r.ID, UserID: r.UserID, Endpoint: r.Endpoint, Keys: r.Keys, CreatedAt: r.CreatedAt}
		if err := gw.Send(ctx, sub, in.Content); err != nil {
			sendErr = err
		}
	}

	status := domain.PushSuccess
	var errMsg *string
	if sendErr != nil {
		status = domain.PushError
		msg := sendErr.Error()
		errMsg = &msg
	}

	n := domain.NewPushNotification(id, in.UserID, in.TriggeredBy, status, subIDs, in.Content)
	n.ErrorMessage = errMsg
	n.LLMSnapshot = in.LLMSnapshot
	if err := persistPushNotification(ctx, tx, n); err != nil {
		return nil, err
	}
	u.Add(n)
	return n, nil
}
