package commands

import (
	"context"

	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// ReceiveSMSInput is the command's input (supplemented feature: the
// original source's inbound-SMS webhook handler).
type ReceiveSMSInput struct {
	UserID     string
	MessageID  string
	FromNumber string
	ToNumber   string
	Body       string
}

// ReceiveSMS persists the inbound message and defers an LLM triage run —
// the message itself is never blocked on the LLM call.
func ReceiveSMS(ctx context.Context, u *uow.UoW, in ReceiveSMSInput) (*domain.Message, error) {
	tx := u.Tx()

	meta := map[string]interface{}{
		"from_number": in.FromNumber,
		"to_number":   in.ToNumber,
		"provider":    "sms",
	}
	m := domain.NewMessage(in.MessageID, in.UserID, domain.RoleUser, in.Body, meta)

	if err := persistMessage(ctx, tx, m); err != nil {
		return nil, err
	}
	u.Add(m)
	u.Workers().ScheduleProcessInboundSMSMessage(in.UserID, m.ID)
	return m, nil
}
