package commands

import (
	"context"

	"github.com/dayforge/dayforge/internal/domain"
	"github.com/dayforge/dayforge/internal/uow"
)

// SendSMSInput is the command's input: an outbound SMS a reactive handler
// decided to send (§4.5.2 TEXT channel).
type SendSMSInput struct {
	UserID     string
	MessageID  string
	ToNumber   string
	Body       string
	TriggeredBy string
}

// SendSMS persists the outbound Message before the caller hands it to the
// SMS gateway, so the attempt is recorded even if delivery later fails.
func SendSMS(ctx context.Context, u *uow.UoW, in SendSMSInput) (*domain.Message, error) {
	tx := u.Tx()
	meta := map[string]interface{}{
		"to_number": in.ToNumber,
		"provider":  "sms",
	}
	m := domain.NewMessage(in.MessageID, in.UserID, domain.RoleAssistant, in.Body, meta)
	m.TriggeredBy = &in.TriggeredBy

	if err := persistMessage(ctx, tx, m); err != nil {
		return nil, err
	}
	u.Add(m)
	return m, nil
}
