package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPSMSGateway implements commands.SMSGateway against a generic SMS
// provider's REST API (form-encoded POST with an account SID and auth
// token), the lowest common denominator across SMS providers. No SMS SDK
// appears in the dependency corpus this module was grounded on.
type HTTPSMSGateway struct {
	client     *http.Client
	apiBaseURL string
	accountSID string
	authToken  string
	fromNumber string
}

// NewHTTPSMSGateway returns an SMS gateway bound to one provider account.
func NewHTTPSMSGateway(apiBaseURL, accountSID, authToken, fromNumber string) *HTTPSMSGateway {
	return &HTTPSMSGateway{
		client:     &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: apiBaseURL,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
	}
}

// SendMessage implements commands.SMSGateway.
func (g *HTTPSMSGateway) SendMessage(ctx context.Context, toNumber, body string) error {
	form := url.Values{
		"From": {g.fromNumber},
		"To":   {toNumber},
		"Body": {body},
	}

	endpoint := strings.TrimSuffix(g.apiBaseURL, "/") + "/Accounts/" + g.accountSID + "/Messages.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.accountSID, g.authToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}
	return nil
}
