package gateway

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dayforge/dayforge/internal/domain"
)

// HTTPPushGateway implements commands.PushGateway by POSTing the payload
// directly to each subscription's push endpoint. There is no web-push
// library in the dependency corpus this module was grounded on, so this
// talks the wire protocol over net/http rather than reaching for one.
type HTTPPushGateway struct {
	client *http.Client
}

// NewHTTPPushGateway returns a push gateway with a bounded request timeout.
func NewHTTPPushGateway() *HTTPPushGateway {
	return &HTTPPushGateway{client: &http.Client{Timeout: 10 * time.Second}}
}

// Send implements commands.PushGateway.
func (g *HTTPPushGateway) Send(ctx context.Context, sub domain.PushSubscription, payload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewBufferString(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("TTL", "86400")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("push delivery: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint %s returned status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}
