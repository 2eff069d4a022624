package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

// Webhook posts alerts to a chat webhook. The payload is compatible
// with Slack, Mattermost and Discord incoming webhooks.
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

type webhookPayload struct {
	Text string `json:"text"`
}

// NewWebhook returns Webhook posting to url.
func NewWebhook(logger *zap.Logger, url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// SendExpiryAlert implements Notifier.
func (w *Webhook) SendExpiryAlert(ctx context.Context, domain string, days int) error {
	text := fmt.Sprintf(":warning: %s\nThe SSL certificate of %s expires in %d days, renew it to avoid service disruption.",
		alertSubject(domain, days), domain, days)
	return w.post(ctx, text)
}

// SendSummaryReport implements Notifier.
func (w *Webhook) SendSummaryReport(ctx context.Context, domains entities.Domains) error {
	s := Summarize(domains)

	var b strings.Builder
	fmt.Fprintf(&b, "Daily SSL certificate report\nMonitored domains: %d\nValid SSL: %d\nExpiring within %d days: %d",
		s.Total, s.WithSSL, ExpiringWithin, len(s.Expiring))
	for _, d := range s.Expiring {
		fmt.Fprintf(&b, "\n- %s: %d days remaining", d.Name, d.Days)
	}

	return w.post(ctx, b.String())
}

func (w *Webhook) post(ctx context.Context, text string) error {
	body, err := json.Marshal(webhookPayload{Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode) //nolint:goerr113
	}

	w.logger.Debug("webhook delivered", zap.Int("status", resp.StatusCode))
	return nil
}
