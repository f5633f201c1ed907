// Package notify delivers reconciled price updates to a Discord webhook.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/indicator"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/metrics"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// DiscordNotifier posts formatted messages to a Discord webhook.
// A notifier with an empty webhook URL is disabled and drops messages
// silently, so callers never need a nil check.
type DiscordNotifier struct {
	webhookURL string
	client     *resty.Client
	logger     *logging.Logger
}

type webhookPayload struct {
	Content string `json:"content"`
}

// NewDiscordNotifier creates a notifier for the given webhook URL.
func NewDiscordNotifier(webhookURL string, timeout time.Duration, logger *logging.Logger) *DiscordNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(timeout),
		logger:     logger,
	}
}

// Enabled reports whether a webhook URL is configured.
func (n *DiscordNotifier) Enabled() bool {
	return n.webhookURL != ""
}

// NotifyPrice sends a reconciled price update with indicator context.
func (n *DiscordNotifier) NotifyPrice(ctx context.Context, result reconcile.Result, snap indicator.Snapshot) error {
	return n.send(ctx, "price", FormatPrice(result, snap))
}

// NotifyFailure sends a single clear notice that no price could be
// obtained this cycle.
func (n *DiscordNotifier) NotifyFailure(ctx context.Context) error {
	return n.send(ctx, "failure", "⚠️ Could not obtain a gold price this cycle.")
}

func (n *DiscordNotifier) send(ctx context.Context, kind, content string) error {
	if !n.Enabled() {
		n.logger.Debug("Webhook not configured, skipping notification", "kind", kind)
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{Content: content}).
		Post(n.webhookURL)
	if err != nil {
		metrics.RecordNotification(kind, "error")
		return fmt.Errorf("failed to deliver webhook: %w", err)
	}
	if resp.StatusCode() >= 300 {
		metrics.RecordNotification(kind, "error")
		return fmt.Errorf("%w: %d", ErrWebhookRejected, resp.StatusCode())
	}

	metrics.RecordNotification(kind, "ok")
	n.logger.Debug("Notification delivered", "kind", kind)
	return nil
}

// FormatPrice renders a reconciled price and indicator snapshot into the
// message body posted to the webhook.
func FormatPrice(result reconcile.Result, snap indicator.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Gold: $%s/oz (%s, %d sources, spread %s%%)",
		result.ChosenValue.StringFixed(2),
		result.ChosenSource,
		len(result.Candidates),
		result.SpreadPct.StringFixed(2))

	if result.Mismatch {
		fmt.Fprintf(&b, "\n⚠️ Source mismatch: spread %s%% exceeds threshold", result.SpreadPct.StringFixed(2))
	}

	var parts []string
	if snap.SMA != nil {
		parts = append(parts, "SMA $"+snap.SMA.StringFixed(2))
	}
	if snap.EMA != nil {
		parts = append(parts, "EMA $"+snap.EMA.StringFixed(2))
	}
	if snap.RSI != nil {
		parts = append(parts, "RSI "+snap.RSI.StringFixed(1))
	}
	if len(parts) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(parts, " | "))
	}

	return b.String()
}
