package notify

import "errors"

var (
	// ErrWebhookRejected indicates a non-success status from the webhook endpoint.
	ErrWebhookRejected = errors.New("webhook rejected message")
)
