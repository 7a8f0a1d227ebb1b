package notifier

import "context"

// Notifier delivers scan reports to a chat.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier drops every message. Used when Telegram is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Send(_ context.Context, _ string) error                 { return nil }
func (n *NoopNotifier) SendWithRetry(_ context.Context, _ string, _ int) error { return nil }
