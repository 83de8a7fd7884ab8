// Package notify forwards error context to an external channel. Delivery is
// best effort; a failed notification never fails the run it reports on.
package notify

import "context"

// Notifier is the error-notification collaborator.
type Notifier interface {
	NotifyError(ctx context.Context, message string, err error, fields map[string]string)
}

// Nop discards all notifications.
type Nop struct{}

// NotifyError implements Notifier.
func (Nop) NotifyError(context.Context, string, error, map[string]string) {}
