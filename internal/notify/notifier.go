// Package notify delivers new-listing messages to the subscriber. The
// channel is a narrow external collaborator: it accepts message text for a
// destination and reports success or failure.
package notify

import "context"

// Notifier is the delivery channel for one configured destination.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
