// Package notify delivers human-readable text to the operator's chat.
//
// Notifications are best-effort side effects of the relay pipeline: call
// sites log a failed delivery and move on, it never alters control flow.
package notify

import (
	"context"
	"errors"
)

// Notifier delivers one text message to the operator.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Multi fans one notification out to every configured sink. A sink failure
// does not stop delivery to the others.
type Multi []Notifier

// Notify sends text to all sinks and joins their errors.
func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is the sink used when no channel is configured.
type Discard struct{}

// Notify drops the message.
func (Discard) Notify(context.Context, string) error { return nil }
