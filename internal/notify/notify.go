// Package notify delivers completion notifications to interested
// backends. Delivery is best-effort by contract: a render never fails
// because a notification could not be sent.
package notify

import (
	"context"

	"manimrunner/internal/pkg/logger"
)

// Notifier delivers one completion notification.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, jobID, videoURL string) error
}

// BestEffort fans a notification out to all configured notifiers. Its
// Notify has no error return: failures are logged and swallowed, which
// makes the non-propagation part of the call-site contract rather than
// a hidden catch.
type BestEffort struct {
	log       *logger.Logger
	notifiers []Notifier
}

func NewBestEffort(log *logger.Logger, notifiers ...Notifier) *BestEffort {
	if log == nil {
		log = logger.NewDefault()
	}
	return &BestEffort{
		log:       log.WithComponent("notify"),
		notifiers: notifiers,
	}
}

func (b *BestEffort) Notify(ctx context.Context, jobID, videoURL string) {
	for _, n := range b.notifiers {
		if err := n.Notify(ctx, jobID, videoURL); err != nil {
			b.log.WithJobID(jobID).Warn("notification failed",
				"notifier", n.Name(),
				"error", err.Error(),
			)
		}
	}
}
