// Package sender delivers rendered notifications over the configured
// channels.
package sender

import (
	"context"

	"visitreg/internal/notify/models"
)

// Sender delivers one message over a single channel. Name labels metrics
// and logs.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg *models.Message) error
}
