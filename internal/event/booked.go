package event

import (
	"context"
	"errors"
	"time"

	"TradeBook/internal/trade"
)

// TradeBooked is delivered to observers after a booking is persisted.
type TradeBooked struct {
	// EventID is unique per notification.
	EventID string `json:"event_id"`

	// CorrelationID links the event back to the originating submission.
	// Defaults to the record's own correlation ID.
	CorrelationID string `json:"correlation_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Trade is the booked record. Observers receive it after the store has
	// taken ownership and must treat it as read-only.
	Trade *trade.Record `json:"trade"`
}

// Publisher is the observer capability invoked once per successful booking.
// The booking service treats implementations as opaque.
type Publisher interface {
	Publish(ctx context.Context, evt *TradeBooked) error
}

// Fanout delivers each event to every wrapped publisher. All publishers are
// attempted; their errors are joined.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt *TradeBooked) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
