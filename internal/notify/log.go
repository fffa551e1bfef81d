package notify

import (
	"context"

	"github.com/rs/zerolog"

	"TradeBook/internal/event"
)

// LogPublisher is the reference observer: it records the booking in the log
// and otherwise does nothing.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, evt *event.TradeBooked) error {
	p.log.Info().
		Str("event_id", evt.EventID).
		Str("correlation_id", evt.CorrelationID).
		Str("trade_id", evt.Trade.TradeID).
		Str("asset_class", evt.Trade.AssetClass.String()).
		Msg("trade booked event")
	return nil
}
