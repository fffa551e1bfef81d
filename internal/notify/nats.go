package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"TradeBook/internal/event"
	"TradeBook/internal/observability"
)

// Subjects follow the pattern: tradebook.events.booked.{asset_class}
const (
	eventStreamName   = "TRADEBOOK_EVENTS"
	eventSubjectRoot  = "tradebook.events"
	bookedSubjectBase = eventSubjectRoot + ".booked"
)

// NATSPublisher delivers TradeBooked events to downstream consumers over
// JetStream.
type NATSPublisher struct {
	js      jetstream.JetStream
	log     zerolog.Logger
	metrics *observability.Metrics
}

func NewNATSPublisher(js jetstream.JetStream, log zerolog.Logger, metrics *observability.Metrics) *NATSPublisher {
	return &NATSPublisher{js: js, log: log, metrics: metrics}
}

func (p *NATSPublisher) Publish(ctx context.Context, evt *event.TradeBooked) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal booked event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", bookedSubjectBase, strings.ToLower(evt.Trade.AssetClass.String()))
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		if p.metrics != nil {
			p.metrics.PublishFailures.WithLabelValues("nats").Inc()
		}
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.log.Debug().
		Str("subject", subject).
		Str("event_id", evt.EventID).
		Msg("booked event published")
	return nil
}

// EnsureEventStream creates the outbound events stream.
func EnsureEventStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      eventStreamName,
		Subjects:  []string{eventSubjectRoot + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    72 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("create stream %s: %w", eventStreamName, err)
	}
	return nil
}

// ConnectNATS establishes a NATS connection and returns a JetStream context.
func ConnectNATS(url string, log zerolog.Logger) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("jetstream: %w", err)
	}

	return nc, js, nil
}
