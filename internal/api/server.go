package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"TradeBook/internal/booking"
	"TradeBook/internal/observability"
)

// Subjects for the request/reply API. All handlers run in the
// "tradebook-api" queue group so multiple instances share the load.
const (
	SubjectBook           = "tradebook.api.v1.book"
	SubjectGet            = "tradebook.api.v1.get"
	SubjectByCounterparty = "tradebook.api.v1.by_counterparty"
	SubjectAll            = "tradebook.api.v1.all"

	apiQueueGroup = "tradebook-api"
)

// Server exposes the booking service over NATS request/reply with JSON
// payloads.
type Server struct {
	nc      *nats.Conn
	svc     *booking.Service
	log     zerolog.Logger
	metrics *observability.Metrics
	timeout time.Duration
	subs    []*nats.Subscription
}

func NewServer(nc *nats.Conn, svc *booking.Service, log zerolog.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		nc:      nc,
		svc:     svc,
		log:     log,
		metrics: metrics,
		timeout: 5 * time.Second,
	}
}

// Start subscribes all API handlers. Call Stop to drain them.
func (s *Server) Start() error {
	handlers := []struct {
		subject string
		op      string
		fn      func(context.Context, []byte) []byte
	}{
		{SubjectBook, "book", s.handleBook},
		{SubjectGet, "get", s.handleGet},
		{SubjectByCounterparty, "by_counterparty", s.handleByCounterparty},
		{SubjectAll, "all", s.handleAll},
	}

	for _, h := range handlers {
		h := h
		sub, err := s.nc.QueueSubscribe(h.subject, apiQueueGroup, func(msg *nats.Msg) {
			start := time.Now()
			if s.metrics != nil {
				s.metrics.APIRequests.WithLabelValues(h.op).Inc()
			}

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			resp := h.fn(ctx, msg.Data)
			cancel()

			if err := msg.Respond(resp); err != nil {
				s.log.Warn().Err(err).Str("subject", h.subject).Msg("respond failed")
			}
			if s.metrics != nil {
				s.metrics.APIDuration.WithLabelValues(h.op).Observe(time.Since(start).Seconds())
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", h.subject, err)
		}
		s.subs = append(s.subs, sub)
		s.log.Info().Str("subject", h.subject).Msg("API subject live")
	}

	return nil
}

// Stop unsubscribes all handlers.
func (s *Server) Stop() {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			s.log.Warn().Err(err).Msg("drain subscription failed")
		}
	}
	s.subs = nil
}

func (s *Server) handleBook(ctx context.Context, data []byte) []byte {
	var wire BookRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		s.countError("book", codeBadRequest)
		return marshalTrade(TradeResponse{Error: &ErrorBody{Code: codeBadRequest, Message: err.Error()}})
	}

	req, err := wire.toDomain(time.Now)
	if err != nil {
		s.countError("book", codeBadRequest)
		return marshalTrade(TradeResponse{Error: &ErrorBody{Code: codeBadRequest, Message: err.Error()}})
	}

	rec, err := s.svc.BookTrade(ctx, req)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			s.countError("book", codeValidationFailed)
			return marshalTrade(TradeResponse{Error: &ErrorBody{
				Code:       codeValidationFailed,
				Message:    verr.Error(),
				Violations: verr.Violations,
			}})
		}

		s.countError("book", codeInternal)
		s.log.Error().Err(err).Msg("booking failed")
		// A publish failure after the save still returns the booked record;
		// the caller can resubmit under the same idempotency key.
		if rec != nil {
			return marshalTrade(TradeResponse{Trade: rec})
		}
		return marshalTrade(TradeResponse{Error: &ErrorBody{Code: codeInternal, Message: "booking failed"}})
	}

	return marshalTrade(TradeResponse{Trade: rec})
}

func (s *Server) handleGet(_ context.Context, data []byte) []byte {
	var wire GetRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		s.countError("get", codeBadRequest)
		return marshalTrade(TradeResponse{Error: &ErrorBody{Code: codeBadRequest, Message: err.Error()}})
	}

	rec, ok := s.svc.GetTrade(wire.TradeID)
	if !ok {
		s.countError("get", codeNotFound)
		return marshalTrade(TradeResponse{Error: &ErrorBody{
			Code:    codeNotFound,
			Message: fmt.Sprintf("trade %s not found", wire.TradeID),
		}})
	}
	return marshalTrade(TradeResponse{Trade: rec})
}

func (s *Server) handleByCounterparty(_ context.Context, data []byte) []byte {
	var wire CounterpartyRequest
	if err := json.Unmarshal(data, &wire); err != nil {
		s.countError("by_counterparty", codeBadRequest)
		return marshalTrades(TradesResponse{Error: &ErrorBody{Code: codeBadRequest, Message: err.Error()}})
	}
	return marshalTrades(TradesResponse{Trades: s.svc.GetTradesByCounterparty(wire.Counterparty)})
}

func (s *Server) handleAll(_ context.Context, _ []byte) []byte {
	return marshalTrades(TradesResponse{Trades: s.svc.GetAllTrades()})
}

func (s *Server) countError(op, reason string) {
	if s.metrics != nil {
		s.metrics.APIErrors.WithLabelValues(op, reason).Inc()
	}
}

func marshalTrade(resp TradeResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"error":{"code":"internal","message":"encode response"}}`)
	}
	return data
}

func marshalTrades(resp TradesResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		return []byte(`{"error":{"code":"internal","message":"encode response"}}`)
	}
	return data
}
