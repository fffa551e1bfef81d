package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"TradeBook/internal/event"
	"TradeBook/internal/observability"
	"TradeBook/internal/trade"
	"TradeBook/internal/validation"
)

// TradeStore is the record storage capability the service depends on.
// Lookups report absence as a boolean, not an error; Save may fail and its
// error propagates to the BookTrade caller unmodified in meaning.
type TradeStore interface {
	Save(rec *trade.Record) error
	GetByID(id string) (*trade.Record, bool)
	GetByIdempotencyKey(key string) (*trade.Record, bool)
	GetByCounterparty(name string) []*trade.Record
	GetAll() []*trade.Record
	Exists(id string) bool
	Delete(id string)
}

// maxIDAttempts bounds the legible trade ID collision retry before falling
// back to a UUID-based ID.
const maxIDAttempts = 5

// Service orchestrates the booking pipeline: idempotency check, generic and
// asset-specific validation, record construction, persistence, notification.
type Service struct {
	store      TradeStore
	publisher  event.Publisher
	validators *validation.Registry
	ids        *trade.IDGenerator
	latch      *keyLatch
	log        zerolog.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewService wires the two required dependencies plus the ID generator.
// Validators are registered afterwards via AddValidator.
func NewService(store TradeStore, publisher event.Publisher, ids *trade.IDGenerator, log zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:      store,
		publisher:  publisher,
		validators: validation.NewRegistry(),
		ids:        ids,
		latch:      newKeyLatch(),
		log:        log,
		metrics:    metrics,
		now:        time.Now,
	}
}

// AddValidator registers an asset-class validator. The first validator
// registered for a class wins.
func (s *Service) AddValidator(v validation.AssetValidator) {
	s.validators.Register(v)
}

// BookTrade runs the booking pipeline and returns the persisted record.
//
// Submissions carrying an idempotency key are serialized per key: repeated
// or concurrent submissions under one key produce exactly one stored record,
// and every call returns it. A *ValidationError aborts the booking before
// any mutation. If event publication fails after the save, the record stays
// persisted and is returned together with the error; resubmitting under the
// same idempotency key recovers it without side effects.
func (s *Service) BookTrade(ctx context.Context, req *trade.Request) (*trade.Record, error) {
	start := s.now()

	// Step 1: idempotency short-circuit. The latch closes the race between
	// "check absent" and "save" for concurrent duplicates.
	if req.IdempotencyKey != "" {
		release := s.latch.acquire(req.IdempotencyKey)
		defer release()

		if existing, ok := s.store.GetByIdempotencyKey(req.IdempotencyKey); ok {
			if s.metrics != nil {
				s.metrics.BookingDuplicates.Inc()
			}
			s.log.Debug().
				Str("idempotency_key", req.IdempotencyKey).
				Str("trade_id", existing.TradeID).
				Msg("duplicate submission, returning existing trade")
			return existing, nil
		}
	}

	// Step 2: generic validation, independent of validator registration.
	if err := validateGeneric(req); err != nil {
		if s.metrics != nil {
			s.metrics.BookingsRejected.WithLabelValues(string(StageGeneric)).Inc()
		}
		return nil, err
	}

	// Step 3: asset-specific validation. Unregistered classes are accepted
	// without asset-specific checks.
	if v, ok := s.validators.Lookup(req.AssetClass); ok {
		if violations := v.Validate(req); len(violations) > 0 {
			if s.metrics != nil {
				s.metrics.BookingsRejected.WithLabelValues(string(StageAsset)).Inc()
			}
			return nil, newAssetValidationError(violations)
		}
	}

	// Step 4: construction.
	rec := s.buildRecord(req)

	// Step 5: persistence.
	if err := s.store.Save(rec); err != nil {
		return nil, fmt.Errorf("save trade %s: %w", rec.TradeID, err)
	}
	if s.metrics != nil {
		s.metrics.TradesBooked.WithLabelValues(rec.AssetClass.String()).Inc()
		s.metrics.StoredTrades.Inc()
		s.metrics.BookingDuration.WithLabelValues(rec.AssetClass.String()).Observe(s.now().Sub(start).Seconds())
	}

	s.log.Info().
		Str("trade_id", rec.TradeID).
		Str("asset_class", rec.AssetClass.String()).
		Str("counterparty", rec.Counterparty).
		Float64("notional", rec.Notional).
		Str("currency", rec.Currency).
		Msg("trade booked")

	// Step 6: notification. Failures do not roll back persistence.
	evt := s.buildEvent(rec)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		if s.metrics != nil {
			s.metrics.PublishFailures.WithLabelValues("fanout").Inc()
		}
		return rec, fmt.Errorf("publish booked event for trade %s: %w", rec.TradeID, err)
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.Inc()
	}

	return rec, nil
}

// GetTrade returns the record stored under id, if any.
func (s *Service) GetTrade(id string) (*trade.Record, bool) {
	return s.store.GetByID(id)
}

// GetTradesByCounterparty returns every record booked against name.
func (s *Service) GetTradesByCounterparty(name string) []*trade.Record {
	return s.store.GetByCounterparty(name)
}

// GetAllTrades returns an unordered snapshot of all booked trades.
func (s *Service) GetAllTrades() []*trade.Record {
	return s.store.GetAll()
}

// validateGeneric applies the rules that run for every asset class and
// reports the first failing one.
func validateGeneric(req *trade.Request) *ValidationError {
	switch {
	case req.InstrumentID == "":
		return newGenericValidationError("InstrumentId cannot be empty")
	case req.Counterparty == "":
		return newGenericValidationError("Counterparty cannot be empty")
	case req.Notional <= 0:
		return newGenericValidationError("Notional must be positive")
	case req.Currency == "":
		return newGenericValidationError("Currency cannot be empty")
	}
	return nil
}

func (s *Service) buildRecord(req *trade.Request) *trade.Record {
	tradeID := req.TradeID
	if tradeID == "" {
		tradeID = s.nextTradeID()
	}

	additional := make(map[string]string, len(req.Additional))
	for k, v := range req.Additional {
		additional[k] = v
	}

	return &trade.Record{
		TradeID:        tradeID,
		AssetClass:     req.AssetClass,
		InstrumentID:   req.InstrumentID,
		Counterparty:   req.Counterparty,
		Notional:       req.Notional,
		Currency:       req.Currency,
		Side:           req.Side,
		TradeDate:      req.TradeDate,
		SettlementDate: req.SettlementDate,
		Additional:     additional,
		IdempotencyKey: req.IdempotencyKey,
		CorrelationID:  req.CorrelationID,
		CreatedBy:      req.CreatedBy,
		Status:         trade.StatusBooked,
		CreatedAt:      s.now().UTC(),
	}
}

// nextTradeID generates a legible ID, retrying on store collisions before
// falling back to a UUID-based one.
func (s *Service) nextTradeID() string {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids.TradeID()
		if !s.store.Exists(id) {
			return id
		}
	}
	return s.ids.UniqueTradeID()
}

func (s *Service) buildEvent(rec *trade.Record) *event.TradeBooked {
	correlationID := rec.CorrelationID
	if correlationID == "" {
		correlationID = s.ids.CorrelationID()
	}
	return &event.TradeBooked{
		EventID:       s.ids.EventID(),
		CorrelationID: correlationID,
		Timestamp:     s.now().UTC(),
		Trade:         rec,
	}
}
