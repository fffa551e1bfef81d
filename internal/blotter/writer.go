package blotter

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"TradeBook/internal/event"
	"TradeBook/internal/observability"
)

// Writer is a downstream observer that records booked trades in a Postgres
// blotter table. It implements event.Publisher by enqueueing onto a bounded
// buffer; a worker goroutine batch-writes rows. The booking pipeline is
// never blocked by the blotter: a full buffer drops the event (with a
// metric), and write errors are logged, not propagated. The in-memory record
// store stays the system of record.
type Writer struct {
	db           *sql.DB
	in           chan *event.TradeBooked
	batchSize    int
	flushTimeout time.Duration
	log          zerolog.Logger
	metrics      *observability.Metrics
}

func NewWriter(db *sql.DB, bufSize, batchSize int, flushTimeout time.Duration, log zerolog.Logger, metrics *observability.Metrics) *Writer {
	if bufSize <= 0 {
		bufSize = 1024
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Writer{
		db:           db,
		in:           make(chan *event.TradeBooked, bufSize),
		batchSize:    batchSize,
		flushTimeout: flushTimeout,
		log:          log,
		metrics:      metrics,
	}
}

// Publish enqueues the event without blocking. Observer semantics: drop on
// full buffer and count it, never stall a booking.
func (w *Writer) Publish(_ context.Context, evt *event.TradeBooked) error {
	select {
	case w.in <- evt:
	default:
		if w.metrics != nil {
			w.metrics.BlotterDropped.Inc()
		}
		w.log.Warn().Str("trade_id", evt.Trade.TradeID).Msg("blotter buffer full, event dropped")
	}
	return nil
}

// Run drains the buffer and batch-writes rows, flushing on batch size or
// timeout. Blocks until ctx is cancelled.
func (w *Writer) Run(ctx context.Context) error {
	batch := make([]*event.TradeBooked, 0, w.batchSize)

	timer := time.NewTimer(w.flushTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				w.flush(context.Background(), batch)
			}
			return ctx.Err()

		case evt, ok := <-w.in:
			if !ok {
				if len(batch) > 0 {
					w.flush(context.Background(), batch)
				}
				return nil
			}
			batch = append(batch, evt)
			if len(batch) >= w.batchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
				timer.Reset(w.flushTimeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
			timer.Reset(w.flushTimeout)
		}
	}
}

const insertTradeSQL = `
	INSERT INTO blotter_trades (
		trade_id, event_id, correlation_id, idempotency_key,
		asset_class, instrument_id, counterparty, notional, currency, side,
		trade_date, settlement_date, status, created_by, additional, booked_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (trade_id) DO NOTHING
`

func (w *Writer) flush(ctx context.Context, batch []*event.TradeBooked) {
	start := time.Now()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		if w.metrics != nil {
			w.metrics.BlotterErrors.WithLabelValues("tx_begin").Inc()
		}
		w.log.Error().Err(err).Int("batch", len(batch)).Msg("blotter tx begin failed")
		return
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTradeSQL)
	if err != nil {
		if w.metrics != nil {
			w.metrics.BlotterErrors.WithLabelValues("prepare").Inc()
		}
		w.log.Error().Err(err).Msg("blotter prepare failed")
		return
	}
	defer stmt.Close()

	for _, evt := range batch {
		rec := evt.Trade
		additional, err := json.Marshal(rec.Additional)
		if err != nil {
			additional = []byte("{}")
		}

		if _, err := stmt.ExecContext(ctx,
			rec.TradeID, evt.EventID, evt.CorrelationID, nullable(rec.IdempotencyKey),
			rec.AssetClass.String(), rec.InstrumentID, rec.Counterparty, rec.Notional, rec.Currency, rec.Side.String(),
			rec.TradeDate, rec.SettlementDate, rec.Status.String(), rec.CreatedBy, additional, evt.Timestamp,
		); err != nil {
			if w.metrics != nil {
				w.metrics.BlotterErrors.WithLabelValues("insert").Inc()
			}
			w.log.Error().Err(err).Str("trade_id", rec.TradeID).Msg("blotter insert failed")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		if w.metrics != nil {
			w.metrics.BlotterErrors.WithLabelValues("tx_commit").Inc()
		}
		w.log.Error().Err(err).Msg("blotter commit failed")
		return
	}

	if w.metrics != nil {
		w.metrics.BlotterRowsWritten.Add(float64(len(batch)))
		w.metrics.BlotterFlushDur.Observe(time.Since(start).Seconds())
	}
}

// nullable maps an empty string to SQL NULL so the partial unique index on
// idempotency_key is not tripped by key-less trades.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// EnsureSchema creates the blotter table and its indices.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS blotter_trades (
		trade_id        TEXT PRIMARY KEY,
		event_id        TEXT NOT NULL,
		correlation_id  TEXT,
		idempotency_key TEXT,
		asset_class     TEXT NOT NULL,
		instrument_id   TEXT NOT NULL,
		counterparty    TEXT NOT NULL,
		notional        DOUBLE PRECISION NOT NULL,
		currency        TEXT NOT NULL,
		side            TEXT NOT NULL,
		trade_date      TIMESTAMPTZ,
		settlement_date TIMESTAMPTZ,
		status          TEXT NOT NULL,
		created_by      TEXT,
		additional      JSONB NOT NULL DEFAULT '{}',
		booked_at       TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_blotter_idem
		ON blotter_trades (idempotency_key) WHERE idempotency_key IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_blotter_counterparty
		ON blotter_trades (counterparty);
	`
	_, err := db.ExecContext(ctx, ddl)
	return err
}
