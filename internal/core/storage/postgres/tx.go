package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	v1 "github.com/logistics-lab/palletbook/internal/api/v1"
	"github.com/logistics-lab/palletbook/internal/core/storage"
	"github.com/logistics-lab/palletbook/internal/core/summary"
	"github.com/logistics-lab/palletbook/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("palletbook/storage/postgres")

const (
	defaultMaxRetries   = 5
	defaultRetryBackoff = 20 * time.Millisecond
)

// TxOptions configures transaction isolation and conflict retries.
type TxOptions struct {
	// Isolation must be sql.LevelSerializable or sql.LevelRepeatableRead; a
	// read-modify-write of a summary is not safe under read committed.
	Isolation sql.IsolationLevel

	// MaxRetries bounds re-runs after a serialization failure or deadlock.
	MaxRetries int

	// RetryBackoff is multiplied by the attempt number before each re-run.
	RetryBackoff time.Duration

	// OnRetry, if set, is called before each re-run.
	OnRetry func(attempt int, err error)
}

// DefaultTxOptions returns serializable isolation with five retries.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		Isolation:    sql.LevelSerializable,
		MaxRetries:   defaultMaxRetries,
		RetryBackoff: defaultRetryBackoff,
	}
}

func (o TxOptions) normalized() TxOptions {
	if o.Isolation != sql.LevelSerializable && o.Isolation != sql.LevelRepeatableRead {
		o.Isolation = sql.LevelSerializable
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = 0
	}
	return o
}

// RunInTransaction runs fn in one database transaction, re-running it from the
// start when Postgres reports a serialization failure or deadlock. Once retries
// are exhausted the error wraps storage.ErrConflict.
func (a *Adapter) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	ctx, span := tracer.Start(ctx, "store.transaction",
		trace.WithAttributes(
			attribute.String("tx.isolation", a.txOpts.Isolation.String()),
		))
	defer span.End()

	var lastErr error
	for attempt := 0; attempt <= a.txOpts.MaxRetries; attempt++ {
		if attempt > 0 {
			if a.txOpts.OnRetry != nil {
				a.txOpts.OnRetry(attempt, lastErr)
			}
			logger.Debug(ctx, "[Postgres] Retrying transaction after conflict",
				"attempt", attempt,
				"error", lastErr)
			if err := sleepCtx(ctx, time.Duration(attempt)*a.txOpts.RetryBackoff); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "cancelled during retry backoff")
				return err
			}
		}

		lastErr = a.runOnce(ctx, fn)
		if lastErr == nil {
			span.SetAttributes(attribute.Int("tx.attempts", attempt+1))
			return nil
		}
		if !isRetryable(lastErr) {
			span.RecordError(lastErr)
			span.SetStatus(codes.Error, lastErr.Error())
			return lastErr
		}
	}

	span.SetAttributes(attribute.Int("tx.attempts", a.txOpts.MaxRetries+1))
	span.SetStatus(codes.Error, "retries exhausted")
	return fmt.Errorf("%w: gave up after %d attempts: %v", storage.ErrConflict, a.txOpts.MaxRetries+1, lastErr)
}

func (a *Adapter) runOnce(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	tx, err := a.db.BeginTx(ctx, &sql.TxOptions{Isolation: a.txOpts.Isolation})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.Error(context.Background(), "[Postgres] Rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// pgTx implements storage.Tx over one *sql.Tx.
type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) GetSummary(ctx context.Context, companyID string, year, month int) (*summary.MonthlySummary, error) {
	var doc []byte
	err := t.tx.QueryRowContext(ctx, querySelectSummaryForUpdate, companyID, year, month).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select summary for update: %w", err)
	}
	return unmarshalSummary(doc)
}

func (t *pgTx) PutSummary(ctx context.Context, s *summary.MonthlySummary) error {
	if s == nil {
		return fmt.Errorf("put summary: nil document")
	}
	doc, err := marshalSummary(s)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, queryUpsertSummary,
		s.Key(),
		s.CompanyID,
		s.Year,
		s.Month,
		doc,
		s.CreatedAt,
		s.LastUpdated,
	); err != nil {
		return fmt.Errorf("upsert summary %s: %w", s.Key(), err)
	}
	return nil
}

func (t *pgTx) GetRecord(ctx context.Context, companyID, id string) (*v1.WorkRecord, error) {
	var r v1.WorkRecord
	if err := sqlscan.Get(ctx, t.tx, &r, querySelectRecordForUpdate, companyID, id); err != nil {
		if sqlscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("select record for update: %w", err)
	}
	return &r, nil
}

func (t *pgTx) InsertRecord(ctx context.Context, r *v1.WorkRecord) error {
	result, err := t.tx.ExecContext(ctx, queryInsertRecord, insertRecordArgs(r)...)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return expectOneRow(result, storage.ErrDuplicate)
}

func (t *pgTx) UpdateRecord(ctx context.Context, r *v1.WorkRecord) error {
	result, err := t.tx.ExecContext(ctx, queryUpdateRecord, updateRecordArgs(r)...)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return expectOneRow(result, storage.ErrNotFound)
}

func (t *pgTx) DeleteRecord(ctx context.Context, companyID, id string) error {
	result, err := t.tx.ExecContext(ctx, queryDeleteRecord, companyID, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return expectOneRow(result, storage.ErrNotFound)
}

func (t *pgTx) ListMonthRecords(ctx context.Context, companyID string, year, month int) ([]*v1.WorkRecord, error) {
	first, last := monthBounds(year, month)
	var records []*v1.WorkRecord
	if err := sqlscan.Select(ctx, t.tx, &records, queryListMonthRecords, companyID, first, last); err != nil {
		return nil, fmt.Errorf("list month records: %w", err)
	}
	return records, nil
}

func expectOneRow(result sql.Result, none error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}
