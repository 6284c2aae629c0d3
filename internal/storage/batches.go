package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/finnet/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const resultColumns = `r.batch_id, r.transaction_id, r.account_id, r.transaction_date, r.currency,
	r.amount, r.product_code, r.description, r.category, r.regulatory_code, r.risk_level,
	r.resolution_tier, r.review_status, r.advisory_failure, r.risk_flag,
	v.reviewer, v.approved, v.category, v.regulatory_code, v.note, v.reviewed_at`

// SaveBatch stores a classified batch under a new id and returns its header.
// Results keep their input order.
func (s *SQLiteStorage) SaveBatch(ctx context.Context, source string, createdAt time.Time, results []model.ClassificationResult) (model.Batch, error) {
	if err := validateContext(ctx); err != nil {
		return model.Batch{}, err
	}
	if err := validateString(source, "source"); err != nil {
		return model.Batch{}, err
	}
	if err := validateResults(results); err != nil {
		return model.Batch{}, err
	}

	batch := model.Batch{
		ID:          uuid.NewString(),
		Source:      source,
		CreatedAt:   createdAt.UTC(),
		RecordCount: len(results),
	}
	for _, r := range results {
		if r.NeedsReview() {
			batch.ManualReviewCount++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO batches (id, source, record_count, manual_review_count, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.Source, batch.RecordCount, batch.ManualReviewCount, batch.CreatedAt,
	); err != nil {
		return model.Batch{}, fmt.Errorf("failed to insert batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO classification_results (
			batch_id, transaction_id, position, account_id, transaction_date, currency,
			amount, product_code, description, category, regulatory_code, risk_level,
			resolution_tier, review_status, advisory_failure, risk_flag
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range results {
		if _, err := stmt.ExecContext(ctx,
			batch.ID, r.TransactionID, i, r.AccountID, r.Date.UTC(), r.Currency,
			r.Amount.String(), r.ProductCode, r.OriginalDescription, r.Category, r.RegulatoryCode, string(r.RiskLevel),
			string(r.ResolutionTier), string(r.ReviewStatus), string(r.AdvisoryFailure), r.RiskFlag,
		); err != nil {
			return model.Batch{}, fmt.Errorf("failed to insert result %s: %w", r.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Batch{}, fmt.Errorf("failed to commit batch: %w", err)
	}

	s.logger.Debug("Saved batch", "batch_id", batch.ID, "records", batch.RecordCount)
	return batch, nil
}

// ListBatches returns batch headers, newest first. A non-positive limit returns all.
func (s *SQLiteStorage) ListBatches(ctx context.Context, limit int) ([]model.Batch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, source, record_count, manual_review_count, created_at
		FROM batches ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var batches []model.Batch
	for rows.Next() {
		var b model.Batch
		if err := rows.Scan(&b.ID, &b.Source, &b.RecordCount, &b.ManualReviewCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatch returns a single batch header.
func (s *SQLiteStorage) GetBatch(ctx context.Context, batchID string) (model.Batch, error) {
	if err := validateContext(ctx); err != nil {
		return model.Batch{}, err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return model.Batch{}, err
	}

	var b model.Batch
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source, record_count, manual_review_count, created_at
		FROM batches WHERE id = ?`, batchID,
	).Scan(&b.ID, &b.Source, &b.RecordCount, &b.ManualReviewCount, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Batch{}, fmt.Errorf("batch %s: %w", batchID, ErrNotFound)
	}
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to get batch: %w", err)
	}
	return b, nil
}

// GetBatchResults returns a batch's results in input order with any review attached.
func (s *SQLiteStorage) GetBatchResults(ctx context.Context, batchID string) ([]model.StoredResult, error) {
	if _, err := s.GetBatch(ctx, batchID); err != nil {
		return nil, err
	}

	return s.queryResults(ctx, `
		SELECT `+resultColumns+`
		FROM classification_results r
		LEFT JOIN reviews v ON v.batch_id = r.batch_id AND v.transaction_id = r.transaction_id
		WHERE r.batch_id = ?
		ORDER BY r.position`, batchID)
}

// ListPendingReviews returns results that require manual review and have no
// recorded decision, oldest batch first.
func (s *SQLiteStorage) ListPendingReviews(ctx context.Context) ([]model.StoredResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryResults(ctx, `
		SELECT `+resultColumns+`
		FROM classification_results r
		JOIN batches b ON b.id = r.batch_id
		LEFT JOIN reviews v ON v.batch_id = r.batch_id AND v.transaction_id = r.transaction_id
		WHERE r.review_status = ? AND v.transaction_id IS NULL
		ORDER BY b.created_at, b.id, r.position`, string(model.StatusManualReviewRequired))
}

func (s *SQLiteStorage) queryResults(ctx context.Context, query string, args ...any) ([]model.StoredResult, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.StoredResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResult(rows *sql.Rows) (model.StoredResult, error) {
	var (
		r                                                model.StoredResult
		date, reviewedAt                                 sql.NullTime
		accountID, currency, productCode, description    sql.NullString
		riskLevel, advisoryFailure                       sql.NullString
		reviewer, reviewCategory, reviewCode, reviewNote sql.NullString
		approved                                         sql.NullBool
		amount, tier, status                             string
	)

	if err := rows.Scan(
		&r.BatchID, &r.TransactionID, &accountID, &date, &currency,
		&amount, &productCode, &description, &r.Category, &r.RegulatoryCode, &riskLevel,
		&tier, &status, &advisoryFailure, &r.RiskFlag,
		&reviewer, &approved, &reviewCategory, &reviewCode, &reviewNote, &reviewedAt,
	); err != nil {
		return model.StoredResult{}, fmt.Errorf("failed to scan result: %w", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return model.StoredResult{}, fmt.Errorf("transaction %s: invalid stored amount %q: %w", r.TransactionID, amount, err)
	}

	r.Amount = parsed
	r.AccountID = accountID.String
	r.Currency = currency.String
	r.ProductCode = productCode.String
	r.OriginalDescription = description.String
	r.RiskLevel = model.RiskLevel(riskLevel.String)
	r.ResolutionTier = model.ResolutionTier(tier)
	r.ReviewStatus = model.ReviewStatus(status)
	r.AdvisoryFailure = model.AdvisoryFailure(advisoryFailure.String)
	if date.Valid {
		r.Date = date.Time
	}

	if reviewer.Valid {
		r.Review = &model.ReviewDecision{
			BatchID:        r.BatchID,
			TransactionID:  r.TransactionID,
			Reviewer:       reviewer.String,
			Approved:       approved.Bool,
			Category:       reviewCategory.String,
			RegulatoryCode: reviewCode.String,
			Note:           reviewNote.String,
			ReviewedAt:     reviewedAt.Time,
		}
	}

	return r, nil
}
