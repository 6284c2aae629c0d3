package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finnet/internal/model"
)

// RecordReview stores a reviewer's decision on a result that required manual
// review. A later decision for the same result replaces the earlier one.
// The classification result itself is never modified.
func (s *SQLiteStorage) RecordReview(ctx context.Context, decision *model.ReviewDecision) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDecision(decision); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT review_status FROM classification_results
		WHERE batch_id = ? AND transaction_id = ?`,
		decision.BatchID, decision.TransactionID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transaction %s in batch %s: %w", decision.TransactionID, decision.BatchID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to look up result: %w", err)
	}
	if model.ReviewStatus(status) != model.StatusManualReviewRequired {
		return fmt.Errorf("transaction %s: %w", decision.TransactionID, ErrReviewNotRequired)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (batch_id, transaction_id, reviewer, approved, category, regulatory_code, note, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(batch_id, transaction_id) DO UPDATE SET
			reviewer = excluded.reviewer,
			approved = excluded.approved,
			category = excluded.category,
			regulatory_code = excluded.regulatory_code,
			note = excluded.note,
			reviewed_at = excluded.reviewed_at`,
		decision.BatchID, decision.TransactionID, strings.TrimSpace(decision.Reviewer), decision.Approved,
		decision.Category, decision.RegulatoryCode, decision.Note, decision.ReviewedAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	s.logger.Info("Recorded review",
		"batch_id", decision.BatchID,
		"transaction_id", decision.TransactionID,
		"reviewer", decision.Reviewer,
		"approved", decision.Approved)
	return nil
}
