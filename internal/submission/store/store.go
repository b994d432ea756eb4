package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/adityamitter15/invoice-ocr-prototype/internal/submission"
)

// Store persists submissions in Postgres.
//
// Expected schema:
//
//	submissions(id uuid pk, image_url text, extracted_data jsonb, status text, created_at timestamptz)
//	invoice_items(id bigserial pk, submission_id uuid fk, description text, quantity int, amount numeric, confidence double precision)
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSubmission reads a submission row from the scanner.
// Expected column order: id, image_url, extracted_data, status, created_at
func scanSubmission(s scanner) (*submission.Submission, error) {
	var sub submission.Submission

	var statusStr string

	var extracted []byte

	if err := s.Scan(&sub.ID, &sub.ImageURL, &extracted, &statusStr, &sub.CreatedAt); err != nil {
		return nil, err
	}

	sub.Status = submission.Status(statusStr)

	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &sub.Extracted); err != nil {
			return nil, fmt.Errorf("decoding extracted_data: %w", err)
		}
	}

	return &sub, nil
}

const selectSubmissionColumns = `id, image_url, extracted_data, status, created_at`

func (s *Store) CreateSubmission(ctx context.Context, sub *submission.Submission) error {
	extracted, err := json.Marshal(sub.Extracted)
	if err != nil {
		return fmt.Errorf("encoding extracted_data: %w", err)
	}

	query := `
		INSERT INTO submissions (id, image_url, extracted_data, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		sub.ImageURL,
		extracted,
		sub.Status,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating submission: %w", err)
	}

	return nil
}

func (s *Store) GetSubmission(ctx context.Context, id string) (*submission.Submission, error) {
	query := `SELECT ` + selectSubmissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, submission.ErrNotFound
		}

		return nil, fmt.Errorf("getting submission: %w", err)
	}

	return sub, nil
}

func (s *Store) ListSubmissions(ctx context.Context, filter submission.ListFilter) ([]*submission.Submission, error) {
	query := `SELECT ` + selectSubmissionColumns + ` FROM submissions`

	var args []any

	if filter.Status != nil {
		query += ` WHERE status = $1`

		args = append(args, *filter.Status)
	}

	// Server-defined queue order: newest first.
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}
	defer rows.Close()

	var subs []*submission.Submission

	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning submission: %w", err)
		}

		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// ApproveSubmission inserts the corrected line items and flips the
// submission to approved inside one transaction. The row lock makes the
// already-approved check race-free against a concurrent approval.
func (s *Store) ApproveSubmission(ctx context.Context, id string, items []submission.LineItem) (*submission.Submission, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning approval: %w", err)
	}
	defer tx.Rollback()

	var status string

	err = tx.QueryRowContext(ctx, `SELECT status FROM submissions WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, submission.ErrNotFound
		}

		return nil, fmt.Errorf("locking submission: %w", err)
	}

	if submission.Status(status) == submission.StatusApproved {
		return nil, submission.ErrAlreadyApproved
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items (submission_id, description, quantity, amount, confidence)
			VALUES ($1, $2, $3, $4, $5)
		`, id, item.Description, item.Quantity, item.Amount, item.Confidence)
		if err != nil {
			return nil, fmt.Errorf("inserting line item: %w", err)
		}
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE submissions SET status = $1 WHERE id = $2
		RETURNING `+selectSubmissionColumns, submission.StatusApproved, id)

	sub, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("updating submission: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing approval: %w", err)
	}

	return sub, nil
}
