package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/model"
	"github.com/sakif/intervw/internal/repository"
)

var _ repository.SubmissionRepository = (*DB)(nil)

const submissionColumns = `id, name, company, country, questions, user_id, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts a new submission. ID, CreatedAt and UpdatedAt are assigned
// here and written back into the caller's struct.
//
// Questions are stored as a JSON array in a single TEXT column; the order of
// the slice is preserved exactly.
func (db *DB) Create(ctx context.Context, s *model.Submission) error {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return fmt.Errorf("sqlite: encoding questions: %w", err)
	}

	s.ID = xid.New().String()
	now := db.timestamp()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO submissions (`+submissionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.Name,
		s.Company,
		s.Country,
		string(questions),
		s.UserID,
		toUnix(s.CreatedAt),
		toUnix(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating submission: %w", err)
	}

	return nil
}

// List returns one window of all submissions, newest first. The id column
// breaks ties between rows created in the same nanosecond.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Submission, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing submissions: %w", err)
	}
	defer rows.Close()

	return collect(rows, limit)
}

// Count returns the total number of submissions.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting submissions: %w", err)
	}
	return n, nil
}

// ListByOwner returns every submission owned by ownerID, newest first.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.Submission, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+submissionColumns+`
		 FROM submissions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing submissions for %s: %w", ownerID, err)
	}
	defer rows.Close()

	return collect(rows, 0)
}

// UpdateOwned applies patch to the submission matching id AND ownerID in a
// single UPDATE ... RETURNING statement.
//
// Empty scalar fields become NULL and COALESCE keeps the stored value; a
// NULL questions argument does the same. If the WHERE clause matches no row,
// whether because the id is unknown or because another user owns it, the
// result is apperror.NotFound and nothing is written.
func (db *DB) UpdateOwned(ctx context.Context, id, ownerID string, patch model.SubmissionPatch) (*model.Submission, error) {
	var questions any
	if len(patch.Questions) > 0 {
		encoded, err := json.Marshal(patch.Questions)
		if err != nil {
			return nil, fmt.Errorf("sqlite: encoding questions: %w", err)
		}
		questions = string(encoded)
	}

	row := db.conn.QueryRowContext(ctx,
		`UPDATE submissions
		 SET name       = COALESCE(NULLIF(?, ''), name),
		     company    = COALESCE(NULLIF(?, ''), company),
		     country    = COALESCE(NULLIF(?, ''), country),
		     questions  = COALESCE(?, questions),
		     updated_at = ?
		 WHERE id = ? AND user_id = ?
		 RETURNING `+submissionColumns,
		patch.Name,
		patch.Company,
		patch.Country,
		questions,
		toUnix(db.timestamp()),
		id,
		ownerID,
	)

	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("submission", id)
		}
		return nil, fmt.Errorf("sqlite: updating submission %s: %w", id, err)
	}
	return s, nil
}

// DeleteOwned removes the submission matching id AND ownerID and returns the
// row as it was just before deletion. Same not-found semantics as
// UpdateOwned.
func (db *DB) DeleteOwned(ctx context.Context, id, ownerID string) (*model.Submission, error) {
	row := db.conn.QueryRowContext(ctx,
		`DELETE FROM submissions
		 WHERE id = ? AND user_id = ?
		 RETURNING `+submissionColumns,
		id,
		ownerID,
	)

	s, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("submission", id)
		}
		return nil, fmt.Errorf("sqlite: deleting submission %s: %w", id, err)
	}
	return s, nil
}

func collect(rows *sql.Rows, capacity int) ([]model.Submission, error) {
	submissions := make([]model.Submission, 0, capacity)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning submission row: %w", err)
		}
		submissions = append(submissions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating submissions: %w", err)
	}
	return submissions, nil
}

func scanSubmission(r rowScanner) (*model.Submission, error) {
	var (
		s                model.Submission
		questions        string
		created, updated int64
	)
	if err := r.Scan(
		&s.ID, &s.Name, &s.Company, &s.Country,
		&questions, &s.UserID, &created, &updated,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questions), &s.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions of %s: %w", s.ID, err)
	}
	s.CreatedAt = fromUnix(created)
	s.UpdatedAt = fromUnix(updated)
	return &s, nil
}
