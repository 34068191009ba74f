package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Ledger remembers which snapshots were corrected, and which snapshots are corrected
// outputs, so an output fed back in is refused instead of being merged twice.
type Ledger struct {
	db *sql.DB
}

type Entry struct {
	InputToken  string
	OutputToken string
	Locale      string
	Rows        int
	Removed     int
	CreatedAt   time.Time
}

func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?cache=shared&_fk=1")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(
		`CREATE TABLE IF NOT EXISTS processed (
			input_token  TEXT    NOT NULL PRIMARY KEY,
			output_token TEXT    NOT NULL,
			locale       TEXT    NOT NULL,
			row_count    INTEGER NOT NULL,
			removed      INTEGER NOT NULL,
			created_at   INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS processed_output ON processed (output_token);`,
	)
	if err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}

	return &Ledger{db: db}, nil
}

func (l *Ledger) Close() error {
	return errors.WithStack(l.db.Close())
}

func (l *Ledger) MarkProcessed(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := l.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO processed (
			input_token,
			output_token,
			locale,
			row_count,
			removed,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		e.InputToken,
		e.OutputToken,
		e.Locale,
		e.Rows,
		e.Removed,
		e.CreatedAt.Unix(),
	)
	return errors.WithStack(err)
}

// IsCorrectedOutput reports whether token was produced by a previous correction.
func (l *Ledger) IsCorrectedOutput(ctx context.Context, token string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(
		ctx,
		`SELECT
			COUNT(*)
		FROM
			processed
		WHERE
			output_token = ? AND
			input_token != ?
		LIMIT 1`,
		token,
		token,
	).Scan(
		&n,
	)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n > 0, nil
}

func (l *Ledger) Lookup(ctx context.Context, inputToken string) (e Entry, ok bool, err error) {
	var createdAt int64
	err = l.db.QueryRowContext(
		ctx,
		`SELECT
			input_token,
			output_token,
			locale,
			row_count,
			removed,
			created_at
		FROM
			processed
		WHERE
			input_token = ?
		LIMIT 1`,
		inputToken,
	).Scan(
		&e.InputToken,
		&e.OutputToken,
		&e.Locale,
		&e.Rows,
		&e.Removed,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return e, false, nil
	}
	if err != nil {
		return e, false, errors.WithStack(err)
	}

	e.CreatedAt = time.Unix(createdAt, 0)
	return e, true, nil
}
