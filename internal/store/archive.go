package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

// Record describes one archived session log.
type Record struct {
	ID         uuid.UUID
	Title      string
	CreatedAt  time.Time
	EntryCount int
}

// Archived is a Record together with its encoded JSON body.
type Archived struct {
	Record
	Body []byte
}

// SessionLog decodes the archived body. With a nil meta the metadata stays
// a json.RawMessage.
func (a *Archived) SessionLog(meta sessionlog.MetadataDecoder) (*sessionlog.SessionLog, error) {
	return (&sessionlog.JSONDecoder{MetadataDecoder: meta}).Decode(a.Body)
}

// Save encodes l under policy and archives it under title.
// Titles are unique; reusing one returns ErrTitleExists.
func (s *Store) Save(ctx context.Context, title string, l *sessionlog.SessionLog, policy sessionlog.Policy) (Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Record{}, ErrEmptyTitle
	}

	body, err := (&sessionlog.JSONEncoder{Policy: policy}).Encode(l)
	if err != nil {
		return Record{}, fmt.Errorf("encode session log: %w", err)
	}

	rec := Record{
		ID:         uuid.New(),
		Title:      title,
		CreatedAt:  s.now().UTC(),
		EntryCount: l.Len(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM session_logs WHERE title = ?`, title).Scan(&n); err != nil {
		return Record{}, fmt.Errorf("check title: %w", err)
	}
	if n > 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrTitleExists, title)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session_logs (id, title, created_at, entry_count, body, schema_version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Title, rec.CreatedAt.Format(TimeFormat),
		rec.EntryCount, string(body), CurrentSchemaVersion,
	); err != nil {
		return Record{}, fmt.Errorf("insert session log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, entry_count
		FROM session_logs
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query session logs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session logs: %w", err)
	}
	return records, nil
}

// Get returns the archived session log with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Archived, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.getOne(ctx, `WHERE id = ?`, uid.String())
}

// GetByTitle returns the archived session log saved under title.
func (s *Store) GetByTitle(ctx context.Context, title string) (*Archived, error) {
	return s.getOne(ctx, `WHERE title = ?`, strings.TrimSpace(title))
}

func (s *Store) getOne(ctx context.Context, where string, arg any) (*Archived, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, entry_count, body
		FROM session_logs `+where, arg)

	var (
		a       Archived
		id      string
		created string
		body    string
	)
	err := row.Scan(&id, &a.Title, &created, &a.EntryCount, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session log: %w", err)
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse id %q: %w", id, err)
	}
	if a.CreatedAt, err = time.Parse(TimeFormat, created); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	a.Body = []byte(body)
	return &a, nil
}

// Delete removes the archived session log with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_logs WHERE id = ?`, uid.String())
	if err != nil {
		return fmt.Errorf("delete session log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return uid, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec     Record
		id      string
		created string
	)
	if err := rows.Scan(&id, &rec.Title, &created, &rec.EntryCount); err != nil {
		return Record{}, fmt.Errorf("scan session log: %w", err)
	}
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	if rec.CreatedAt, err = time.Parse(TimeFormat, created); err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return rec, nil
}
