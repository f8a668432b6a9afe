package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goevery/retroboard/internal/persistence"
	"github.com/goevery/retroboard/internal/retro"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		data TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);

	CREATE TABLE IF NOT EXISTS retrospectives (
		id         TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL,
		data       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notes (
		id               TEXT PRIMARY KEY,
		retrospective_id TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		data             TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notes_retrospective ON notes(retrospective_id, created_at);
`

// PersistenceEngine keeps each record as a JSON document in a single SQLite
// file.
type PersistenceEngine struct {
	db *sql.DB
}

func Open(path string) (*PersistenceEngine, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	// Pragmas are per connection; one connection keeps them applied.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	return &PersistenceEngine{db: db}, nil
}

func (e *PersistenceEngine) Setup(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}

	return nil
}

func (e *PersistenceEngine) Close(_ context.Context) error {
	return e.db.Close()
}

func (e *PersistenceEngine) FindUser(ctx context.Context, id string) (retro.User, error) {
	var user retro.User
	err := e.get(ctx, `SELECT data FROM users WHERE id = ?`, id, &user)

	return user, err
}

func (e *PersistenceEngine) FindUserByName(ctx context.Context, name string) (retro.User, error) {
	var user retro.User
	err := e.get(ctx, `SELECT data FROM users WHERE name = ? ORDER BY rowid LIMIT 1`, name, &user)

	return user, err
}

func (e *PersistenceEngine) SaveUser(ctx context.Context, user retro.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("sqlite: encode user: %w", err)
	}

	_, err = e.db.ExecContext(ctx,
		`INSERT INTO users (id, name, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data`,
		user.Id, user.Name, string(data))
	if err != nil {
		return fmt.Errorf("sqlite: save user: %w", err)
	}

	return nil
}

func (e *PersistenceEngine) ListRetrospectives(ctx context.Context) ([]retro.Retrospective, error) {
	rows, err := e.db.QueryContext(ctx, `SELECT data FROM retrospectives ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list retrospectives: %w", err)
	}

	return scanAll[retro.Retrospective](rows)
}

func (e *PersistenceEngine) GetRetrospective(ctx context.Context, id string) (retro.Retrospective, error) {
	var retrospective retro.Retrospective
	err := e.get(ctx, `SELECT data FROM retrospectives WHERE id = ?`, id, &retrospective)

	return retrospective, err
}

func (e *PersistenceEngine) SaveRetrospective(ctx context.Context, retrospective retro.Retrospective) error {
	data, err := json.Marshal(retrospective)
	if err != nil {
		return fmt.Errorf("sqlite: encode retrospective: %w", err)
	}

	_, err = e.db.ExecContext(ctx,
		`INSERT INTO retrospectives (id, updated_at, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data`,
		retrospective.Id, string(retrospective.UpdatedAt), string(data))
	if err != nil {
		return fmt.Errorf("sqlite: save retrospective: %w", err)
	}

	return nil
}

func (e *PersistenceEngine) ListNotes(ctx context.Context, retrospectiveId string) ([]retro.Note, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT data FROM notes WHERE retrospective_id = ? ORDER BY created_at, rowid`, retrospectiveId)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list notes: %w", err)
	}

	return scanAll[retro.Note](rows)
}

func (e *PersistenceEngine) GetNote(ctx context.Context, id string) (retro.Note, error) {
	var note retro.Note
	err := e.get(ctx, `SELECT data FROM notes WHERE id = ?`, id, &note)

	return note, err
}

func (e *PersistenceEngine) SaveNote(ctx context.Context, note retro.Note) error {
	data, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("sqlite: encode note: %w", err)
	}

	_, err = e.db.ExecContext(ctx,
		`INSERT INTO notes (id, retrospective_id, created_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET retrospective_id = excluded.retrospective_id, data = excluded.data`,
		note.Id, note.RetrospectiveId, string(note.CreatedAt), string(data))
	if err != nil {
		return fmt.Errorf("sqlite: save note: %w", err)
	}

	return nil
}

func (e *PersistenceEngine) DeleteNote(ctx context.Context, id string) error {
	result, err := e.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete note: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

func (e *PersistenceEngine) get(ctx context.Context, query string, arg string, v any) error {
	var data string

	err := e.db.QueryRowContext(ctx, query, arg).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("sqlite: query: %w", err)
	}

	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("sqlite: decode: %w", err)
	}

	return nil
}

func scanAll[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}

		var record T
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, fmt.Errorf("sqlite: decode: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}

	return records, nil
}
