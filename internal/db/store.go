package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDSN keeps the database in process memory. Nothing outlives the
// process.
const MemoryDSN = ":memory:"

const schema = `
	CREATE TABLE IF NOT EXISTS pending_actions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		dueDate TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL CHECK (priority IN ('high', 'medium', 'low')),
		completed INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL,
		createdAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		capturedAt REAL NOT NULL
	);
`

// Store provides access to the dashboard database.
type Store struct {
	db *sql.DB
}

// OpenMemory opens a fresh in-memory database.
func OpenMemory() (*Store, error) {
	return Open(MemoryDSN)
}

// Open opens the database at dsn and creates the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedActions inserts actions that are not already present, keeping the
// given order. Existing ids are skipped; any other constraint violation fails
// the whole seed.
func (s *Store) SeedActions(actions []Action) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := unixFromTime(time.Now())
	for i, a := range actions {
		if _, err := tx.Exec(`
			INSERT INTO pending_actions
				(id, title, description, dueDate, priority, completed, position, createdAt)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, a.ID, a.Title, a.Description, a.DueDate, a.Priority, a.Completed, i, now); err != nil {
			return fmt.Errorf("seed action %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Actions returns every action in seed order.
func (s *Store) Actions() ([]Action, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, dueDate, priority, completed, position, createdAt
		FROM pending_actions
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var createdAt float64
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.DueDate,
			&a.Priority, &a.Completed, &a.Position, &createdAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.CreatedAt = timeFromUnix(createdAt)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Action returns the action with id, or nil if there is none.
func (s *Store) Action(id string) (*Action, error) {
	row := s.db.QueryRow(`
		SELECT id, title, description, dueDate, priority, completed, position, createdAt
		FROM pending_actions
		WHERE id = ?
	`, id)

	var a Action
	var createdAt float64
	if err := row.Scan(&a.ID, &a.Title, &a.Description, &a.DueDate,
		&a.Priority, &a.Completed, &a.Position, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan action: %w", err)
	}
	a.CreatedAt = timeFromUnix(createdAt)
	return &a, nil
}

// SetActionCompleted updates the completed flag. It reports false if no
// action has the given id.
func (s *Store) SetActionCompleted(id string, completed bool) (bool, error) {
	res, err := s.db.Exec(`UPDATE pending_actions SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return false, fmt.Errorf("update action: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update action: %w", err)
	}
	return n > 0, nil
}

// AddIdea stores a captured idea.
func (s *Store) AddIdea(idea Idea) error {
	if _, err := s.db.Exec(`INSERT INTO ideas (id, text, capturedAt) VALUES (?, ?, ?)`,
		idea.ID, idea.Text, unixFromTime(idea.CapturedAt)); err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

// Ideas returns captured ideas, newest first.
func (s *Store) Ideas() ([]Idea, error) {
	rows, err := s.db.Query(`
		SELECT id, text, capturedAt
		FROM ideas
		ORDER BY capturedAt DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []Idea
	for rows.Next() {
		var i Idea
		var capturedAt float64
		if err := rows.Scan(&i.ID, &i.Text, &capturedAt); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		i.CapturedAt = timeFromUnix(capturedAt)
		ideas = append(ideas, i)
	}
	return ideas, rows.Err()
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
