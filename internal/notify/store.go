package notify

import (
	"database/sql"
	"fmt"
	"time"
)

// DayLayout formats the day part of a read-state key.
const DayLayout = "2006-01-02"

// Day returns the local calendar day of t as used for read-state keys.
func Day(t time.Time) string {
	return t.Local().Format(DayLayout)
}

// ReadStore persists which notifications a user has read on a given day.
type ReadStore interface {
	ReadIDs(username, day string) (map[string]bool, error)
	MarkRead(username, day, id string) error
	MarkAllRead(username, day string, ids []string) error
	Prune(before string) (int64, error)
}

// SQLiteReadStore is a ReadStore backed by the notification_reads table.
type SQLiteReadStore struct {
	db *sql.DB
}

// NewSQLiteReadStore creates a read store on an opened database.
func NewSQLiteReadStore(db *sql.DB) *SQLiteReadStore {
	return &SQLiteReadStore{db: db}
}

// ReadIDs returns the set of read notification ids for username on day.
func (s *SQLiteReadStore) ReadIDs(username, day string) (ids map[string]bool, err error) {
	rows, err := s.db.Query(
		"SELECT notification_id FROM notification_reads WHERE username = ? AND day = ?",
		username, day,
	)
	if err != nil {
		return nil, fmt.Errorf("listing read notifications: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	ids = make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning read notification: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating read notifications: %w", err)
	}
	return ids, nil
}

// MarkRead adds id to the day's read set.
func (s *SQLiteReadStore) MarkRead(username, day, id string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO notification_reads (username, day, notification_id) VALUES (?, ?, ?)",
		username, day, id,
	)
	if err != nil {
		return fmt.Errorf("marking %s read: %w", id, err)
	}
	return nil
}

// MarkAllRead replaces the day's read set with exactly ids.
func (s *SQLiteReadStore) MarkAllRead(username, day string, ids []string) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning mark-all: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM notification_reads WHERE username = ? AND day = ?", username, day); err != nil {
		return fmt.Errorf("clearing read set: %w", err)
	}
	for _, id := range ids {
		if _, err = tx.Exec(
			"INSERT OR IGNORE INTO notification_reads (username, day, notification_id) VALUES (?, ?, ?)",
			username, day, id,
		); err != nil {
			return fmt.Errorf("marking %s read: %w", id, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing mark-all: %w", err)
	}
	return nil
}

// Prune deletes read-state for days before the given day and returns the
// number of rows removed.
func (s *SQLiteReadStore) Prune(before string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM notification_reads WHERE day < ?", before)
	if err != nil {
		return 0, fmt.Errorf("pruning read state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned rows: %w", err)
	}
	return n, nil
}
