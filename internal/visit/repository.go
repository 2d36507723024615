package visit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository keeps the last visitor list fetched from the API so the
// console and CLI can answer before the first poll completes.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a snapshot repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveSnapshot replaces the stored snapshot with visits.
func (r *Repository) SaveSnapshot(visits []*Visit, fetchedAt time.Time) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM visit_snapshots"); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO visit_snapshots (visit_id, payload, fetched_at, day, host) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing snapshot insert: %w", err)
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing statement: %w", cerr)
		}
	}()

	for _, v := range visits {
		payload, merr := json.Marshal(v)
		if merr != nil {
			err = fmt.Errorf("encoding visit %d: %w", v.ID, merr)
			return err
		}
		day := ""
		if !v.Scheduled.IsZero() {
			day = v.Scheduled.Local().Format("2006-01-02")
		}
		if _, err = stmt.Exec(v.ID, string(payload), fetchedAt.UTC(), day, v.Host()); err != nil {
			return fmt.Errorf("inserting visit %d: %w", v.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored visits, ordered by scheduled day then id,
// and when they were fetched. An empty store returns a nil slice and the
// zero time.
func (r *Repository) LoadSnapshot() (visits []*Visit, fetchedAt time.Time, err error) {
	rows, err := r.db.Query("SELECT payload, fetched_at FROM visit_snapshots ORDER BY day, visit_id")
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading snapshot: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var payload string
		var at time.Time
		if err := rows.Scan(&payload, &at); err != nil {
			return nil, time.Time{}, fmt.Errorf("scanning snapshot: %w", err)
		}
		var v Visit
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return nil, time.Time{}, fmt.Errorf("decoding snapshot: %w", err)
		}
		visits = append(visits, &v)
		fetchedAt = at
	}

	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterating snapshot: %w", err)
	}

	return visits, fetchedAt, nil
}
