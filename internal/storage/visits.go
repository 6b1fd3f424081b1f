package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const timeLayout = "2006-01-02 15:04:05"

// Visit is one recorded arrival at a location.
type Visit struct {
	ID        int64
	SessionID uuid.UUID
	Location  string
	Title     string
	VisitedAt time.Time
}

// VisitStore is the persistent journal of every completed navigation,
// across tabs and runs. Each run writes under its own session id.
type VisitStore struct {
	db      *sql.DB
	session uuid.UUID
}

// NewVisitStore creates a store that records under a fresh session id.
func NewVisitStore(db *DB) *VisitStore {
	return &VisitStore{db: db.Conn(), session: uuid.New()}
}

// Session returns the id visits are recorded under.
func (vs *VisitStore) Session() uuid.UUID {
	return vs.session
}

// Add records a visit. An immediate repeat of the session's last location
// only refreshes its timestamp and title.
func (vs *VisitStore) Add(location, title string) error {
	if location == "" {
		return nil
	}
	now := time.Now().UTC().Format(timeLayout)

	var lastID int64
	var lastLoc string
	err := vs.db.QueryRow(
		`SELECT id, location FROM visits WHERE session_id = ? ORDER BY id DESC LIMIT 1`,
		vs.session.String(),
	).Scan(&lastID, &lastLoc)
	switch {
	case err == nil && lastLoc == location:
		_, err = vs.db.Exec(
			`UPDATE visits SET visited_at = ?, title = COALESCE(NULLIF(?, ''), title) WHERE id = ?`,
			now, title, lastID,
		)
	case err == nil || err == sql.ErrNoRows:
		_, err = vs.db.Exec(
			`INSERT INTO visits (session_id, location, title, visited_at) VALUES (?, ?, ?, ?)`,
			vs.session.String(), location, title, now,
		)
	}
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// Recent returns up to limit visits, newest first.
func (vs *VisitStore) Recent(limit int) ([]Visit, error) {
	rows, err := vs.db.Query(
		`SELECT id, session_id, location, title, visited_at FROM visits
		 ORDER BY visited_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer rows.Close()
	return scanVisits(rows)
}

// Search finds visits whose title or location contains query.
func (vs *VisitStore) Search(query string, limit int) ([]Visit, error) {
	like := "%" + query + "%"
	rows, err := vs.db.Query(
		`SELECT id, session_id, location, title, visited_at FROM visits
		 WHERE title LIKE ? OR location LIKE ?
		 ORDER BY visited_at DESC, id DESC LIMIT ?`,
		like, like, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching visits: %w", err)
	}
	defer rows.Close()
	return scanVisits(rows)
}

// Count returns the number of recorded visits.
func (vs *VisitStore) Count() (int, error) {
	var n int
	if err := vs.db.QueryRow(`SELECT COUNT(*) FROM visits`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return n, nil
}

// Clear deletes the whole journal.
func (vs *VisitStore) Clear() error {
	if _, err := vs.db.Exec(`DELETE FROM visits`); err != nil {
		return fmt.Errorf("clearing visits: %w", err)
	}
	return nil
}

func scanVisits(rows *sql.Rows) ([]Visit, error) {
	var visits []Visit
	for rows.Next() {
		var v Visit
		var session, visitedAt string
		if err := rows.Scan(&v.ID, &session, &v.Location, &v.Title, &visitedAt); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		v.SessionID, _ = uuid.Parse(session)
		v.VisitedAt = parseTime(visitedAt)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// parseTime accepts both our layout and the RFC 3339 form the driver
// returns for DATETIME columns.
func parseTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
