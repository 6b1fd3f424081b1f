package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Bookmark is a saved location.
type Bookmark struct {
	ID        int64
	Location  string
	Title     string
	CreatedAt time.Time
}

// BookmarkStore manages bookmarks persisted in SQLite.
type BookmarkStore struct {
	db *sql.DB
}

// NewBookmarkStore creates a bookmark store using the given database.
func NewBookmarkStore(db *DB) *BookmarkStore {
	return &BookmarkStore{db: db.Conn()}
}

// Add saves a bookmark. It reports false if the location was already saved.
func (bs *BookmarkStore) Add(location, title string) (bool, error) {
	res, err := bs.db.Exec(
		`INSERT OR IGNORE INTO bookmarks (location, title, created_at) VALUES (?, ?, ?)`,
		location, title, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("adding bookmark: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Remove deletes a bookmark. It reports false if none matched.
func (bs *BookmarkStore) Remove(location string) (bool, error) {
	res, err := bs.db.Exec(`DELETE FROM bookmarks WHERE location = ?`, location)
	if err != nil {
		return false, fmt.Errorf("removing bookmark: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Has reports whether location is bookmarked.
func (bs *BookmarkStore) Has(location string) bool {
	var count int
	err := bs.db.QueryRow(`SELECT COUNT(*) FROM bookmarks WHERE location = ?`, location).Scan(&count)
	return err == nil && count > 0
}

// List returns all bookmarks, newest first.
func (bs *BookmarkStore) List() ([]Bookmark, error) {
	rows, err := bs.db.Query(
		`SELECT id, location, title, created_at FROM bookmarks ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Location, &b.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		b.CreatedAt = parseTime(createdAt)
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}
