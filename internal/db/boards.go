package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bborn/lanes/internal/board"
)

// DefaultLanes are created on first run.
var DefaultLanes = []string{"To Do", "Doing", "Done"}

const timeLayout = time.RFC3339Nano

// LoadBoard reads the whole board.
func (db *DB) LoadBoard() (board.Board, error) {
	var b board.Board

	rows, err := db.Query(`SELECT id, title FROM lanes ORDER BY position`)
	if err != nil {
		return b, fmt.Errorf("query lanes: %w", err)
	}
	laneIdx := make(map[string]int)
	for rows.Next() {
		var lane board.Lane
		if err := rows.Scan(&lane.ID, &lane.Title); err != nil {
			rows.Close()
			return b, fmt.Errorf("scan lane: %w", err)
		}
		laneIdx[lane.ID] = len(b.Lanes)
		b.Lanes = append(b.Lanes, lane)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return b, fmt.Errorf("iterate lanes: %w", err)
	}

	rows, err = db.Query(`
		SELECT id, lane_id, title, body, tags, created_at, updated_at
		FROM items ORDER BY lane_id, position
	`)
	if err != nil {
		return b, fmt.Errorf("query items: %w", err)
	}
	for rows.Next() {
		var (
			item             board.Item
			laneID, tags     string
			created, updated string
		)
		if err := rows.Scan(&item.ID, &laneID, &item.Title, &item.Body, &tags, &created, &updated); err != nil {
			rows.Close()
			return b, fmt.Errorf("scan item: %w", err)
		}
		i, ok := laneIdx[laneID]
		if !ok {
			continue
		}
		item.Tags = splitTags(tags)
		item.CreatedAt = parseTime(created)
		item.UpdatedAt = parseTime(updated)
		b.Lanes[i].Items = append(b.Lanes[i].Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return b, fmt.Errorf("iterate items: %w", err)
	}

	rows, err = db.Query(`
		SELECT id, lane_title, title, body, tags, created_at, updated_at, archived_at
		FROM archive ORDER BY position
	`)
	if err != nil {
		return b, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			a                          board.ArchivedItem
			tags                       string
			created, updated, archived string
		)
		if err := rows.Scan(&a.ID, &a.LaneTitle, &a.Title, &a.Body, &tags, &created, &updated, &archived); err != nil {
			return b, fmt.Errorf("scan archived item: %w", err)
		}
		a.Tags = splitTags(tags)
		a.CreatedAt = parseTime(created)
		a.UpdatedAt = parseTime(updated)
		a.ArchivedAt = parseTime(archived)
		b.Archive = append(b.Archive, a)
	}
	if err := rows.Err(); err != nil {
		return b, fmt.Errorf("iterate archive: %w", err)
	}
	return b, nil
}

// SaveBoard replaces the stored board with b in one transaction.
func (db *DB) SaveBoard(b board.Board) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM items`, `DELETE FROM archive`, `DELETE FROM lanes`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear board: %w", err)
		}
	}

	for li, lane := range b.Lanes {
		if _, err := tx.Exec(`INSERT INTO lanes (id, title, position) VALUES (?, ?, ?)`,
			lane.ID, lane.Title, li); err != nil {
			return fmt.Errorf("insert lane %q: %w", lane.Title, err)
		}
		for ii, item := range lane.Items {
			if err := insertItem(tx, lane.ID, ii, item); err != nil {
				return err
			}
		}
	}

	for ai, a := range b.Archive {
		_, err := tx.Exec(`
			INSERT INTO archive (id, position, lane_title, title, body, tags, created_at, updated_at, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, ai, a.LaneTitle, a.Title, a.Body, joinTags(a.Tags),
			formatTime(a.CreatedAt), formatTime(a.UpdatedAt), formatTime(a.ArchivedAt))
		if err != nil {
			return fmt.Errorf("insert archived item %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertItem(tx *sql.Tx, laneID string, position int, item board.Item) error {
	_, err := tx.Exec(`
		INSERT INTO items (id, lane_id, position, title, body, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, laneID, position, item.Title, item.Body, joinTags(item.Tags),
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert item %s: %w", item.ID, err)
	}
	return nil
}

// SeedDefaultLanes creates the default lanes when the board has none. It
// reports whether it did.
func (db *DB) SeedDefaultLanes() (bool, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM lanes`).Scan(&n); err != nil {
		return false, fmt.Errorf("count lanes: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := db.SaveBoard(board.New(DefaultLanes...)); err != nil {
		return false, fmt.Errorf("seed lanes: %w", err)
	}
	return true, nil
}

// splitTags decodes the tags column. Rows written before tags were stored as
// JSON hold a comma-separated list.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err == nil {
		if len(tags) == 0 {
			return nil
		}
		return tags
	}
	return strings.Split(s, ",")
}

// joinTags encodes tags as a JSON array, or "" when there are none.
func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(data)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns stored times in local time. Unparseable values become
// the zero time.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.Local()
}
