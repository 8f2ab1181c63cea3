package db

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bborn/lanes/internal/board"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	for i := 0; i < 2; i++ {
		db, err := Open(dbPath)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
		}
		db.Close()
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("LANES_DB_PATH", "/tmp/custom.db")
	if got := DefaultPath(); got != "/tmp/custom.db" {
		t.Errorf("DefaultPath() = %q", got)
	}
	t.Setenv("LANES_DB_PATH", "")
	if got := DefaultPath(); filepath.Base(got) != "lanes.db" {
		t.Errorf("DefaultPath() = %q, want .../lanes.db", got)
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetSetting("theme"); err != nil || v != "" {
		t.Errorf("unset setting = %q, %v", v, err)
	}
	if err := db.SetSetting("theme", "nord"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := db.SetSetting("theme", "gruvbox"); err != nil {
		t.Fatalf("SetSetting overwrite: %v", err)
	}
	if v, _ := db.GetSetting("theme"); v != "gruvbox" {
		t.Errorf("setting = %q, want gruvbox", v)
	}
}

func TestSaveAndLoadBoard(t *testing.T) {
	db := openTestDB(t)
	now := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)

	b := board.New("To Do", "Doing")
	b.Lanes[0].Items = []board.Item{
		{ID: "a", Title: "A", Body: "body", Tags: []string{"x,y", "z"}, CreatedAt: now, UpdatedAt: now},
		{ID: "b", Title: "B\nsecond line", CreatedAt: now, UpdatedAt: now},
	}
	b.Lanes[1].Items = []board.Item{{ID: "c", Title: "C", CreatedAt: now, UpdatedAt: now}}
	b.Archive = []board.ArchivedItem{
		{Item: board.Item{ID: "z", Title: "Z", CreatedAt: now, UpdatedAt: now}, LaneTitle: "Doing", ArchivedAt: now},
	}

	if err := db.SaveBoard(b); err != nil {
		t.Fatalf("SaveBoard: %v", err)
	}
	got, err := db.LoadBoard()
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}

	if len(got.Lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(got.Lanes))
	}
	for i, lane := range b.Lanes {
		gl := got.Lanes[i]
		if gl.ID != lane.ID || gl.Title != lane.Title {
			t.Errorf("lane %d = %s/%s, want %s/%s", i, gl.ID, gl.Title, lane.ID, lane.Title)
		}
		if len(gl.Items) != len(lane.Items) {
			t.Fatalf("lane %d items = %d, want %d", i, len(gl.Items), len(lane.Items))
		}
		for j, item := range lane.Items {
			gi := gl.Items[j]
			if gi.ID != item.ID || gi.Title != item.Title || gi.Body != item.Body {
				t.Errorf("item %d/%d = %+v, want %+v", i, j, gi, item)
			}
			if !reflect.DeepEqual(gi.Tags, item.Tags) {
				t.Errorf("item %d/%d tags = %v, want %v", i, j, gi.Tags, item.Tags)
			}
			if !gi.CreatedAt.Equal(now) || !gi.UpdatedAt.Equal(now) {
				t.Errorf("item %d/%d times = %v %v", i, j, gi.CreatedAt, gi.UpdatedAt)
			}
		}
	}

	if len(got.Archive) != 1 {
		t.Fatalf("archive = %d, want 1", len(got.Archive))
	}
	a := got.Archive[0]
	if a.ID != "z" || a.LaneTitle != "Doing" || !a.ArchivedAt.Equal(now) {
		t.Errorf("archived = %+v", a)
	}
}

func TestSaveBoardReplaces(t *testing.T) {
	db := openTestDB(t)
	b := board.New("One", "Two")
	b.Lanes[0].Items = []board.Item{{ID: "a", Title: "A"}}
	if err := db.SaveBoard(b); err != nil {
		t.Fatalf("SaveBoard: %v", err)
	}

	b2, _, err := b.DeleteItem(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	b2.Lanes = b2.Lanes[:1]
	if err := db.SaveBoard(b2); err != nil {
		t.Fatalf("SaveBoard: %v", err)
	}

	got, err := db.LoadBoard()
	if err != nil {
		t.Fatalf("LoadBoard: %v", err)
	}
	if len(got.Lanes) != 1 || len(got.Lanes[0].Items) != 0 {
		t.Errorf("board = %+v", got)
	}
}

func TestSeedDefaultLanes(t *testing.T) {
	db := openTestDB(t)

	seeded, err := db.SeedDefaultLanes()
	if err != nil || !seeded {
		t.Fatalf("first seed = %v, %v", seeded, err)
	}
	seeded, err = db.SeedDefaultLanes()
	if err != nil || seeded {
		t.Fatalf("second seed = %v, %v", seeded, err)
	}

	b, err := db.LoadBoard()
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, l := range b.Lanes {
		titles = append(titles, l.Title)
	}
	if !reflect.DeepEqual(titles, DefaultLanes) {
		t.Errorf("lanes = %v, want %v", titles, DefaultLanes)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{}, nil},
		{[]string{"one"}, []string{"one"}},
		{[]string{"a", "b"}, []string{"a", "b"}},
		{[]string{"x,y", "z"}, []string{"x,y", "z"}},
		{[]string{`say "hi"`, "[br]"}, []string{`say "hi"`, "[br]"}},
	}
	for _, tt := range tests {
		if got := splitTags(joinTags(tt.in)); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("round trip %v = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitTagsCommaList(t *testing.T) {
	if got, want := splitTags("a,b"), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitTags(a,b) = %v, want %v", got, want)
	}
}
