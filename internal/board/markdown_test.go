package board

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMarkdown(t *testing.T) {
	b := testBoard()
	b.Archive = []ArchivedItem{{Item: Item{ID: "z", Title: "Old"}, LaneTitle: "Done"}}

	want := `---

kanban-plugin: basic

---

## To Do

- [ ] A
- [ ] B #home

## Doing

- [ ] C

## Done


***

## Archive

- [x] Old
`
	if got := b.Markdown(); got != want {
		t.Errorf("Markdown() mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestParseMarkdownRoundTrip(t *testing.T) {
	b := testBoard()
	b.Lanes[1].Items[0].Title = "two\nlines"
	b.Archive = []ArchivedItem{{Item: Item{ID: "z", Title: "Old"}}}

	now := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	parsed, err := ParseMarkdown(strings.NewReader(b.Markdown()), now)
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	if len(parsed.Lanes) != 3 {
		t.Fatalf("lanes = %d, want 3", len(parsed.Lanes))
	}
	for i, lane := range b.Lanes {
		if parsed.Lanes[i].Title != lane.Title {
			t.Errorf("lane %d title = %q, want %q", i, parsed.Lanes[i].Title, lane.Title)
		}
		if got, want := titles(parsed.Lanes[i].Items), titles(lane.Items); !reflect.DeepEqual(got, want) {
			t.Errorf("lane %d items = %v, want %v", i, got, want)
		}
	}
	if got := parsed.Lanes[0].Items[1].Tags; !reflect.DeepEqual(got, []string{"home"}) {
		t.Errorf("tags = %v, want [home]", got)
	}
	if len(parsed.Archive) != 1 || parsed.Archive[0].Title != "Old" {
		t.Errorf("archive = %+v", parsed.Archive)
	}
}

func TestParseMarkdownKeepsItemText(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Ping #ops"},
		{ID: "2", Title: "two  spaces"},
		{ID: "3", Title: ""},
		{ID: "4", Title: "has body", Body: "details\n\n  indented"},
		{ID: "5", Title: " padded ", Tags: []string{"a b", "c#d"}},
		{ID: "6", Title: `back\slash <br> literal`},
		{ID: "7", Title: "", Tags: []string{"only"}},
	}
	b := New("To Do")
	b.Lanes[0].Items = items
	b.Archive = []ArchivedItem{{Item: Item{ID: "z", Title: "Old #1", Body: "why"}}}

	parsed, err := ParseMarkdown(strings.NewReader(b.Markdown()), time.Now())
	if err != nil {
		t.Fatalf("ParseMarkdown: %v", err)
	}
	got := parsed.Lanes[0].Items
	if len(got) != len(items) {
		t.Fatalf("items = %d, want %d\n%s", len(got), len(items), b.Markdown())
	}
	for i, want := range items {
		if got[i].Title != want.Title {
			t.Errorf("item %d title = %q, want %q", i, got[i].Title, want.Title)
		}
		if got[i].Body != want.Body {
			t.Errorf("item %d body = %q, want %q", i, got[i].Body, want.Body)
		}
		if len(got[i].Tags) != len(want.Tags) || (len(want.Tags) > 0 && !reflect.DeepEqual(got[i].Tags, want.Tags)) {
			t.Errorf("item %d tags = %q, want %q", i, got[i].Tags, want.Tags)
		}
	}
	if len(parsed.Archive) != 1 || parsed.Archive[0].Title != "Old #1" || parsed.Archive[0].Body != "why" {
		t.Errorf("archive = %+v", parsed.Archive)
	}
}

func TestSplitTaskText(t *testing.T) {
	tests := []struct {
		in        string
		wantTitle string
		wantTags  []string
	}{
		{"", "", nil},
		{"Buy milk", "Buy milk", nil},
		{"Buy milk #shop #home", "Buy milk", []string{"shop", "home"}},
		{`Ping \#ops`, "Ping #ops", nil},
		{"two<br>lines", "two\nlines", nil},
		{`a\<br>b`, "a<br>b", nil},
		{`#a\ b`, "", []string{"a b"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			title, tags := splitTaskText(tt.in)
			if title != tt.wantTitle || !reflect.DeepEqual(tags, tt.wantTags) {
				t.Errorf("splitTaskText(%q) = %q %q, want %q %q", tt.in, title, tags, tt.wantTitle, tt.wantTags)
			}
		})
	}
}

func TestParseMarkdownItemBeforeLane(t *testing.T) {
	_, err := ParseMarkdown(strings.NewReader("- [ ] orphan\n"), time.Now())
	if err == nil {
		t.Fatal("expected error for item before first lane")
	}
}
