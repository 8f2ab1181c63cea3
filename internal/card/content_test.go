package card

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bborn/lanes/internal/board"
)

func TestEffectRunsOnEdgesOnly(t *testing.T) {
	c := NewItemContent()

	if cmd := c.Effect(false); cmd != nil {
		t.Error("Effect(false) on a fresh content returned a command")
	}
	if cmd := c.Effect(true); cmd == nil || !c.InputFocused() {
		t.Error("Effect(true) did not focus the editor")
	}
	if cmd := c.Effect(true); cmd != nil {
		t.Error("repeated Effect(true) returned a command")
	}
	c.Effect(false)
	if c.InputFocused() {
		t.Error("Effect(false) left the editor focused")
	}
}

func TestContentRender(t *testing.T) {
	c := NewItemContent()
	item := board.Item{Title: "Call Bob"}

	n := c.Render(ItemContentProps{Item: item})
	if !n.HasClass(ClassTitle) || n.Text != "Call Bob" {
		t.Errorf("viewing node = %+v", n)
	}

	n = c.Render(ItemContentProps{Item: item, IsEditing: true, Width: 20})
	if !n.HasClass(ClassGrowWrap) {
		t.Fatalf("editing node classes = %v", n.Class)
	}
	input := n.Find(ClassInput)
	if input == nil || input.Text != "Call Bob" || input.Raw == "" {
		t.Errorf("input = %+v", input)
	}
}

func TestContentUpdateKeyDownFirst(t *testing.T) {
	c := NewItemContent()
	c.Effect(true)

	var changes []string
	var seen []string
	props := ItemContentProps{
		Item:      board.Item{Title: "ab"},
		IsEditing: true,
		Width:     20,
		OnChange:  func(s string) { changes = append(changes, s) },
		OnKeyDown: func(k tea.KeyMsg) bool {
			seen = append(seen, k.String())
			return k.String() == "esc"
		},
	}

	if handled, _ := c.Update(props, tea.KeyMsg{Type: tea.KeyEsc}); !handled {
		t.Error("esc not reported handled")
	}
	if len(changes) != 0 {
		t.Errorf("esc changed text: %v", changes)
	}

	c.Update(props, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	if len(changes) != 1 || changes[0] != "abc" {
		t.Errorf("changes = %v, want [abc]", changes)
	}
	if len(seen) != 2 {
		t.Errorf("OnKeyDown saw %v", seen)
	}

	// Cursor movement does not change the text.
	c.Update(props, tea.KeyMsg{Type: tea.KeyLeft})
	if len(changes) != 1 {
		t.Errorf("left arrow fired OnChange: %v", changes)
	}
}

func TestContentUpdateNotEditing(t *testing.T) {
	c := NewItemContent()
	called := false
	props := ItemContentProps{
		Item:     board.Item{Title: "x"},
		OnChange: func(string) { called = true },
	}
	if handled, _ := c.Update(props, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}); handled || called {
		t.Errorf("handled=%v called=%v", handled, called)
	}
}

func TestGrowHeight(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  int
	}{
		{"", 10, 1},
		{"short", 10, 1},
		{"exactly 10", 10, 1},
		{"eleven char", 10, 2},
		{"a\nb\nc", 10, 3},
		{"0123456789012345678901", 10, 3},
		{"anything", 0, 1},
	}
	for _, tt := range tests {
		if got := growHeight(tt.text, tt.width); got != tt.want {
			t.Errorf("growHeight(%q, %d) = %d, want %d", tt.text, tt.width, got, tt.want)
		}
	}
}
