package card

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bborn/lanes/internal/board"
	"github.com/bborn/lanes/internal/view"
)

// ItemContentProps are the inputs of ItemContent.
type ItemContentProps struct {
	Item      board.Item
	IsEditing bool
	Width     int
	// OnChange receives the full text after every edit.
	OnChange func(string)
	// OnKeyDown sees every key before the editor does. Returning true
	// stops the key there.
	OnKeyDown func(tea.KeyMsg) bool
}

// ItemContent shows an item's title, or an editor for it.
//
// The editor is controlled: every render sets its value to the item's title,
// so what it shows is whatever the parent last supplied.
type ItemContent struct {
	input      textarea.Model
	wasEditing bool
}

// NewItemContent creates the content view of one card.
func NewItemContent() *ItemContent {
	ta := textarea.New()
	ta.Prompt = ""
	ta.Placeholder = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle()
	ta.BlurredStyle.Base = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetHeight(1)
	return &ItemContent{input: ta}
}

// Render builds the content node: the editor inside a grow-wrap box while
// editing, the title otherwise.
func (c *ItemContent) Render(p ItemContentProps) *view.Node {
	if !p.IsEditing {
		return view.Text(view.Classes(ClassTitle), p.Item.Title)
	}

	c.sync(p)
	input := &view.Node{
		Kind:    view.KindInput,
		Class:   view.Classes(ClassInput),
		Text:    c.input.Value(),
		Raw:     c.input.View(),
		Label:   "Item title",
		Focused: c.input.Focused(),
	}
	wrap := view.Box(view.Classes(ClassGrowWrap), input)
	wrap.Attrs = map[string]string{"data-replicated-value": p.Item.Title}
	return wrap
}

// Effect moves focus into the editor when editing starts and out of it when
// editing stops. Calling it again with the same value does nothing.
func (c *ItemContent) Effect(isEditing bool) tea.Cmd {
	if isEditing == c.wasEditing {
		return nil
	}
	c.wasEditing = isEditing
	if !isEditing {
		c.input.Blur()
		return nil
	}
	return c.input.Focus()
}

// SetInputFocus focuses or blurs the editor without changing edit mode.
func (c *ItemContent) SetInputFocus(focused bool) tea.Cmd {
	if !focused {
		c.input.Blur()
		return nil
	}
	if c.input.Focused() {
		return nil
	}
	return c.input.Focus()
}

// InputFocused reports whether the editor has focus.
func (c *ItemContent) InputFocused() bool {
	return c.input.Focused()
}

// Update routes a message to the editor. Keys go through OnKeyDown first;
// OnChange fires when the text changed.
func (c *ItemContent) Update(p ItemContentProps, msg tea.Msg) (bool, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)
	if isKey && p.OnKeyDown != nil && p.OnKeyDown(k) {
		return true, nil
	}
	if !p.IsEditing {
		return false, nil
	}

	c.sync(p)
	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if after := c.input.Value(); after != before {
		c.input.SetHeight(growHeight(after, c.input.Width()))
		if p.OnChange != nil {
			p.OnChange(after)
		}
	}
	return isKey, cmd
}

// sync makes the editor show the item's title at the given width.
func (c *ItemContent) sync(p ItemContentProps) {
	if p.Width > 0 && c.input.Width() != p.Width {
		c.input.SetWidth(p.Width)
	}
	if c.input.Value() != p.Item.Title {
		c.input.SetValue(p.Item.Title)
	}
	c.input.SetHeight(growHeight(p.Item.Title, c.input.Width()))
}

// growHeight is the number of rows text needs when wrapped at width.
func growHeight(text string, width int) int {
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		w := lipgloss.Width(line)
		if width <= 0 || w <= width {
			lines++
			continue
		}
		lines += (w + width - 1) / width
	}
	return max(lines, 1)
}
