// Package card renders the draggable item card of a lane.
//
// A Factory is built per lane from that lane's items and the parent's
// mutation callbacks. Its Render method is a dnd.RenderFunc: for each position
// the list asks about, it resolves the item from the items it was built with
// and returns a Card. The card never changes items itself; title edits,
// deletes and archives are handed to the callbacks as new values.
package card

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bborn/lanes/internal/board"
	"github.com/bborn/lanes/internal/dnd"
	"github.com/bborn/lanes/internal/view"
)

// Class names of the card's parts.
var (
	ClassItem              = view.C("item")
	ClassContentWrapper    = view.C("item-content-wrapper")
	ClassTitle             = view.C("item-title")
	ClassGrowWrap          = view.C("grow-wrap")
	ClassInput             = view.C("item-input")
	ClassEditButtonWrapper = view.C("item-edit-button-wrapper")
	ClassEditButton        = view.C("item-edit-button")
	ClassEditArchiveButton = view.C("item-edit-archive-button")
	ClassSettings          = view.C("item-settings")
	ClassSettingsActions   = view.C("item-settings-actions")
	ClassButtonDelete      = view.C("item-button-delete")
	ClassButtonArchive     = view.C("item-button-archive")
)

// Modifier classes are not namespaced.
const (
	ClassIsDragging = "is-dragging"
	ClassIsEnabled  = "is-enabled"
	ClassIsSelected = "is-selected"
)

const (
	stateKey        = "card"
	buttonCells     = 3
	minContentWidth = 8
)

// Params configure a Factory. Nil callbacks are no-ops.
type Params struct {
	Items             []board.Item
	LaneIndex         int
	ShowArchiveButton bool

	DeleteItem  func(laneIndex, itemIndex int)
	UpdateItem  func(laneIndex, itemIndex int, item board.Item)
	ArchiveItem func(laneIndex, itemIndex int, item board.Item)

	// Keys defaults to DefaultKeyMap.
	Keys *KeyMap
}

// Factory renders the cards of one lane.
type Factory struct {
	p    Params
	keys KeyMap
}

// NewFactory creates a factory over a lane's items.
func NewFactory(p Params) *Factory {
	keys := DefaultKeyMap()
	if p.Keys != nil {
		keys = *p.Keys
	}
	return &Factory{p: p, keys: keys}
}

// state is what a card keeps between renders.
type state struct {
	editing bool
	// focus is the class of the focused control, "" for none.
	focus   string
	content *ItemContent
	pending []tea.Cmd
}

// Render renders the card at rubric.Source.Index. It satisfies
// dnd.RenderFunc.
func (f *Factory) Render(provided dnd.Provided, snapshot dnd.Snapshot, rubric dnd.Rubric) dnd.Draggable {
	idx := rubric.Source.Index
	st := dnd.Use(provided.Local, stateKey, func() *state {
		return &state{content: NewItemContent()}
	})
	c := &Card{
		f:        f,
		st:       st,
		index:    idx,
		item:     f.p.Items[idx],
		provided: provided,
		snapshot: snapshot,
	}
	// Effects run once the card is rendered with its current state.
	if cmd := st.content.Effect(st.editing); cmd != nil {
		st.pending = append(st.pending, cmd)
	}
	return c
}

// Card is one rendered item.
type Card struct {
	f        *Factory
	st       *state
	index    int
	item     board.Item
	provided dnd.Provided
	snapshot dnd.Snapshot
}

// Item returns the item the card shows.
func (c *Card) Item() board.Item { return c.item }

// Editing reports whether the card is in edit mode.
func (c *Card) Editing() bool { return c.st.editing }

// Capturing reports whether the card takes every key.
func (c *Card) Capturing() bool { return c.st.editing }

// View builds the card's node tree.
func (c *Card) View() *view.Node {
	editing := c.st.editing

	editLabel, editIcon := "Edit item", view.IconPencil
	if editing {
		editLabel, editIcon = "Close", view.IconCross
	}
	buttons := view.Row(view.Classes(ClassEditButtonWrapper),
		view.Button(view.Classes(ClassEditButton, view.If(editing, ClassIsEnabled)),
			editLabel, editIcon, "", c.toggleEdit),
	)
	if c.f.p.ShowArchiveButton {
		buttons.Children = append(buttons.Children,
			view.Button(view.Classes(ClassEditArchiveButton),
				"Archive item", view.IconSheetsInBox, "", c.archive))
	}

	content := c.st.content.Render(c.contentProps(len(buttons.Children)))

	var settings *view.Node
	if editing {
		settings = view.Box(view.Classes(ClassSettings),
			view.Row(view.Classes(ClassSettingsActions),
				view.Button(view.Classes(ClassButtonDelete), "Delete", view.IconTrash, "Delete", c.delete),
				view.Button(view.Classes(ClassButtonArchive), "Archive", view.IconSheetsInBox, "Archive", c.archive),
			),
		)
	}

	root := view.Box(
		view.Classes(ClassItem,
			view.If(c.snapshot.IsDragging, ClassIsDragging),
			view.If(c.snapshot.IsSelected, ClassIsSelected)),
		view.Row(view.Classes(ClassContentWrapper), content, buttons),
		settings,
	)
	root.Attrs = c.provided.DraggableProps()

	for _, n := range root.Focusables() {
		if n.Kind == view.KindButton {
			n.Focused = c.snapshot.IsSelected && c.st.focus == n.Class[0]
		}
	}
	return root
}

func (c *Card) contentProps(buttons int) ItemContentProps {
	width := 0
	if c.provided.Width > 0 {
		width = max(c.provided.Width-buttons*buttonCells-2, minContentWidth)
	}
	return ItemContentProps{
		Item:      c.item,
		IsEditing: c.st.editing,
		Width:     width,
		OnChange:  c.changeTitle,
		OnKeyDown: c.editorKeyDown,
	}
}

// Update handles a message while the card is selected.
func (c *Card) Update(msg tea.Msg) (bool, tea.Cmd) {
	k, isKey := msg.(tea.KeyMsg)
	if !isKey {
		_, cmd := c.st.content.Update(c.contentProps(c.buttonCount()), msg)
		return false, c.flush(cmd)
	}
	handled, cmd := c.handleKey(k)
	return handled, c.flush(cmd)
}

// flush runs the focus effect for the current state and returns it with any
// commands queued by renders.
func (c *Card) flush(cmd tea.Cmd) tea.Cmd {
	cmds := append(c.st.pending, cmd, c.st.content.Effect(c.st.editing))
	c.st.pending = nil
	return tea.Batch(cmds...)
}

func (c *Card) buttonCount() int {
	if c.f.p.ShowArchiveButton {
		return 2
	}
	return 1
}

func (c *Card) handleKey(k tea.KeyMsg) (bool, tea.Cmd) {
	keys := c.f.keys
	switch {
	case key.Matches(k, keys.NextControl):
		return true, c.cycleFocus(1)
	case key.Matches(k, keys.PrevControl):
		return true, c.cycleFocus(-1)
	}

	if c.st.editing {
		switch {
		case key.Matches(k, keys.Delete):
			c.delete()
			return true, nil
		case key.Matches(k, keys.Archive):
			c.archive()
			return true, nil
		}
		if c.st.focus == "" || c.st.focus == ClassInput {
			_, cmd := c.st.content.Update(c.contentProps(c.buttonCount()), k)
			return true, cmd
		}
		switch {
		case key.Matches(k, keys.Activate):
			c.activateFocused()
		case key.Matches(k, keys.CloseEditor):
			c.setEditing(false)
		}
		// Everything else is swallowed while editing.
		return true, nil
	}

	switch {
	case key.Matches(k, keys.Activate):
		if c.st.focus == "" {
			c.toggleEdit()
		} else {
			c.activateFocused()
		}
		return true, nil
	case key.Matches(k, keys.ToggleEdit):
		c.toggleEdit()
		return true, nil
	case key.Matches(k, keys.QuickArchive) && c.f.p.ShowArchiveButton:
		c.archive()
		return true, nil
	case key.Matches(k, keys.Unfocus) && c.st.focus != "":
		c.st.focus = ""
		return true, nil
	}
	return false, nil
}

// cycleFocus moves focus through the card's controls, wrapping around.
func (c *Card) cycleFocus(delta int) tea.Cmd {
	controls := c.View().Focusables()
	if len(controls) == 0 {
		return nil
	}
	classes := make([]string, len(controls))
	for i, n := range controls {
		classes[i] = n.Class[0]
	}
	cur := c.st.focus
	if cur == "" && c.st.editing {
		cur = ClassInput
	}
	next := 0
	if i := slices.Index(classes, cur); i >= 0 {
		next = (i + delta + len(classes)) % len(classes)
	} else if delta < 0 {
		next = len(classes) - 1
	}
	c.st.focus = classes[next]
	if c.st.editing {
		return c.st.content.SetInputFocus(c.st.focus == ClassInput)
	}
	return nil
}

func (c *Card) activateFocused() {
	if n := c.View().Find(c.st.focus); n != nil {
		n.Activate()
	}
}

func (c *Card) setEditing(editing bool) {
	c.st.editing = editing
	switch {
	case editing:
		c.st.focus = ClassInput
	case c.st.focus != ClassEditButton:
		c.st.focus = ""
	}
}

func (c *Card) toggleEdit() {
	c.setEditing(!c.st.editing)
}

// editorKeyDown closes the editor on escape or enter. Edits were already
// handed over key by key, so nothing is committed here.
func (c *Card) editorKeyDown(k tea.KeyMsg) bool {
	if key.Matches(k, c.f.keys.CloseEditor) {
		c.setEditing(false)
		return true
	}
	return false
}

func (c *Card) changeTitle(title string) {
	if c.f.p.UpdateItem != nil {
		c.f.p.UpdateItem(c.f.p.LaneIndex, c.index, c.item.WithTitle(title))
	}
}

func (c *Card) delete() {
	if c.f.p.DeleteItem != nil {
		c.f.p.DeleteItem(c.f.p.LaneIndex, c.index)
	}
}

func (c *Card) archive() {
	if c.f.p.ArchiveItem != nil {
		c.f.p.ArchiveItem(c.f.p.LaneIndex, c.index, c.item)
	}
}
