package dnd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bborn/lanes/internal/view"
)

// List is one droppable: an ordered list of draggable ids drawn through a
// RenderFunc.
type List struct {
	id       string
	ids      []string
	locals   map[string]*Local
	render   RenderFunc
	renderer *view.Renderer
	keys     KeyMap

	focused  bool
	selected int
	offset   int

	// order maps display positions to source indices while a draggable is
	// lifted. It is nil otherwise.
	order []int

	prevID, nextID string

	width, height int

	// Placeholder is shown when the list is empty.
	Placeholder string
}

// NewList creates an empty list for the droppable id.
func NewList(id string, renderer *view.Renderer) *List {
	if renderer == nil {
		renderer = view.NewRenderer(nil, nil)
	}
	return &List{
		id:          id,
		locals:      make(map[string]*Local),
		renderer:    renderer,
		keys:        DefaultKeyMap(),
		Placeholder: "No items",
	}
}

// ID returns the droppable id.
func (l *List) ID() string { return l.id }

// SetKeyMap replaces the list bindings.
func (l *List) SetKeyMap(km KeyMap) { l.keys = km }

// SetRenderer replaces the renderer.
func (l *List) SetRenderer(r *view.Renderer) {
	if r != nil {
		l.renderer = r
	}
}

// SetItems replaces the draggable ids. State slots of ids that are no longer
// present are dropped; the others are kept. A drag in progress is cancelled.
func (l *List) SetItems(ids []string) {
	l.ids = slices.Clone(ids)
	l.order = nil
	mounted := make(map[string]*Local, len(ids))
	for _, id := range ids {
		if loc, ok := l.locals[id]; ok {
			mounted[id] = loc
		} else {
			mounted[id] = NewLocal()
		}
	}
	l.locals = mounted
	l.clampSelection()
}

// Items returns the draggable ids in source order.
func (l *List) Items() []string { return slices.Clone(l.ids) }

// Len returns the number of draggables.
func (l *List) Len() int { return len(l.ids) }

// SetRenderFunc sets the function that renders each position.
func (l *List) SetRenderFunc(fn RenderFunc) { l.render = fn }

// SetSize sets the area the list draws into.
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// SetNeighbors sets the droppables reached by moving a lifted draggable left
// and right. Empty ids disable that direction.
func (l *List) SetNeighbors(prev, next string) {
	l.prevID = prev
	l.nextID = next
}

// Focus gives the list keyboard focus.
func (l *List) Focus() { l.focused = true }

// Blur removes keyboard focus and cancels a drag.
func (l *List) Blur() {
	l.focused = false
	l.order = nil
}

// Focused reports whether the list has focus.
func (l *List) Focused() bool { return l.focused }

// Selected returns the selected source index, or -1 when the list is empty.
func (l *List) Selected() int {
	if len(l.ids) == 0 {
		return -1
	}
	if l.order != nil {
		return l.order[l.selected]
	}
	return l.selected
}

// SelectedID returns the id of the selected draggable.
func (l *List) SelectedID() string {
	if i := l.Selected(); i >= 0 {
		return l.ids[i]
	}
	return ""
}

// Select selects the draggable at a source index.
func (l *List) Select(i int) {
	l.selected = i
	l.clampSelection()
}

// SelectID selects the draggable with id. It reports whether it was found.
func (l *List) SelectID(id string) bool {
	i := slices.Index(l.ids, id)
	if i < 0 {
		return false
	}
	l.Select(i)
	return true
}

// Dragging reports whether a draggable is lifted.
func (l *List) Dragging() bool { return l.order != nil }

// Capturing reports whether the selected draggable takes every key.
func (l *List) Capturing() bool {
	if l.order != nil {
		return true
	}
	d := l.draggableAt(l.selected)
	return d != nil && d.Capturing()
}

func (l *List) clampSelection() {
	if l.selected >= len(l.ids) {
		l.selected = len(l.ids) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// sourceIndex maps a display position to a source index.
func (l *List) sourceIndex(pos int) int {
	if l.order != nil {
		return l.order[pos]
	}
	return pos
}

// draggableAt renders the draggable at a display position.
func (l *List) draggableAt(pos int) Draggable {
	if l.render == nil || pos < 0 || pos >= len(l.ids) {
		return nil
	}
	src := l.sourceIndex(pos)
	id := l.ids[src]
	loc, ok := l.locals[id]
	if !ok {
		loc = NewLocal()
		l.locals[id] = loc
	}
	provided := Provided{
		DraggableID: id,
		DragHandle:  id,
		Width:       l.width,
		Local:       loc,
	}
	snapshot := Snapshot{
		IsDragging: l.order != nil && pos == l.selected,
		IsSelected: l.focused && pos == l.selected,
	}
	rubric := Rubric{
		DraggableID: id,
		Source:      Location{DroppableID: l.id, Index: src},
	}
	return l.render(provided, snapshot, rubric)
}

// Update handles a message. It reports whether the message was consumed so
// the caller can fall back to its own bindings.
func (l *List) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		// Cursor blinks and similar messages go to the selected draggable.
		if d := l.draggableAt(l.selected); d != nil {
			_, cmd := d.Update(msg)
			return false, cmd
		}
		return false, nil
	}
	if !l.focused || len(l.ids) == 0 {
		return false, nil
	}
	if l.order != nil {
		return true, l.updateDragging(keyMsg)
	}

	if d := l.draggableAt(l.selected); d != nil {
		handled, cmd := d.Update(keyMsg)
		if handled || d.Capturing() {
			return true, cmd
		}
	}

	switch {
	case key.Matches(keyMsg, l.keys.Up):
		l.moveSelection(-1)
		return true, nil
	case key.Matches(keyMsg, l.keys.Down):
		l.moveSelection(1)
		return true, nil
	case key.Matches(keyMsg, l.keys.Lift):
		l.lift()
		return true, nil
	}
	return false, nil
}

func (l *List) updateDragging(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, l.keys.Cancel):
		return l.end(nil)
	case key.Matches(msg, l.keys.Drop):
		return l.end(&Location{DroppableID: l.id, Index: l.selected})
	case key.Matches(msg, l.keys.Up):
		l.shift(-1)
	case key.Matches(msg, l.keys.Down):
		l.shift(1)
	case key.Matches(msg, l.keys.DropLeft):
		if l.prevID != "" {
			return l.end(&Location{DroppableID: l.prevID, Index: l.selected})
		}
	case key.Matches(msg, l.keys.DropRight):
		if l.nextID != "" {
			return l.end(&Location{DroppableID: l.nextID, Index: l.selected})
		}
	}
	return nil
}

// moveSelection moves the selection, wrapping at either end.
func (l *List) moveSelection(delta int) {
	n := len(l.ids)
	if n == 0 {
		return
	}
	l.selected = (l.selected + delta + n) % n
}

func (l *List) lift() {
	l.order = make([]int, len(l.ids))
	for i := range l.order {
		l.order[i] = i
	}
}

// shift moves the lifted draggable one position, without wrapping.
func (l *List) shift(delta int) {
	to := l.selected + delta
	if to < 0 || to >= len(l.order) {
		return
	}
	l.order[l.selected], l.order[to] = l.order[to], l.order[l.selected]
	l.selected = to
}

func (l *List) end(dest *Location) tea.Cmd {
	src := l.order[l.selected]
	result := DropResult{
		DraggableID: l.ids[src],
		Source:      Location{DroppableID: l.id, Index: src},
		Destination: dest,
		Reason:      ReasonDrop,
	}
	if dest == nil {
		result.Reason = ReasonCancel
		l.selected = src
	}
	l.order = nil
	return func() tea.Msg { return DragEndMsg{Result: result} }
}

// View draws the visible draggables. The selected one is always visible.
func (l *List) View() string {
	if len(l.ids) == 0 {
		return lipgloss.NewStyle().
			Width(max(l.width, 1)).
			Align(lipgloss.Center).
			Faint(true).
			Italic(true).
			Render(l.Placeholder)
	}

	blocks := make([]string, len(l.ids))
	heights := make([]int, len(l.ids))
	for pos := range l.ids {
		d := l.draggableAt(pos)
		if d == nil {
			continue
		}
		blocks[pos] = l.renderer.Render(d.View(), l.width)
		heights[pos] = lipgloss.Height(blocks[pos])
	}
	l.ensureSelectedVisible(heights)

	budget := l.budget()
	var out []string
	if l.offset > 0 {
		out = append(out, indicator(fmt.Sprintf("↑ %d more", l.offset), l.width))
	}
	used, end := 0, l.offset
	for end < len(blocks) && (l.height <= 0 || used+heights[end] <= budget || end == l.offset) {
		used += heights[end]
		out = append(out, blocks[end])
		end++
	}
	if rest := len(blocks) - end; rest > 0 {
		out = append(out, indicator(fmt.Sprintf("↓ %d more", rest), l.width))
	}
	return strings.Join(out, "\n")
}

// budget is the number of lines available to draggables, leaving room for
// both scroll indicators.
func (l *List) budget() int {
	return max(l.height-2, 1)
}

// ensureSelectedVisible adjusts the scroll offset so the selected draggable
// is drawn.
func (l *List) ensureSelectedVisible(heights []int) {
	if l.offset > len(heights)-1 {
		l.offset = max(len(heights)-1, 0)
	}
	if l.selected < l.offset {
		l.offset = l.selected
	}
	if l.height <= 0 {
		return
	}
	budget := l.budget()
	for l.offset < l.selected {
		sum := 0
		for i := l.offset; i <= l.selected; i++ {
			sum += heights[i]
		}
		if sum <= budget {
			break
		}
		l.offset++
	}
}

func indicator(text string, width int) string {
	return lipgloss.NewStyle().
		Width(max(width, 1)).
		Align(lipgloss.Center).
		Faint(true).
		Italic(true).
		Render(text)
}
