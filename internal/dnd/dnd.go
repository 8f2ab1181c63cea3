// Package dnd is a keyboard drag-and-drop list for bubbletea programs.
//
// A List does not know what it displays. For every visible position it calls
// a RenderFunc with the position's Rubric, a Snapshot of its drag state and a
// Provided value carrying the decorations and the per-draggable Local state
// slot. Reordering is reported as a DropResult; applying it is up to the
// owner of the data.
package dnd

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bborn/lanes/internal/view"
)

// Location is a position inside a droppable list.
type Location struct {
	DroppableID string
	Index       int
}

// Rubric describes the draggable being rendered. Source is its position in
// the list the owner supplied, even while it is lifted and shown elsewhere.
type Rubric struct {
	DraggableID string
	Source      Location
}

// Snapshot is the drag state of one draggable.
type Snapshot struct {
	IsDragging bool
	IsSelected bool
}

// Provided carries what a draggable needs from the list.
type Provided struct {
	DraggableID string
	DragHandle  string
	// Width is the number of cells the draggable is drawn into.
	Width int
	// Local holds state that survives re-renders while the draggable stays
	// mounted.
	Local *Local
}

// DraggableProps returns the attributes a rendered draggable carries.
func (p Provided) DraggableProps() map[string]string {
	return map[string]string{
		"data-draggable-id":  p.DraggableID,
		"data-drag-handle":   p.DragHandle,
		"data-draggable-ctx": "keyboard",
	}
}

// Draggable is one rendered position.
type Draggable interface {
	View() *view.Node
	// Update handles a message while the draggable is selected. It reports
	// whether a key was consumed.
	Update(msg tea.Msg) (bool, tea.Cmd)
	// Capturing reports that the draggable wants every key, e.g. while a
	// text field inside it is being edited.
	Capturing() bool
}

// RenderFunc renders the draggable at a position.
type RenderFunc func(Provided, Snapshot, Rubric) Draggable

// DropReason says how a drag ended.
type DropReason string

const (
	ReasonDrop   DropReason = "DROP"
	ReasonCancel DropReason = "CANCEL"
)

// DropResult reports the end of a drag. Destination is nil when the drag was
// cancelled.
type DropResult struct {
	DraggableID string
	Source      Location
	Destination *Location
	Reason      DropReason
}

// DragEndMsg is sent when a drag ends.
type DragEndMsg struct {
	Result DropResult
}

// Local is a draggable's state slot.
type Local struct {
	values map[string]any
}

// NewLocal creates an empty slot.
func NewLocal() *Local {
	return &Local{values: make(map[string]any)}
}

// Use returns the value stored under key, creating it with init on first use.
// Store pointers to keep mutations across renders.
func Use[T any](l *Local, key string, init func() T) T {
	if l == nil {
		return init()
	}
	if v, ok := l.values[key].(T); ok {
		return v
	}
	v := init()
	l.values[key] = v
	return v
}
