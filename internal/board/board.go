// Package board provides the kanban board model: lanes of items plus an
// archive. Every mutation is copy-on-write; a Board value is never changed in
// place, so renderers can hold on to the one they were given.
package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lookup errors returned by board mutations.
var (
	ErrLaneNotFound    = errors.New("lane not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrArchiveNotFound = errors.New("archived item not found")
)

// Item is a single card in a lane.
type Item struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewItem creates an item with a fresh ID.
func NewItem(title string, now time.Time) Item {
	return Item{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithTitle returns a copy of the item with its title replaced.
// All other fields are carried over unchanged.
func (i Item) WithTitle(title string) Item {
	i.Title = title
	return i
}

// Lane is an ordered column of items.
type Lane struct {
	ID    string
	Title string
	Items []Item
}

// NewLane creates an empty lane with a fresh ID.
func NewLane(title string) Lane {
	return Lane{ID: uuid.NewString(), Title: strings.TrimSpace(title)}
}

// ArchivedItem is an item that was archived out of a lane.
type ArchivedItem struct {
	Item
	LaneTitle  string
	ArchivedAt time.Time
}

// Position addresses an item slot on the board.
type Position struct {
	Lane  int
	Index int
}

// Board is the full set of lanes and the archive.
type Board struct {
	Lanes   []Lane
	Archive []ArchivedItem
}

// New creates a board with one empty lane per title.
func New(laneTitles ...string) Board {
	var b Board
	for _, t := range laneTitles {
		b.Lanes = append(b.Lanes, NewLane(t))
	}
	return b
}

// Items returns the items of a lane, or nil if the lane does not exist.
func (b Board) Items(laneIndex int) []Item {
	if laneIndex < 0 || laneIndex >= len(b.Lanes) {
		return nil
	}
	return b.Lanes[laneIndex].Items
}

// Item returns the item at the given position.
func (b Board) Item(laneIndex, itemIndex int) (Item, error) {
	if err := b.check(laneIndex, itemIndex); err != nil {
		return Item{}, err
	}
	return b.Lanes[laneIndex].Items[itemIndex], nil
}

// LaneIndex returns the index of the lane with the given ID, or -1.
func (b Board) LaneIndex(id string) int {
	return slices.IndexFunc(b.Lanes, func(l Lane) bool { return l.ID == id })
}

// Find returns the position of the item with the given ID.
func (b Board) Find(itemID string) (Position, bool) {
	for li, lane := range b.Lanes {
		for ii, item := range lane.Items {
			if item.ID == itemID {
				return Position{Lane: li, Index: ii}, true
			}
		}
	}
	return Position{}, false
}

// ItemCount returns the number of items across all lanes.
func (b Board) ItemCount() int {
	n := 0
	for _, l := range b.Lanes {
		n += len(l.Items)
	}
	return n
}

// AddLane appends an empty lane.
func (b Board) AddLane(title string) Board {
	out := b.clone()
	out.Lanes = append(out.Lanes, NewLane(title))
	return out
}

// AddItem appends an item to the end of a lane.
func (b Board) AddItem(laneIndex int, item Item) (Board, error) {
	if laneIndex < 0 || laneIndex >= len(b.Lanes) {
		return b, fmt.Errorf("add item to lane %d: %w", laneIndex, ErrLaneNotFound)
	}
	out := b.clone()
	out.Lanes[laneIndex].Items = append(out.Lanes[laneIndex].Items, item)
	return out, nil
}

// UpdateItem replaces the item at the given position.
func (b Board) UpdateItem(laneIndex, itemIndex int, item Item) (Board, error) {
	if err := b.check(laneIndex, itemIndex); err != nil {
		return b, fmt.Errorf("update item: %w", err)
	}
	out := b.clone()
	out.Lanes[laneIndex].Items[itemIndex] = item
	return out, nil
}

// DeleteItem removes the item at the given position and returns it.
func (b Board) DeleteItem(laneIndex, itemIndex int) (Board, Item, error) {
	if err := b.check(laneIndex, itemIndex); err != nil {
		return b, Item{}, fmt.Errorf("delete item: %w", err)
	}
	out := b.clone()
	removed := out.Lanes[laneIndex].Items[itemIndex]
	out.Lanes[laneIndex].Items = slices.Delete(out.Lanes[laneIndex].Items, itemIndex, itemIndex+1)
	return out, removed, nil
}

// ArchiveItem removes the item at the given position and appends item to the
// archive. The archived value is the one passed in, which is how the caller
// saw it when the archive was requested.
func (b Board) ArchiveItem(laneIndex, itemIndex int, item Item, now time.Time) (Board, error) {
	if err := b.check(laneIndex, itemIndex); err != nil {
		return b, fmt.Errorf("archive item: %w", err)
	}
	out := b.clone()
	out.Lanes[laneIndex].Items = slices.Delete(out.Lanes[laneIndex].Items, itemIndex, itemIndex+1)
	out.Archive = append(out.Archive, ArchivedItem{
		Item:       item,
		LaneTitle:  b.Lanes[laneIndex].Title,
		ArchivedAt: now,
	})
	return out, nil
}

// MoveItem moves an item between (or within) lanes. The destination index is
// clamped to the destination lane's bounds after removal.
func (b Board) MoveItem(from, to Position) (Board, error) {
	if err := b.check(from.Lane, from.Index); err != nil {
		return b, fmt.Errorf("move item: %w", err)
	}
	if to.Lane < 0 || to.Lane >= len(b.Lanes) {
		return b, fmt.Errorf("move item to lane %d: %w", to.Lane, ErrLaneNotFound)
	}
	out := b.clone()
	item := out.Lanes[from.Lane].Items[from.Index]
	out.Lanes[from.Lane].Items = slices.Delete(out.Lanes[from.Lane].Items, from.Index, from.Index+1)

	dest := out.Lanes[to.Lane].Items
	idx := min(max(to.Index, 0), len(dest))
	out.Lanes[to.Lane].Items = slices.Insert(dest, idx, item)
	return out, nil
}

// RestoreItem moves an archived item back to the end of a lane.
func (b Board) RestoreItem(archiveIndex, laneIndex int) (Board, error) {
	if archiveIndex < 0 || archiveIndex >= len(b.Archive) {
		return b, fmt.Errorf("restore item %d: %w", archiveIndex, ErrArchiveNotFound)
	}
	if laneIndex < 0 || laneIndex >= len(b.Lanes) {
		return b, fmt.Errorf("restore item to lane %d: %w", laneIndex, ErrLaneNotFound)
	}
	out := b.clone()
	item := out.Archive[archiveIndex].Item
	out.Archive = slices.Delete(out.Archive, archiveIndex, archiveIndex+1)
	out.Lanes[laneIndex].Items = append(out.Lanes[laneIndex].Items, item)
	return out, nil
}

// RestoreLane returns the lane an archived item should go back to: the lane
// it was archived from if it still exists, otherwise the first lane.
func (b Board) RestoreLane(archiveIndex int) int {
	if archiveIndex < 0 || archiveIndex >= len(b.Archive) {
		return 0
	}
	title := b.Archive[archiveIndex].LaneTitle
	if i := slices.IndexFunc(b.Lanes, func(l Lane) bool { return l.Title == title }); i >= 0 {
		return i
	}
	return 0
}

// ClearArchive drops every archived item.
func (b Board) ClearArchive() Board {
	out := b.clone()
	out.Archive = nil
	return out
}

func (b Board) check(laneIndex, itemIndex int) error {
	if laneIndex < 0 || laneIndex >= len(b.Lanes) {
		return fmt.Errorf("lane %d: %w", laneIndex, ErrLaneNotFound)
	}
	if itemIndex < 0 || itemIndex >= len(b.Lanes[laneIndex].Items) {
		return fmt.Errorf("lane %d item %d: %w", laneIndex, itemIndex, ErrItemNotFound)
	}
	return nil
}

// clone copies the lane and item slices so the result can be mutated without
// touching b. Items themselves are values; their Tags slices are shared and
// must be treated as read-only.
func (b Board) clone() Board {
	out := Board{
		Lanes:   make([]Lane, len(b.Lanes)),
		Archive: slices.Clone(b.Archive),
	}
	for i, l := range b.Lanes {
		l.Items = slices.Clone(l.Items)
		out.Lanes[i] = l
	}
	return out
}
