// Package events runs hook scripts for item lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bborn/lanes/internal/board"
)

// Event types for item lifecycle
const (
	ItemCreated  = "item.created"
	ItemUpdated  = "item.updated"
	ItemDeleted  = "item.deleted"
	ItemArchived = "item.archived"
	ItemMoved    = "item.moved"
)

// Event represents an item lifecycle event.
type Event struct {
	Type      string         `json:"type"`
	Item      board.Item     `json:"item"`
	Lane      string         `json:"lane,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Emitter handles event emission via hooks.
type Emitter struct {
	hooksDir string
	timeout  time.Duration
	logger   *log.Logger
	wg       sync.WaitGroup
}

// New creates a new event emitter. An empty hooksDir disables hooks.
func New(hooksDir string) *Emitter {
	return &Emitter{hooksDir: hooksDir, timeout: 30 * time.Second}
}

// SetLogger makes the emitter report failing hooks.
func (e *Emitter) SetLogger(l *log.Logger) {
	e.logger = l
}

// Emit triggers a hook script if it exists for the event type.
func (e *Emitter) Emit(event Event) {
	if e == nil || e.hooksDir == "" {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runHook(event)
	}()
}

// Wait blocks until every emitted hook has finished. Short-lived commands
// call it before exiting.
func (e *Emitter) Wait() {
	if e != nil {
		e.wg.Wait()
	}
}

// runHook executes the hook script for an event.
func (e *Emitter) runHook(event Event) {
	hookPath := filepath.Join(e.hooksDir, event.Type)
	if _, err := os.Stat(hookPath); os.IsNotExist(err) {
		return
	}

	env := append(os.Environ(),
		"ITEM_ID="+event.Item.ID,
		"ITEM_TITLE="+event.Item.Title,
		"ITEM_LANE="+event.Lane,
		"ITEM_EVENT="+event.Type,
		"ITEM_TIMESTAMP="+event.Timestamp.Format(time.RFC3339),
	)
	if len(event.Metadata) > 0 {
		if data, err := json.Marshal(event.Metadata); err == nil {
			env = append(env, fmt.Sprintf("ITEM_METADATA=%s", data))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, hookPath)
	cmd.Env = env
	// Hooks are best-effort.
	if err := cmd.Run(); err != nil && e.logger != nil {
		e.logger.Warn("hook failed", "event", event.Type, "item", event.Item.ID, "err", err)
	}
}

func (e *Emitter) EmitItemCreated(item board.Item, lane string) {
	e.Emit(Event{Type: ItemCreated, Item: item, Lane: lane})
}

func (e *Emitter) EmitItemUpdated(item board.Item, lane string) {
	e.Emit(Event{Type: ItemUpdated, Item: item, Lane: lane})
}

func (e *Emitter) EmitItemDeleted(item board.Item, lane string) {
	e.Emit(Event{Type: ItemDeleted, Item: item, Lane: lane})
}

func (e *Emitter) EmitItemArchived(item board.Item, lane string) {
	e.Emit(Event{Type: ItemArchived, Item: item, Lane: lane})
}

func (e *Emitter) EmitItemMoved(item board.Item, from, to string) {
	e.Emit(Event{Type: ItemMoved, Item: item, Lane: to, Metadata: map[string]any{"from": from, "to": to}})
}
