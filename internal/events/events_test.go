package events

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bborn/lanes/internal/board"
)

// waitForFile polls for a file to exist, with timeout.
func waitForFile(t *testing.T, path string, timeout time.Duration) ([]byte, error) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		content, err := os.ReadFile(path)
		if err == nil && len(content) > 0 {
			return content, nil
		}
		lastErr = err
		time.Sleep(50 * time.Millisecond)
	}
	return nil, lastErr
}

func writeHook(t *testing.T, hooksDir, event, body string) {
	t.Helper()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(hooksDir, event), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
}

func TestEmitterRunsHook(t *testing.T) {
	hooksDir := t.TempDir()
	marker := filepath.Join(hooksDir, "marker")
	writeHook(t, hooksDir, ItemCreated, `echo "$ITEM_ID:$ITEM_TITLE:$ITEM_LANE" > "`+marker+`"`)

	New(hooksDir).EmitItemCreated(board.Item{ID: "42", Title: "Test Item"}, "To Do")

	content, err := waitForFile(t, marker, 5*time.Second)
	if err != nil {
		t.Fatalf("hook didn't run: %v", err)
	}
	if string(content) != "42:Test Item:To Do\n" {
		t.Errorf("unexpected hook output: %q", content)
	}
}

func TestEmitterPassesEventAndMetadata(t *testing.T) {
	hooksDir := t.TempDir()
	marker := filepath.Join(hooksDir, "env_marker")
	writeHook(t, hooksDir, ItemMoved, `echo "$ITEM_EVENT $ITEM_METADATA" > "`+marker+`"`)

	New(hooksDir).EmitItemMoved(board.Item{ID: "1", Title: "Move me"}, "To Do", "Done")

	content, err := waitForFile(t, marker, 5*time.Second)
	if err != nil {
		t.Fatalf("hook didn't run: %v", err)
	}
	got := string(content)
	if !strings.HasPrefix(got, "item.moved ") || !strings.Contains(got, `"from":"To Do"`) || !strings.Contains(got, `"to":"Done"`) {
		t.Errorf("unexpected hook output: %q", got)
	}
}

func TestEmitterNoHooksDir(t *testing.T) {
	New("").Emit(Event{Type: ItemCreated})
	var e *Emitter
	e.Emit(Event{Type: ItemCreated})
}

func TestEmitterMissingHook(t *testing.T) {
	New(t.TempDir()).Emit(Event{Type: ItemDeleted})
}

func TestEmitterWait(t *testing.T) {
	hooksDir := t.TempDir()
	marker := filepath.Join(hooksDir, "wait_marker")
	writeHook(t, hooksDir, ItemArchived, `sleep 0.2; echo done > "`+marker+`"`)

	e := New(hooksDir)
	e.EmitItemArchived(board.Item{ID: "7", Title: "Old"}, "Done")
	e.Wait()

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("Wait returned before the hook finished: %v", err)
	}
	var nilEmitter *Emitter
	nilEmitter.Wait()
}
