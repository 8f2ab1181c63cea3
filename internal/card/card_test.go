package card

import (
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bborn/lanes/internal/board"
	"github.com/bborn/lanes/internal/dnd"
	"github.com/bborn/lanes/internal/view"
)

type call struct {
	op    string
	lane  int
	index int
	item  board.Item
}

// parent records the callbacks a card makes.
type parent struct {
	calls []call
}

func (p *parent) params(items []board.Item, lane int, showArchive bool) Params {
	return Params{
		Items:             items,
		LaneIndex:         lane,
		ShowArchiveButton: showArchive,
		DeleteItem: func(l, i int) {
			p.calls = append(p.calls, call{op: "delete", lane: l, index: i})
		},
		UpdateItem: func(l, i int, it board.Item) {
			p.calls = append(p.calls, call{op: "update", lane: l, index: i, item: it})
		},
		ArchiveItem: func(l, i int, it board.Item) {
			p.calls = append(p.calls, call{op: "archive", lane: l, index: i, item: it})
		},
	}
}

func (p *parent) count(op string) int {
	n := 0
	for _, c := range p.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

// harness renders one card position repeatedly over the same state slot.
type harness struct {
	t       *testing.T
	factory *Factory
	local   *dnd.Local
	index   int
	snap    dnd.Snapshot
}

func newHarness(t *testing.T, p Params, index int) *harness {
	return &harness{
		t:       t,
		factory: NewFactory(p),
		local:   dnd.NewLocal(),
		index:   index,
		snap:    dnd.Snapshot{IsSelected: true},
	}
}

func (h *harness) card() *Card {
	d := h.factory.Render(
		dnd.Provided{DraggableID: "item", DragHandle: "item", Width: 40, Local: h.local},
		h.snap,
		dnd.Rubric{DraggableID: "item", Source: dnd.Location{DroppableID: "lane", Index: h.index}},
	)
	c, ok := d.(*Card)
	if !ok {
		h.t.Fatalf("Render returned %T", d)
	}
	return c
}

func (h *harness) view() *view.Node { return h.card().View() }

func (h *harness) press(keys ...tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd
	for _, k := range keys {
		_, cmd := h.card().Update(k)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (h *harness) click(class string) {
	h.t.Helper()
	n := h.view().Find(class)
	if n == nil {
		h.t.Fatalf("no %s control", class)
	}
	if !n.Activate() {
		h.t.Fatalf("%s has no action", class)
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyAltD     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}, Alt: true}
	keyAltA     = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}, Alt: true}
)

func milk() board.Item {
	return board.Item{
		ID:        "m1",
		Title:     "Buy milk",
		Body:      "2 liters",
		Tags:      []string{"shop"},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestViewingShowsTitleOnly(t *testing.T) {
	for _, title := range []string{"Buy milk", "", "two\nlines", "  spaced  "} {
		p := &parent{}
		h := newHarness(t, p.params([]board.Item{{Title: title}}, 0, true), 0)
		root := h.view()

		titleNode := root.Find(ClassTitle)
		if titleNode == nil || titleNode.Text != title {
			t.Errorf("title node = %+v, want text %q", titleNode, title)
		}
		if root.Find(ClassInput) != nil || root.Find(ClassSettings) != nil {
			t.Errorf("viewing card for %q has editor parts", title)
		}
	}
}

func TestEditShowsFocusedInput(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)

	cmd := h.press(runes("e"))
	if cmd == nil {
		t.Error("entering edit mode returned no focus command")
	}
	root := h.view()
	input := root.Find(ClassInput)
	if input == nil {
		t.Fatal("no input while editing")
	}
	if input.Text != "Buy milk" {
		t.Errorf("input value = %q, want %q", input.Text, "Buy milk")
	}
	if !input.Focused {
		t.Error("input not focused in the update that started editing")
	}
	if root.Find(ClassTitle) != nil {
		t.Error("static title shown while editing")
	}
	if wrap := root.Find(ClassGrowWrap); wrap == nil || wrap.Attrs["data-replicated-value"] != "Buy milk" {
		t.Errorf("grow-wrap = %+v", wrap)
	}
}

func TestClickEditFocusesOnNextRender(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)

	h.click(ClassEditButton)
	if input := h.view().Find(ClassInput); input == nil || !input.Focused {
		t.Errorf("input after click = %+v", input)
	}
}

func TestEditButtonLabels(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)

	btn := h.view().Find(ClassEditButton)
	if btn.Label != "Edit item" || btn.Icon != view.IconPencil || btn.HasClass(ClassIsEnabled) {
		t.Errorf("viewing edit button = %+v", btn)
	}
	h.click(ClassEditButton)
	btn = h.view().Find(ClassEditButton)
	if btn.Label != "Close" || btn.Icon != view.IconCross || !btn.HasClass(ClassIsEnabled) {
		t.Errorf("editing edit button = %+v", btn)
	}
}

func TestToggleTwiceIsIdempotent(t *testing.T) {
	p := &parent{}
	items := []board.Item{milk()}
	h := newHarness(t, p.params(items, 0, true), 0)

	h.click(ClassEditButton)
	h.click(ClassEditButton)

	if h.card().Editing() {
		t.Error("card still editing after two toggles")
	}
	if len(p.calls) != 0 {
		t.Errorf("calls = %+v, want none", p.calls)
	}
	if got := h.view().Find(ClassTitle).Text; got != "Buy milk" {
		t.Errorf("title = %q", got)
	}
	if items[0].Title != "Buy milk" {
		t.Error("items mutated")
	}
}

func TestTypingUpdatesItem(t *testing.T) {
	p := &parent{}
	orig := milk()
	h := newHarness(t, p.params([]board.Item{orig}, 3, false), 0)

	h.press(runes("e"), runes("X"))

	if len(p.calls) != 1 || p.calls[0].op != "update" {
		t.Fatalf("calls = %+v, want one update", p.calls)
	}
	c := p.calls[0]
	if c.lane != 3 || c.index != 0 {
		t.Errorf("update(%d, %d), want (3, 0)", c.lane, c.index)
	}
	if c.item.Title != "Buy milkX" {
		t.Errorf("title = %q, want %q", c.item.Title, "Buy milkX")
	}
	rest := c.item
	rest.Title = orig.Title
	if !reflect.DeepEqual(rest, orig) {
		t.Errorf("other fields changed: %+v", c.item)
	}
}

func TestCloseKeysLeaveEditMode(t *testing.T) {
	for _, tt := range []struct {
		name string
		key  tea.KeyMsg
	}{
		{"escape", keyEsc},
		{"enter", keyEnter},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := &parent{}
			h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
			h.press(runes("e"), runes("!"))
			before := p.count("update")

			h.press(tt.key)

			if h.card().Editing() {
				t.Error("still editing")
			}
			if got := p.count("update"); got != before {
				t.Errorf("updates = %d, want %d", got, before)
			}
			if h.view().Find(ClassInput) != nil {
				t.Error("input still rendered")
			}
		})
	}
}

func TestDeleteWhileEditing(t *testing.T) {
	for _, tt := range []struct {
		name string
		act  func(h *harness)
	}{
		{"click", func(h *harness) { h.click(ClassButtonDelete) }},
		{"shortcut", func(h *harness) { h.press(keyAltD) }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := &parent{}
			items := []board.Item{{Title: "A"}, milk()}
			h := newHarness(t, p.params(items, 1, true), 1)
			h.click(ClassEditButton)

			tt.act(h)

			if !reflect.DeepEqual(p.calls, []call{{op: "delete", lane: 1, index: 1}}) {
				t.Errorf("calls = %+v", p.calls)
			}
			if !h.card().Editing() {
				t.Error("delete left edit mode")
			}
		})
	}
}

func TestPanelArchiveWhileEditing(t *testing.T) {
	for _, tt := range []struct {
		name string
		act  func(h *harness)
	}{
		{"click", func(h *harness) { h.click(ClassButtonArchive) }},
		{"shortcut", func(h *harness) { h.press(keyAltA) }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := &parent{}
			h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
			h.click(ClassEditButton)

			tt.act(h)

			if len(p.calls) != 1 || p.calls[0].op != "archive" || p.calls[0].item.ID != "m1" {
				t.Errorf("calls = %+v", p.calls)
			}
			if !h.card().Editing() {
				t.Error("archive left edit mode")
			}
		})
	}
}

func TestPanelButtons(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
	h.click(ClassEditButton)

	actions := h.view().Find(ClassSettings).Find(ClassSettingsActions)
	if actions == nil || len(actions.Children) != 2 {
		t.Fatalf("settings actions = %+v", actions)
	}
	del, arc := actions.Children[0], actions.Children[1]
	if !del.HasClass(ClassButtonDelete) || del.Text != "Delete" || del.Icon != view.IconTrash {
		t.Errorf("delete button = %+v", del)
	}
	if !arc.HasClass(ClassButtonArchive) || arc.Text != "Archive" || arc.Icon != view.IconSheetsInBox {
		t.Errorf("archive button = %+v", arc)
	}
}

func TestQuickArchive(t *testing.T) {
	items := []board.Item{{ID: "a", Title: "A"}, milk()}

	t.Run("shown", func(t *testing.T) {
		p := &parent{}
		h := newHarness(t, p.params(items, 0, true), 1)
		btn := h.view().Find(ClassEditArchiveButton)
		if btn == nil || btn.Label != "Archive item" || btn.Icon != view.IconSheetsInBox {
			t.Fatalf("quick archive button = %+v", btn)
		}
		h.click(ClassEditArchiveButton)

		want := []call{{op: "archive", lane: 0, index: 1, item: items[1]}}
		if !reflect.DeepEqual(p.calls, want) {
			t.Errorf("calls = %+v, want %+v", p.calls, want)
		}
		if h.card().Editing() {
			t.Error("quick archive entered edit mode")
		}
	})

	t.Run("shortcut", func(t *testing.T) {
		p := &parent{}
		h := newHarness(t, p.params(items, 0, true), 0)
		h.press(runes("a"))
		if p.count("archive") != 1 {
			t.Errorf("calls = %+v", p.calls)
		}
	})

	t.Run("hidden", func(t *testing.T) {
		p := &parent{}
		h := newHarness(t, p.params(items, 0, false), 0)
		if h.view().Find(ClassEditArchiveButton) != nil {
			t.Error("quick archive rendered without the flag")
		}
		handled, _ := h.card().Update(runes("a"))
		if handled || len(p.calls) != 0 {
			t.Errorf("handled=%v calls=%+v", handled, p.calls)
		}
	})
}

func TestScenarioSecondItemInThirdLane(t *testing.T) {
	p := &parent{}
	items := []board.Item{{Title: "A"}, {Title: "B"}}
	h := newHarness(t, p.params(items, 2, false), 1)

	if got := h.view().Find(ClassTitle).Text; got != "B" {
		t.Fatalf("shows %q, want B", got)
	}

	h.click(ClassEditButton)
	input := h.view().Find(ClassInput)
	if input == nil || input.Text != "B" || !input.Focused {
		t.Fatalf("editor = %+v", input)
	}

	h.press(runes("!"))
	want := []call{{op: "update", lane: 2, index: 1, item: board.Item{Title: "B!"}}}
	if !reflect.DeepEqual(p.calls, want) {
		t.Fatalf("calls = %+v, want %+v", p.calls, want)
	}

	h.press(keyEnter)
	if h.card().Editing() {
		t.Error("enter did not return to viewing")
	}
	if len(p.calls) != 1 {
		t.Errorf("enter made calls: %+v", p.calls)
	}
}

func TestItemResolvedFreshEachRender(t *testing.T) {
	p := &parent{}
	local := dnd.NewLocal()
	render := func(items []board.Item) *view.Node {
		f := NewFactory(p.params(items, 0, false))
		return f.Render(dnd.Provided{Local: local}, dnd.Snapshot{}, dnd.Rubric{}).View()
	}
	if got := render([]board.Item{{Title: "old"}}).Find(ClassTitle).Text; got != "old" {
		t.Errorf("first render = %q", got)
	}
	if got := render([]board.Item{{Title: "new"}}).Find(ClassTitle).Text; got != "new" {
		t.Errorf("second render = %q, want new", got)
	}
}

func TestEditorFollowsParent(t *testing.T) {
	p := &parent{}
	items := []board.Item{milk()}
	h := newHarness(t, p.params(items, 0, false), 0)
	h.press(runes("e"), runes("X"))

	// The parent did not apply the update, so the editor still shows the
	// title it was given.
	if got := h.view().Find(ClassInput).Text; got != "Buy milk" {
		t.Errorf("input = %q, want Buy milk", got)
	}

	items = []board.Item{p.calls[0].item}
	h.factory = NewFactory(p.params(items, 0, false))
	if got := h.view().Find(ClassInput).Text; got != "Buy milkX" {
		t.Errorf("input = %q, want Buy milkX", got)
	}
}

func TestDraggingAndSelectedClasses(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)

	h.snap = dnd.Snapshot{}
	root := h.view()
	if !root.HasClass(ClassItem) || root.HasClass(ClassIsDragging) || root.HasClass(ClassIsSelected) {
		t.Errorf("idle classes = %v", root.Class)
	}
	if root.Attrs["data-draggable-id"] != "item" {
		t.Errorf("attrs = %v", root.Attrs)
	}

	h.snap = dnd.Snapshot{IsDragging: true, IsSelected: true}
	root = h.view()
	if !root.HasClass(ClassIsDragging) || !root.HasClass(ClassIsSelected) {
		t.Errorf("dragging classes = %v", root.Class)
	}
	if root.Find(ClassContentWrapper) == nil || root.Find(ClassEditButtonWrapper) == nil {
		t.Error("missing wrappers")
	}
}

func TestTabCyclesControls(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, true), 0)

	focused := func() string {
		n := h.view().FocusedNode()
		if n == nil {
			return ""
		}
		return n.Class[0]
	}

	h.press(keyTab)
	if got := focused(); got != ClassEditButton {
		t.Errorf("after tab = %q", got)
	}
	h.press(keyTab)
	if got := focused(); got != ClassEditArchiveButton {
		t.Errorf("after tab tab = %q", got)
	}
	h.press(keyTab)
	if got := focused(); got != ClassEditButton {
		t.Errorf("tab did not wrap: %q", got)
	}
	h.press(keyShiftTab)
	if got := focused(); got != ClassEditArchiveButton {
		t.Errorf("shift+tab = %q", got)
	}

	h.press(keyEnter)
	if p.count("archive") != 1 {
		t.Errorf("enter on quick archive: calls = %+v", p.calls)
	}

	h.press(keyEsc)
	if got := focused(); got != "" {
		t.Errorf("esc left focus on %q", got)
	}
}

func TestTabToPanelWhileEditing(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
	h.press(runes("e"))

	// input -> delete
	h.press(keyShiftTab, keyShiftTab)
	if n := h.view().FocusedNode(); n == nil || !n.HasClass(ClassButtonDelete) {
		t.Fatalf("focused = %+v", n)
	}
	if h.card().st.content.InputFocused() {
		t.Error("input kept focus")
	}

	h.press(runes("x"))
	if len(p.calls) != 0 {
		t.Errorf("typing on a button made calls: %+v", p.calls)
	}

	h.press(keyEnter)
	if p.count("delete") != 1 {
		t.Errorf("calls = %+v", p.calls)
	}

	h.press(keyEsc)
	if h.card().Editing() {
		t.Error("esc on a panel button did not close the editor")
	}
}

func TestEnterWithoutFocusStartsEditing(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
	handled, _ := h.card().Update(keyEnter)
	if !handled || !h.card().Editing() {
		t.Errorf("handled=%v editing=%v", handled, h.card().Editing())
	}
}

func TestNilCallbacksAreNoops(t *testing.T) {
	h := newHarness(t, Params{Items: []board.Item{milk()}, ShowArchiveButton: true}, 0)
	h.click(ClassEditArchiveButton)
	h.click(ClassEditButton)
	h.press(runes("Z"))
	h.click(ClassButtonDelete)
	h.click(ClassButtonArchive)
	if !h.card().Editing() {
		t.Error("expected editing")
	}
}

func TestStateDroppedWithLocal(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, false), 0)
	h.click(ClassEditButton)
	if !h.card().Editing() {
		t.Fatal("not editing")
	}
	h.local = dnd.NewLocal()
	if h.card().Editing() {
		t.Error("new mount started in edit mode")
	}
}

func TestRenderedCard(t *testing.T) {
	p := &parent{}
	h := newHarness(t, p.params([]board.Item{milk()}, 0, true), 0)
	r := view.NewRenderer(nil, view.ASCIIIcons)

	out := r.Render(h.view(), 40)
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("render missing title:\n%s", out)
	}

	h.click(ClassEditButton)
	out = r.Render(h.view(), 40)
	for _, want := range []string{"Buy milk", "del Delete", "arc Archive"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}
