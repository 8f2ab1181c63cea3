package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bborn/lanes/internal/board"
	"github.com/bborn/lanes/internal/card"
	"github.com/bborn/lanes/internal/config"
	"github.com/bborn/lanes/internal/dnd"
	"github.com/bborn/lanes/internal/events"
	"github.com/bborn/lanes/internal/view"
)

const (
	// saveDelay is how long edits settle before the board is written.
	saveDelay = 300 * time.Millisecond
	// reloadGrace ignores database writes this soon after our own save.
	reloadGrace = time.Second
	// minColumnWidth is the narrowest a lane is drawn.
	minColumnWidth = 28
)

// Store is the persistence the app needs. *db.DB satisfies it.
type Store interface {
	LoadBoard() (board.Board, error)
	SaveBoard(board.Board) error
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	Path() string
}

// View represents the current view.
type View int

const (
	ViewBoard View = iota
	ViewAddItem
	ViewArchive
	ViewClearConfirm
)

// saveTickMsg fires saveDelay after an edit. Only the latest one saves.
type saveTickMsg struct{ seq int }

type savedMsg struct {
	seq int
	err error
}

type boardLoadedMsg struct {
	board board.Board
	err   error
}

// AppModel is the main application model.
type AppModel struct {
	store   Store
	cfg     *config.Config
	logger  *log.Logger
	emitter *events.Emitter
	now     func() time.Time

	watch   bool
	watcher *fileWatcher

	keys     KeyMap
	help     help.Model
	theme    Theme
	styles   Styles
	renderer *view.Renderer

	board      board.Board
	lists      []*dnd.List
	lane       int
	laneOffset int

	currentView View
	input       textinput.Model
	archive     archiveView

	clearConfirm      *huh.Form
	clearConfirmValue bool

	// updated holds ids of items whose title changed in the open editor.
	// item.updated fires once per item when the editor closes.
	updated map[string]bool

	// dirty is set by board mutations; the lists are rebuilt afterwards.
	dirty     bool
	saveSeq   int
	savedSeq  int
	saving    bool
	lastSave  time.Time
	status    string
	statusErr bool

	width  int
	height int
}

// Option configures an AppModel.
type Option func(*AppModel)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *AppModel) { m.logger = l }
}

// WithEmitter sets the hook emitter.
func WithEmitter(e *events.Emitter) Option {
	return func(m *AppModel) { m.emitter = e }
}

// WithoutWatcher disables reloading on database and config file changes.
func WithoutWatcher() Option {
	return func(m *AppModel) { m.watch = false }
}

// WithTheme overrides the configured and saved theme.
func WithTheme(name string) Option {
	return func(m *AppModel) {
		if t, err := LookupTheme(name); err == nil {
			m.theme = t
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *AppModel) { m.now = now }
}

// NewAppModel creates the board UI over store. A nil cfg uses defaults.
func NewAppModel(store Store, cfg *config.Config, opts ...Option) *AppModel {
	if cfg == nil {
		cfg = config.Default()
	}
	m := &AppModel{
		store:   store,
		cfg:     cfg,
		logger:  DiscardLogger(),
		now:     time.Now,
		watch:   true,
		keys:    ApplyKeybindingsConfig(DefaultKeyMap(), cfg.Keybindings),
		help:    help.New(),
		theme:   startTheme(store, cfg),
		updated: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.applyTheme(m.theme)

	m.input = textinput.New()
	m.input.Placeholder = "Item title"
	m.input.CharLimit = 500
	m.input.Prompt = "+ "

	b, err := store.LoadBoard()
	if err != nil {
		m.fail("load board", err)
	}
	m.board = b
	if v, err := store.GetSetting(config.SettingLastLane); err == nil && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			m.lane = i
		}
	}
	m.syncLists()
	return m
}

// startTheme resolves the starting theme: a saved choice wins over the config.
func startTheme(store Store, cfg *config.Config) Theme {
	if name, err := store.GetSetting(config.SettingTheme); err == nil && name != "" {
		if t, err := LookupTheme(name); err == nil {
			return t
		}
	}
	if t, err := LookupTheme(cfg.Theme); err == nil {
		return t
	}
	return DefaultTheme
}

// Board returns the board as the model currently holds it.
func (m *AppModel) Board() board.Board { return m.board }

// Init starts the file watcher.
func (m *AppModel) Init() tea.Cmd {
	if !m.watch {
		return nil
	}
	configPath := m.cfg.Path()
	fw, err := newFileWatcher(m.store.Path(), configPath, m.logger)
	if err != nil {
		m.logger.Warn("file watcher disabled", "err", err)
		return nil
	}
	m.watcher = fw
	return tea.Batch(fw.waitForDBChange(), fw.waitForConfigChange())
}

// Update handles messages.
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.currentView == ViewClearConfirm {
		if _, ok := msg.(tea.WindowSizeMsg); !ok {
			return m, m.updateClearConfirm(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, m.quit()
		}
		switch m.currentView {
		case ViewAddItem:
			return m, m.updateAddItem(msg)
		case ViewArchive:
			return m, m.updateArchive(msg)
		}
		return m, m.updateBoard(msg)

	case dnd.DragEndMsg:
		m.drop(msg.Result)
		return m, m.afterMutation()

	case saveTickMsg:
		if msg.seq != m.saveSeq || m.saving {
			return m, nil
		}
		return m, m.save()

	case savedMsg:
		m.saving = false
		m.lastSave = m.now()
		if msg.err != nil {
			m.fail("save board", msg.err)
			return m, nil
		}
		m.savedSeq = msg.seq
		m.logger.Debug("board saved", "seq", msg.seq)
		if m.saveSeq != m.savedSeq {
			// Edits arrived while saving.
			return m, m.save()
		}
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.fail("reload board", msg.err)
			return m, nil
		}
		if m.unsaved() {
			return m, nil
		}
		m.replaceBoard(msg.board)
		return m, nil

	case dbChangeMsg:
		var cmds []tea.Cmd
		if m.watcher != nil {
			cmds = append(cmds, m.watcher.waitForDBChange())
		}
		if m.reloadAllowed() {
			m.logger.Debug("database changed, reloading")
			cmds = append(cmds, m.load())
		}
		return m, tea.Batch(cmds...)

	case configChangeMsg:
		m.reloadConfig()
		if m.watcher != nil {
			return m, m.watcher.waitForConfigChange()
		}
		return m, nil
	}

	// Cursor blinks and the like.
	if m.currentView == ViewAddItem {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if l := m.focusedList(); l != nil {
		_, cmd := l.Update(msg)
		return m, tea.Batch(cmd, m.afterMutation())
	}
	return m, nil
}

func (m *AppModel) updateBoard(msg tea.KeyMsg) tea.Cmd {
	if l := m.focusedList(); l != nil {
		handled, cmd := l.Update(msg)
		if handled {
			return tea.Batch(cmd, m.afterMutation())
		}
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		return m.setLane(m.lane - 1)
	case key.Matches(msg, m.keys.Right):
		return m.setLane(m.lane + 1)
	case key.Matches(msg, m.keys.New):
		return m.startAddItem()
	case key.Matches(msg, m.keys.ArchiveView):
		m.openArchive()
	case key.Matches(msg, m.keys.Reload):
		m.setStatus("Reloading...")
		return m.load()
	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return nil
}

// afterMutation rebuilds the lists and schedules a save when a callback
// changed the board, and reports title edits once the editor has closed.
func (m *AppModel) afterMutation() tea.Cmd {
	var cmd tea.Cmd
	if m.dirty {
		m.dirty = false
		m.syncLists()
		m.saveSeq++
		seq := m.saveSeq
		cmd = tea.Tick(saveDelay, func(time.Time) tea.Msg { return saveTickMsg{seq: seq} })
	}
	if l := m.focusedList(); l == nil || !l.Capturing() {
		m.flushUpdated()
	}
	return cmd
}

func (m *AppModel) flushUpdated() {
	for id := range m.updated {
		if pos, ok := m.board.Find(id); ok {
			lane := m.board.Lanes[pos.Lane]
			m.emitter.EmitItemUpdated(lane.Items[pos.Index], lane.Title)
		}
	}
	clear(m.updated)
}

// factory builds the card factory of a lane from the current board.
func (m *AppModel) factory(laneIndex int) *card.Factory {
	keys := m.keys.Card
	return card.NewFactory(card.Params{
		Items:             m.board.Items(laneIndex),
		LaneIndex:         laneIndex,
		ShowArchiveButton: m.cfg.ShowArchiveButton,
		DeleteItem:        m.deleteItem,
		UpdateItem:        m.updateItem,
		ArchiveItem:       m.archiveItem,
		Keys:              &keys,
	})
}

func (m *AppModel) updateItem(laneIndex, itemIndex int, item board.Item) {
	item.UpdatedAt = m.now()
	b, err := m.board.UpdateItem(laneIndex, itemIndex, item)
	if err != nil {
		m.fail("update item", err)
		return
	}
	m.board = b
	m.updated[item.ID] = true
	m.dirty = true
}

func (m *AppModel) deleteItem(laneIndex, itemIndex int) {
	b, removed, err := m.board.DeleteItem(laneIndex, itemIndex)
	if err != nil {
		m.fail("delete item", err)
		return
	}
	lane := m.board.Lanes[laneIndex].Title
	m.board = b
	delete(m.updated, removed.ID)
	m.dirty = true
	m.logger.Info("item deleted", "lane", lane, "item", removed.ID)
	m.emitter.EmitItemDeleted(removed, lane)
	m.setStatus(fmt.Sprintf("Deleted %q", truncate(removed.Title, 40)))
}

func (m *AppModel) archiveItem(laneIndex, itemIndex int, item board.Item) {
	b, err := m.board.ArchiveItem(laneIndex, itemIndex, item, m.now())
	if err != nil {
		m.fail("archive item", err)
		return
	}
	lane := m.board.Lanes[laneIndex].Title
	m.board = b
	delete(m.updated, item.ID)
	m.dirty = true
	m.logger.Info("item archived", "lane", lane, "item", item.ID)
	m.emitter.EmitItemArchived(item, lane)
	m.setStatus(fmt.Sprintf("Archived %q", truncate(item.Title, 40)))
}

// drop applies the end of a drag.
func (m *AppModel) drop(r dnd.DropResult) {
	if r.Destination == nil {
		return
	}
	from, ok := m.board.Find(r.DraggableID)
	if !ok {
		return
	}
	to := m.board.LaneIndex(r.Destination.DroppableID)
	if to < 0 {
		return
	}
	if from.Lane == to && from.Index == r.Destination.Index {
		return
	}
	b, err := m.board.MoveItem(from, board.Position{Lane: to, Index: r.Destination.Index})
	if err != nil {
		m.fail("move item", err)
		return
	}
	item := m.board.Lanes[from.Lane].Items[from.Index]
	fromTitle, toTitle := m.board.Lanes[from.Lane].Title, b.Lanes[to].Title
	m.board = b
	m.dirty = true
	m.syncLists()
	m.focusLane(to)
	m.lists[to].SelectID(r.DraggableID)

	if from.Lane != to {
		m.logger.Info("item moved", "item", item.ID, "from", fromTitle, "to", toTitle)
		m.emitter.EmitItemMoved(item, fromTitle, toTitle)
	}
}

// syncLists makes the lane lists match the board. Lists are kept by lane id
// so their selection and card state survive.
func (m *AppModel) syncLists() {
	byID := make(map[string]*dnd.List, len(m.lists))
	for _, l := range m.lists {
		byID[l.ID()] = l
	}
	lists := make([]*dnd.List, len(m.board.Lanes))
	for i, lane := range m.board.Lanes {
		l := byID[lane.ID]
		if l == nil {
			l = dnd.NewList(lane.ID, m.renderer)
		}
		l.SetKeyMap(m.keys.List)
		l.SetRenderer(m.renderer)

		ids := make([]string, len(lane.Items))
		for j, item := range lane.Items {
			ids[j] = item.ID
		}
		if !slices.Equal(l.Items(), ids) {
			l.SetItems(ids)
		}
		l.SetRenderFunc(m.factory(i).Render)

		var prev, next string
		if i > 0 {
			prev = m.board.Lanes[i-1].ID
		}
		if i < len(m.board.Lanes)-1 {
			next = m.board.Lanes[i+1].ID
		}
		l.SetNeighbors(prev, next)
		lists[i] = l
	}
	m.lists = lists
	m.focusLane(m.lane)
	m.layout()
}

func (m *AppModel) focusedList() *dnd.List {
	if m.lane < 0 || m.lane >= len(m.lists) {
		return nil
	}
	return m.lists[m.lane]
}

// focusLane focuses lane i (clamped) when the board view is showing.
func (m *AppModel) focusLane(i int) {
	m.lane = min(max(i, 0), max(len(m.lists)-1, 0))
	for j, l := range m.lists {
		if j == m.lane && m.currentView == ViewBoard {
			l.Focus()
		} else {
			l.Blur()
		}
	}
}

// setLane moves the focus to another lane and remembers it.
func (m *AppModel) setLane(i int) tea.Cmd {
	before := m.lane
	m.focusLane(i)
	if m.lane == before {
		return nil
	}
	m.layout()
	store, lane := m.store, strconv.Itoa(m.lane)
	return func() tea.Msg {
		if err := store.SetSetting(config.SettingLastLane, lane); err != nil {
			m.logger.Warn("save last lane", "err", err)
		}
		return nil
	}
}

// replaceBoard swaps in a board loaded from the store, keeping the selection.
func (m *AppModel) replaceBoard(b board.Board) {
	var selected string
	if l := m.focusedList(); l != nil {
		selected = l.SelectedID()
	}
	m.board = b
	m.syncLists()
	if l := m.focusedList(); l != nil && selected != "" {
		l.SelectID(selected)
	}
	m.setStatus("Reloaded")
}

func (m *AppModel) unsaved() bool {
	return m.saving || m.saveSeq != m.savedSeq
}

// reloadAllowed reports whether an external change may replace the board:
// not while our own edits are pending, a card is being edited or dragged, or
// right after our own save.
func (m *AppModel) reloadAllowed() bool {
	if m.unsaved() || m.now().Sub(m.lastSave) < reloadGrace {
		return false
	}
	if l := m.focusedList(); l != nil && l.Capturing() {
		return false
	}
	return m.currentView == ViewBoard
}

func (m *AppModel) load() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		b, err := store.LoadBoard()
		return boardLoadedMsg{board: b, err: err}
	}
}

func (m *AppModel) save() tea.Cmd {
	m.saving = true
	store, b, seq := m.store, m.board, m.saveSeq
	return func() tea.Msg {
		return savedMsg{seq: seq, err: store.SaveBoard(b)}
	}
}

// quit writes pending edits before exiting.
func (m *AppModel) quit() tea.Cmd {
	m.flushUpdated()
	if m.saveSeq != m.savedSeq || m.saving {
		if err := m.store.SaveBoard(m.board); err != nil {
			m.logger.Error("save board on quit", "err", err)
		}
	}
	if m.watcher != nil {
		m.watcher.Close()
	}
	return tea.Quit
}

func (m *AppModel) startAddItem() tea.Cmd {
	if len(m.board.Lanes) == 0 {
		m.fail("add item", board.ErrLaneNotFound)
		return nil
	}
	m.currentView = ViewAddItem
	m.focusLane(m.lane)
	m.input.Reset()
	m.layout()
	return m.input.Focus()
}

func (m *AppModel) updateAddItem(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeAddItem()
		return nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		m.closeAddItem()
		if title == "" {
			return nil
		}
		item := board.NewItem(title, m.now())
		b, err := m.board.AddItem(m.lane, item)
		if err != nil {
			m.fail("add item", err)
			return nil
		}
		m.board = b
		m.dirty = true
		cmd := m.afterMutation()
		m.lists[m.lane].SelectID(item.ID)

		lane := m.board.Lanes[m.lane].Title
		m.logger.Info("item created", "lane", lane, "item", item.ID)
		m.emitter.EmitItemCreated(item, lane)
		m.setStatus(fmt.Sprintf("Added %q", truncate(item.Title, 40)))
		return cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *AppModel) closeAddItem() {
	m.input.Blur()
	m.currentView = ViewBoard
	m.focusLane(m.lane)
	m.layout()
}

func (m *AppModel) cycleTheme() tea.Cmd {
	t := nextTheme(m.theme.Name)
	m.applyTheme(t)
	m.setStatus("Theme: " + t.Name)
	store := m.store
	return func() tea.Msg {
		if err := store.SetSetting(config.SettingTheme, t.Name); err != nil {
			m.logger.Warn("save theme", "err", err)
		}
		return nil
	}
}

// applyTheme rebuilds the styles and the card stylesheet. Configured style
// overrides are layered on top of the theme.
func (m *AppModel) applyTheme(t Theme) {
	m.theme = t
	m.styles = NewStyles(t)
	m.help.Styles.ShortKey = m.styles.HelpKey
	m.help.Styles.ShortDesc = m.styles.HelpDesc
	m.help.Styles.FullKey = m.styles.HelpKey
	m.help.Styles.FullDesc = m.styles.HelpDesc

	sheet := DefaultStylesheet(t)
	sheet.Merge(m.cfg.Styles)
	if m.renderer == nil {
		m.renderer = view.NewRenderer(sheet, nil)
	} else {
		m.renderer.Styles = sheet
	}
}

// reloadConfig rereads the config file after it changed on disk.
func (m *AppModel) reloadConfig() {
	cfg, err := config.LoadFromPath(m.cfg.Path())
	if err != nil {
		m.fail("reload config", err)
		return
	}
	themeChanged := cfg.Theme != m.cfg.Theme
	m.cfg = cfg
	m.keys = ApplyKeybindingsConfig(DefaultKeyMap(), cfg.Keybindings)
	theme := m.theme
	if themeChanged {
		if t, err := LookupTheme(cfg.Theme); err == nil {
			theme = t
		}
	}
	m.applyTheme(theme)
	m.syncLists()
	m.logger.Info("config reloaded", "path", cfg.Path())
	m.setStatus("Config reloaded")
}

func (m *AppModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *AppModel) fail(action string, err error) {
	m.status = fmt.Sprintf("%s: %v", action, err)
	m.statusErr = true
	m.logger.Error(action, "err", err)
}

// visibleLanes returns the first lane drawn and how many fit.
func (m *AppModel) visibleLanes() (start, count int) {
	n := len(m.board.Lanes)
	if n == 0 {
		return 0, 0
	}
	count = n
	if m.width > 0 {
		count = min(n, max(m.width/minColumnWidth, 1))
	}
	if m.lane < m.laneOffset {
		m.laneOffset = m.lane
	}
	if m.lane >= m.laneOffset+count {
		m.laneOffset = m.lane - count + 1
	}
	m.laneOffset = min(m.laneOffset, n-count)
	return m.laneOffset, count
}

// layout sizes the lane lists to the window.
func (m *AppModel) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	_, count := m.visibleLanes()
	if count == 0 {
		return
	}
	colWidth := m.width / count
	// Column border and padding, then the lane header.
	listWidth := max(colWidth-4, 1)
	listHeight := max(m.bodyHeight()-3, 1)
	for _, l := range m.lists {
		l.SetSize(listWidth, listHeight)
	}
}

// bodyHeight is what is left for the lanes after the header and footer.
func (m *AppModel) bodyHeight() int {
	footer := 1 + lipgloss.Height(m.helpView())
	if m.currentView == ViewAddItem {
		footer++
	}
	return max(m.height-1-footer, 3)
}

// View renders the current view.
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch m.currentView {
	case ViewArchive:
		body = m.viewArchive()
	case ViewClearConfirm:
		return m.viewClearConfirm()
	default:
		body = m.viewBoard()
	}

	parts := []string{m.viewHeader(), body}
	if m.currentView == ViewAddItem {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, m.viewStatus(), m.helpView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *AppModel) viewHeader() string {
	title := m.styles.Title.Render("lanes")
	info := m.styles.Dim.Render(fmt.Sprintf("  %d items", m.board.ItemCount()))
	if n := len(m.board.Archive); n > 0 {
		info += m.styles.Dim.Render(fmt.Sprintf(" · %d archived", n))
	}
	if start, count := m.visibleLanes(); count < len(m.board.Lanes) {
		info += m.styles.Dim.Render(fmt.Sprintf(" · lanes %d-%d of %d", start+1, start+count, len(m.board.Lanes)))
	}
	return title + info
}

func (m *AppModel) viewBoard() string {
	height := m.bodyHeight()
	start, count := m.visibleLanes()
	if count == 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center,
			m.styles.Dim.Render("No lanes"))
	}
	colWidth := m.width / count

	cols := make([]string, 0, count)
	for i := start; i < start+count; i++ {
		lane := m.board.Lanes[i]
		colStyle, headerStyle := m.styles.Column, m.styles.Header
		if i == m.lane {
			colStyle, headerStyle = m.styles.ColumnHi, m.styles.HeaderHi
		}
		header := headerStyle.Render(" "+lane.Title+" ") + " " +
			m.styles.Count.Render(strconv.Itoa(len(lane.Items)))
		content := lipgloss.JoinVertical(lipgloss.Left, header, "", m.lists[i].View())
		cols = append(cols, colStyle.
			Width(colWidth-2).
			Height(height-2).
			MaxHeight(height).
			Render(content))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m *AppModel) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return m.styles.StatusBar.Inherit(m.styles.Error).Render(m.status)
	}
	return m.styles.StatusBar.Render(m.status)
}

func (m *AppModel) helpView() string {
	switch {
	case m.currentView == ViewArchive:
		return m.help.View(archiveHelp{k: m.keys})
	case m.currentView == ViewAddItem:
		return m.styles.HelpDesc.Render("enter add • esc cancel")
	}
	if l := m.focusedList(); l != nil && l.Capturing() && !l.Dragging() {
		return m.help.View(editingHelp{k: m.keys.Card})
	}
	return m.help.View(m.keys)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
