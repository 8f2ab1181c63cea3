package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// dbChangeMsg reports a write to the database from outside this model.
type dbChangeMsg struct{}

// configChangeMsg reports that the config file was written or replaced.
type configChangeMsg struct{}

// fileWatcher forwards fsnotify events for the database and the config file.
type fileWatcher struct {
	w          *fsnotify.Watcher
	dbPaths    map[string]bool
	configPath string
	dbCh       chan struct{}
	configCh   chan struct{}
	logger     *log.Logger
}

// newFileWatcher starts watching. Either path may be empty.
func newFileWatcher(dbPath, configPath string, logger *log.Logger) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{
		w:        w,
		dbPaths:  make(map[string]bool),
		dbCh:     make(chan struct{}, 1),
		configCh: make(chan struct{}, 1),
		logger:   logger,
	}

	if dbPath != "" {
		// Watch both the main database file and the WAL file.
		for _, p := range []string{dbPath, dbPath + "-wal"} {
			fw.dbPaths[filepath.Clean(p)] = true
			if err := w.Add(p); err != nil {
				logger.Debug("watch", "path", p, "err", err)
			}
		}
	}
	if configPath != "" {
		// Editors replace the file on save, so watch its directory.
		fw.configPath = filepath.Clean(configPath)
		if err := w.Add(filepath.Dir(configPath)); err != nil {
			logger.Debug("watch", "path", configPath, "err", err)
		}
	}

	go fw.run()
	return fw, nil
}

func (fw *fileWatcher) run() {
	errs := fw.w.Errors
	for {
		select {
		case event, ok := <-fw.w.Events:
			if !ok {
				close(fw.dbCh)
				close(fw.configCh)
				return
			}
			name := filepath.Clean(event.Name)
			switch {
			case fw.dbPaths[name] && event.Has(fsnotify.Write):
				notify(fw.dbCh)
			case name == fw.configPath && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)):
				notify(fw.configCh)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fw.logger.Warn("watcher", "err", err)
		}
	}
}

// notify is a non-blocking send, so bursts of writes collapse into one.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// waitForDBChange returns a command that waits for database file changes.
func (fw *fileWatcher) waitForDBChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-fw.dbCh; !ok {
			return nil
		}
		return dbChangeMsg{}
	}
}

// waitForConfigChange returns a command that waits for config file changes.
func (fw *fileWatcher) waitForConfigChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-fw.configCh; !ok {
			return nil
		}
		return configChangeMsg{}
	}
}

// Close stops the watcher.
func (fw *fileWatcher) Close() error {
	return fw.w.Close()
}
