// lanes is a terminal kanban board.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bborn/lanes/internal/board"
	"github.com/bborn/lanes/internal/config"
	"github.com/bborn/lanes/internal/db"
	"github.com/bborn/lanes/internal/events"
	"github.com/bborn/lanes/internal/server"
	"github.com/bborn/lanes/internal/ui"
)

var (
	version = "dev"

	// Styles for CLI output
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// flags shared by every command.
var (
	configPath string
	dbPath     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lanes",
		Short:   "Terminal kanban board",
		Long:    "A keyboard-driven kanban board for the terminal.",
		Version: version,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runTUI(); err != nil {
				exitErr(err)
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default "+db.DefaultPath()+")")

	addCmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add an item to a lane",
		Long: `Adds an item to the end of a lane. Without a title you are prompted for one.

Examples:
  lanes add "Buy milk"
  lanes add --lane Doing "Write report"
  lanes add --lane 3 "Ship it"`,
		Run: func(cmd *cobra.Command, args []string) {
			lane, _ := cmd.Flags().GetString("lane")
			if err := runAdd(strings.Join(args, " "), lane); err != nil {
				exitErr(err)
			}
		},
	}
	addCmd.Flags().StringP("lane", "L", "", "lane title or 1-based position (default: first lane)")
	rootCmd.AddCommand(addCmd)

	printCmd := &cobra.Command{
		Use:   "print",
		Short: "Print the board as markdown",
		Run: func(cmd *cobra.Command, args []string) {
			raw, _ := cmd.Flags().GetBool("raw")
			if err := runPrint(raw); err != nil {
				exitErr(err)
			}
		},
	}
	printCmd.Flags().Bool("raw", false, "print markdown without rendering it")
	rootCmd.AddCommand(printCmd)

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with a markdown board file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			force, _ := cmd.Flags().GetBool("force")
			if err := runImport(args[0], force); err != nil {
				exitErr(err)
			}
		},
	}
	importCmd.Flags().BoolP("force", "f", false, "replace a board that has items")
	rootCmd.AddCommand(importCmd)

	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "List archived items",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runArchive(); err != nil {
				exitErr(err)
			}
		},
	}
	rootCmd.AddCommand(archiveCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over SSH",
		Long: `Runs an SSH server; every session gets its own board UI over the shared database.

Connect with:
  ssh -p 2323 localhost
  ssh -p 2323 -o SetEnv=LANES_THEME=nord localhost`,
		Run: func(cmd *cobra.Command, args []string) {
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetString("port")
			if err := runServe(host, port); err != nil {
				exitErr(err)
			}
		},
	}
	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().StringP("port", "p", "", "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Run: func(cmd *cobra.Command, args []string) {
			force, _ := cmd.Flags().GetBool("force")
			path := resolveConfigPath()
			if err := config.WriteDefault(path, force); err != nil {
				exitErr(err)
			}
			fmt.Println(successStyle.Render("Wrote " + path))
		},
	}
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveConfigPath())
		},
	}
	configCmd.AddCommand(configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	os.Exit(1)
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// resolveDBPath picks the database file: the --db flag, then LANES_DB_PATH,
// then the config file, then the default location.
func resolveDBPath(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	if os.Getenv("LANES_DB_PATH") == "" && cfg.DBPath != "" {
		return cfg.DBPath
	}
	return db.DefaultPath()
}

// open loads the config and opens the database, seeding the default lanes
// on first run.
func open() (*config.Config, *db.DB, error) {
	cfg, err := config.LoadFromPath(resolveConfigPath())
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(resolveDBPath(dbPath, cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := database.SeedDefaultLanes(); err != nil {
		database.Close()
		return nil, nil, err
	}
	return cfg, database, nil
}

func newEmitter(cfg *config.Config, logger *log.Logger) *events.Emitter {
	e := events.New(cfg.HooksDir)
	e.SetLogger(logger)
	return e
}

func runTUI() error {
	cfg, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	logger, closer, err := ui.NewFileLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info("starting", "version", version, "db", database.Path())

	emitter := newEmitter(cfg, logger)
	model := ui.NewAppModel(database, cfg,
		ui.WithLogger(logger),
		ui.WithEmitter(emitter),
	)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	emitter.Wait()
	return nil
}

func runAdd(title, laneName string) error {
	cfg, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	b, err := database.LoadBoard()
	if err != nil {
		return err
	}
	lane, err := findLane(b, laneName)
	if err != nil {
		return err
	}

	if strings.TrimSpace(title) == "" {
		err := huh.NewInput().
			Title("New item in " + b.Lanes[lane].Title).
			Value(&title).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("title is required")
				}
				return nil
			}).
			Run()
		if err != nil {
			return err
		}
	}

	item := board.NewItem(title, time.Now())
	if b, err = b.AddItem(lane, item); err != nil {
		return err
	}
	if err := database.SaveBoard(b); err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "lanes"})
	emitter := newEmitter(cfg, logger)
	emitter.EmitItemCreated(item, b.Lanes[lane].Title)
	emitter.Wait()

	fmt.Println(successStyle.Render("Added") + " " + boldStyle.Render(item.Title) + dimStyle.Render(" to "+b.Lanes[lane].Title))
	return nil
}

// findLane resolves a lane by title (case-insensitive) or 1-based position.
// An empty name is the first lane.
func findLane(b board.Board, name string) (int, error) {
	if len(b.Lanes) == 0 {
		return 0, board.ErrLaneNotFound
	}
	if name == "" {
		return 0, nil
	}
	for i, l := range b.Lanes {
		if strings.EqualFold(l.Title, name) {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 1 && n <= len(b.Lanes) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("lane %q: %w", name, board.ErrLaneNotFound)
}

func runPrint(raw bool) error {
	_, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	b, err := database.LoadBoard()
	if err != nil {
		return err
	}
	out, err := renderMarkdown(b.Markdown(), raw)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// renderMarkdown styles md with glamour when stdout is a terminal.
func renderMarkdown(md string, raw bool) (string, error) {
	fd := int(os.Stdout.Fd())
	if raw || !term.IsTerminal(fd) {
		return md, nil
	}
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	return r.Render(md)
}

func runImport(path string, force bool) error {
	_, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	current, err := database.LoadBoard()
	if err != nil {
		return err
	}
	if !force && (current.ItemCount() > 0 || len(current.Archive) > 0) {
		return errors.New("the board has items; use --force to replace it")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := board.ParseMarkdown(f, time.Now())
	if err != nil {
		return err
	}
	if err := database.SaveBoard(b); err != nil {
		return err
	}
	fmt.Println(successStyle.Render("Imported") + dimStyle.Render(fmt.Sprintf(" %d lanes, %d items, %d archived", len(b.Lanes), b.ItemCount(), len(b.Archive))))
	return nil
}

func runArchive() error {
	_, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	b, err := database.LoadBoard()
	if err != nil {
		return err
	}
	if len(b.Archive) == 0 {
		fmt.Println(dimStyle.Render("Nothing archived"))
		return nil
	}
	for _, a := range b.Archive {
		fmt.Println(boldStyle.Render(a.Title) + dimStyle.Render(fmt.Sprintf("  %s · %s", a.LaneTitle, a.ArchivedAt.Format("2006-01-02 15:04"))))
	}
	return nil
}

func runServe(host, port string) error {
	cfg, database, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	if host == "" {
		host = cfg.SSH.Host
	}
	if port == "" {
		port = cfg.SSH.Port
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "lanes",
	})
	emitter := newEmitter(cfg, logger)

	srv, err := server.New(server.Config{
		Addr:        net.JoinHostPort(host, port),
		HostKeyPath: cfg.SSH.HostKeyPath,
		Store:       database,
		App:         cfg,
		Emitter:     emitter,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	emitter.Wait()
	return nil
}
