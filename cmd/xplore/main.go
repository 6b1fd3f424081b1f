package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidyasagar/xplore/internal/app"
	"github.com/vidyasagar/xplore/internal/browser"
	"github.com/vidyasagar/xplore/internal/rewrite"
	"github.com/vidyasagar/xplore/internal/storage"
	"github.com/vidyasagar/xplore/internal/theme"
)

var (
	version = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := storage.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (using defaults)\n", err)
		def := storage.DefaultConfig()
		cfg = &def
	}

	var (
		themeName   string
		logFile     string
		script      string
		showVersion bool
	)
	flag.StringVar(&themeName, "theme", cfg.Theme, "color theme ("+strings.Join(theme.List(), ", ")+")")
	flag.StringVar(&logFile, "log", cfg.LogFile, "write debug logs to this file")
	flag.StringVar(&script, "rewrite", cfg.RewriteScript, "lua script with location rewrite rules")
	flag.BoolVar(&showVersion, "version", false, "show version")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "xplore - browse folders and the web with a back/forward log\n\n")
		fmt.Fprintf(os.Stderr, "Usage: xplore [flags] [location]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  xplore                         # open the home location or the current folder\n")
		fmt.Fprintf(os.Stderr, "  xplore ~/src                   # open a folder\n")
		fmt.Fprintf(os.Stderr, "  xplore example.com             # auto-adds https://\n")
		fmt.Fprintf(os.Stderr, "  xplore --theme nord            # use the nord theme\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("xplore %s\n", version)
		return nil
	}

	if !theme.Set(themeName) {
		return fmt.Errorf("unknown theme %q, available: %s", themeName, strings.Join(theme.List(), ", "))
	}

	logger := slog.New(slog.DiscardHandler)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logger = newLogger(f)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	loaderOpts := browser.LoaderOptions{CacheSize: cfg.CacheSize, Logger: logger}
	if script != "" {
		rules, err := rewrite.Load(script)
		if err != nil {
			return err
		}
		if rules != nil {
			defer rules.Close()
			loaderOpts.Rewriter = rules
		}
	}
	loader, err := browser.NewLoader(loaderOpts)
	if err != nil {
		return err
	}

	opts := app.Options{
		Start:  startLocation(cfg, cwd),
		Cwd:    cwd,
		Loader: loader,
		Logger: logger,
	}

	// History and bookmarks are optional; the browser works without them.
	if dir, err := storage.DataDir(); err != nil {
		logger.Warn("no data dir", "error", err)
	} else if db, err := storage.OpenDB(dir); err != nil {
		logger.Warn("opening database", "error", err)
	} else {
		defer db.Close()
		opts.Visits = storage.NewVisitStore(db)
		opts.Bookmarks = storage.NewBookmarkStore(db)
	}

	p := tea.NewProgram(app.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

func startLocation(cfg *storage.Config, cwd string) string {
	switch {
	case flag.NArg() > 0:
		return flag.Arg(0)
	case cfg.Home != "":
		return cfg.Home
	default:
		return cwd
	}
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("version", version)
}
