package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wilbur182/lexview/internal/app"
	"github.com/wilbur182/lexview/internal/config"
	"github.com/wilbur182/lexview/internal/digest"
	"github.com/wilbur182/lexview/internal/features"
	"github.com/wilbur182/lexview/internal/keymap"
	"github.com/wilbur182/lexview/internal/object"
	"github.com/wilbur182/lexview/internal/plugin"
	"github.com/wilbur182/lexview/internal/state"
	"github.com/wilbur182/lexview/internal/styles"
	"github.com/wilbur182/lexview/internal/version"
)

// Version is set at build time via ldflags
var Version = ""

// stateMaxAge is how long view state for a file is kept without a visit.
const stateMaxAge = 90 * 24 * time.Hour

var (
	configPath   = flag.String("config", "", "path to config file")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	logFile      = flag.String("log", "", "write logs to this file instead of discarding them")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
	digestFlag   = flag.String("digest", "", "print checksums (xxh64, crc32, adler32 or all) and exit")
	themeFlag    = flag.String("theme", "", "syntax colour scheme (chroma style name)")
	listThemes   = flag.Bool("list-themes", false, "print available themes and exit")
	hexFlag      = flag.Bool("hex", false, "start in the hex view")
	noWatch      = flag.Bool("no-watch", false, "do not reload when the file changes")
	listFeatures = flag.Bool("list-features", false, "print feature flags and exit")
	saveFlags    = flag.Bool("save", false, "also write -enable, -disable and -theme to the config file")
	enableFlags  featureList
	disableFlags featureList
)

// featureList collects repeated -enable/-disable flags.
type featureList []string

func (f *featureList) String() string { return strings.Join(*f, ",") }

func (f *featureList) Set(v string) error {
	for _, name := range strings.Split(v, ",") {
		name = strings.TrimSpace(name)
		if !features.IsKnownFeature(name) {
			return fmt.Errorf("unknown feature %q", name)
		}
		*f = append(*f, name)
	}
	return nil
}

func main() {
	flag.Var(&enableFlags, "enable", "enable a feature flag (repeatable)")
	flag.Var(&disableFlags, "disable", "disable a feature flag (repeatable)")
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("lexview version %s\n", version.Effective(Version))
		os.Exit(0)
	}
	if *listThemes {
		for _, name := range styles.ListThemes() {
			fmt.Println(name)
		}
		os.Exit(0)
	}
	if flag.NArg() != 1 && !*listFeatures {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger, closeLog, err := setupLogger(*logFile, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	features.Init(cfg)
	for _, name := range enableFlags {
		features.SetOverride(name, true)
	}
	for _, name := range disableFlags {
		features.SetOverride(name, false)
	}
	if *noWatch {
		features.SetOverride(features.WatchFile.Name, false)
	}
	if *saveFlags {
		if err := saveSettings(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save config: %v\n", err)
			os.Exit(1)
		}
	}
	if *listFeatures {
		for _, f := range features.ListAll() {
			fmt.Printf("%-22s %-5v %s\n", f.Name, features.IsEnabled(f.Name), f.Description)
		}
		os.Exit(0)
	}

	registry := object.DefaultRegistry(&plugin.Context{Config: cfg, Logger: logger})

	if *digestFlag != "" {
		if err := printDigests(path, *digestFlag, cfg, registry, logger); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "lexview needs a terminal; use -digest for non-interactive output")
		os.Exit(1)
	}

	themeName := cfg.UI.Theme.Name
	if *themeFlag != "" {
		themeName = *themeFlag
	}
	if !styles.IsValidTheme(themeName) {
		logger.Warn("unknown theme, using default", "theme", themeName)
	}
	styles.ApplyTheme(themeName, cfg.UI.Theme.Overrides)

	km, rejected := keymap.NewDefaultRegistry(cfg.Keymap.Overrides)
	for _, key := range rejected {
		logger.Warn("ignoring key override for unknown command", "key", key, "command", cfg.Keymap.Overrides[key])
	}

	var store *state.Store
	if features.IsEnabled(features.PersistState.Name) {
		store, err = state.Open(config.ExpandPath(cfg.State.DBPath))
		if err != nil {
			logger.Warn("view state unavailable", "err", err)
			store = nil
		} else {
			defer store.Close()
			if n, err := store.Prune(time.Now().Add(-stateMaxAge)); err == nil && n > 0 {
				logger.Debug("pruned view state", "rows", n)
			}
		}
	}

	model, err := app.New(app.Options{
		Path:     path,
		Config:   cfg,
		Registry: registry,
		Keymap:   km,
		State:    store,
		Logger:   logger,
		Watch:    features.IsEnabled(features.WatchFile.Name),
		Hex:      *hexFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", path, err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(app.Model); ok {
		if cerr := m.Close(); cerr != nil {
			logger.Debug("close", "err", cerr)
		}
	} else {
		_ = model.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

// saveSettings writes the feature and theme flags to the default config file.
func saveSettings() error {
	for _, name := range enableFlags {
		if err := features.SetEnabled(name, true); err != nil {
			return err
		}
	}
	for _, name := range disableFlags {
		if err := features.SetEnabled(name, false); err != nil {
			return err
		}
	}
	if *themeFlag != "" {
		if !styles.IsValidTheme(*themeFlag) {
			return fmt.Errorf("unknown theme %q", *themeFlag)
		}
		return config.SaveTheme(*themeFlag)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// setupLogger returns a logger writing to path, or one that drops records
// when path is empty. A TUI owns the terminal, so stderr is never used.
func setupLogger(path string, debugLevel bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if debugLevel {
		level = slog.LevelDebug
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

// printDigests streams the file through its cache and prints one line per
// algorithm. Ctrl+C stops the computation between windows.
func printDigests(path, which string, cfg *config.Config, reg *plugin.Registry, logger *slog.Logger) error {
	obj, err := object.Open(path, reg, object.Options{CacheSize: cfg.CacheCapacity(), Logger: logger})
	if err != nil {
		return err
	}
	defer obj.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var results []digest.Result
	if which == "all" {
		results, err = digest.ComputeAll(ctx, obj.Cache)
	} else {
		var alg digest.Algorithm
		alg, err = digest.Parse(which)
		if err != nil {
			return err
		}
		var r digest.Result
		r, err = digest.Compute(ctx, obj.Cache, alg, nil)
		results = append(results, r)
	}
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%s  %s  %s\n", r.Algorithm, r.Hex(), obj.Name)
	}
	return nil
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lexview [options] FILE\n\n")
		fmt.Fprintf(os.Stderr, "A terminal viewer that shows a file as foldable tokens or as hex.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
