// Package app is the Bubble Tea program: it shows an opened file in the
// lexical (token) view or the hex view and routes keys and mouse events to
// them.
package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wilbur182/lexview/internal/config"
	"github.com/wilbur182/lexview/internal/fdmonitor"
	"github.com/wilbur182/lexview/internal/features"
	"github.com/wilbur182/lexview/internal/keymap"
	"github.com/wilbur182/lexview/internal/markdown"
	"github.com/wilbur182/lexview/internal/mouse"
	"github.com/wilbur182/lexview/internal/palette"
	"github.com/wilbur182/lexview/internal/plugin"
	"github.com/wilbur182/lexview/internal/state"
	"github.com/wilbur182/lexview/internal/watcher"
)

type viewMode int

const (
	modeLexical viewMode = iota
	modeHex
)

// Options configures New.
type Options struct {
	Path     string
	Config   *config.Config
	Registry *plugin.Registry
	Keymap   *keymap.Registry
	State    *state.Store // nil disables view state persistence
	Logger   *slog.Logger
	Watch    bool
	Hex      bool // start in the hex view
}

// Model is the root Bubble Tea model.
type Model struct {
	cfg    *config.Config
	reg    *plugin.Registry
	keymap *keymap.Registry
	store  *state.Store
	logger *slog.Logger

	path    string
	doc     *document
	mode    viewMode
	watcher *watcher.Watcher

	// UI state
	width, height int
	showHelp      bool
	helpScroll    int
	showMetadata  bool
	gotoActive    bool
	gotoInput     textinput.Model
	showPalette   bool
	palette       palette.Model

	mouse *mouse.Handler
	help  *markdown.Renderer
	fds   *fdmonitor.Monitor

	// Status/toast messages
	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool
}

// New opens the file and builds the model. The lexical view is shown when the
// file decodes to text, the hex view otherwise.
func New(opts Options) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	path, err := filepath.Abs(opts.Path)
	if err != nil {
		return Model{}, err
	}
	doc, err := openDocument(path, opts.Config, opts.Registry, logger)
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Prompt = "Go to: "
	ti.Placeholder = "offset, 0x offset or :line"
	ti.CharLimit = 32

	m := Model{
		cfg:          opts.Config,
		reg:          opts.Registry,
		keymap:       opts.Keymap,
		store:        opts.State,
		logger:       logger,
		path:         path,
		doc:          doc,
		showMetadata: opts.Config.Lexical.ShowMetadata,
		gotoInput:    ti,
		palette:      palette.New(),
		mouse:        mouse.NewHandler(),
		help:         markdown.NewRenderer(logger),
		fds:          fdmonitor.New(logger),
	}
	if doc.engine == nil || opts.Hex {
		m.mode = modeHex
	}
	m.restoreState()

	if opts.Watch {
		w, err := watcher.New(path, opts.Config.Watch.Debounce, logger)
		if err != nil {
			logger.Warn("file watch unavailable", "path", path, "err", err)
		} else {
			m.watcher = w
		}
	}
	return m, nil
}

// Init starts waiting for file changes.
func (m Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return FileChangedMsg{}
	}
}

// control returns the active view.
func (m *Model) control() Control {
	if m.mode == modeLexical && m.doc.engine != nil {
		return m.doc.engine
	}
	return m.doc.hex
}

func (m *Model) nav() navigator {
	if m.mode == modeLexical && m.doc.engine != nil {
		return m.doc.engine
	}
	return m.doc.hex
}

func (m *Model) lexicalActive() bool {
	return m.mode == modeLexical && m.doc.engine != nil
}

func (m *Model) context() string {
	if m.lexicalActive() {
		return keymap.ContextLexical
	}
	return keymap.ContextHex
}

// ShowToast displays a temporary status message.
func (m *Model) ShowToast(msg string, duration time.Duration, isError bool) tea.Cmd {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(duration)
	m.statusIsError = isError
	return tea.Tick(duration, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

// ClearToast clears any expired toast message.
func (m *Model) ClearToast() {
	if m.statusMsg != "" && !time.Now().Before(m.statusExpiry) {
		m.statusMsg = ""
		m.statusIsError = false
	}
}

// restoreState applies remembered cursor and folds for the current file.
func (m *Model) restoreState() {
	if m.store == nil || !features.IsEnabled(features.PersistState.Name) {
		return
	}
	vs, ok, err := m.store.Load(m.path, m.doc.obj.Size())
	if err != nil {
		m.logger.Warn("view state load failed", "path", m.path, "err", err)
		return
	}
	if !ok {
		return
	}
	if e := m.doc.engine; e != nil {
		s := e.Settings()
		if s.PrettyFormat != vs.Pretty {
			s.PrettyFormat = vs.Pretty
			if err := e.SetSettings(s); err != nil {
				m.logger.Debug("view state layout not restored", "path", m.path, "err", err)
			}
		}
		e.RestoreFolds(vs.Folds)
		if m.doc.mapper != nil {
			m.doc.syncTo(true, int64(vs.CursorOffset))
		}
	}
	if err := m.doc.hex.GoTo(vs.CursorOffset); err != nil {
		m.logger.Debug("view state cursor not restored", "path", m.path, "offset", vs.CursorOffset, "err", err)
	}
}

// saveState remembers cursor and folds for the current file.
func (m *Model) saveState() {
	if m.store == nil || !features.IsEnabled(features.PersistState.Name) {
		return
	}
	vs := state.ViewState{
		Path:         m.path,
		Size:         m.doc.obj.Size(),
		CursorOffset: int(max(m.doc.cursorFileOffset(m.lexicalActive()), 0)),
		Pretty:       m.cfg.Lexical.PrettyFormat,
	}
	if e := m.doc.engine; e != nil {
		vs.Folds = e.FoldedOffsets()
		vs.Pretty = e.Settings().PrettyFormat
	}
	if err := m.store.Save(vs); err != nil {
		m.logger.Warn("view state save failed", "path", m.path, "err", err)
	}
}

// Close saves view state and releases the file and watcher. Call it once
// after the program exits.
func (m *Model) Close() error {
	m.saveState()
	if m.watcher != nil {
		m.watcher.Stop()
	}
	return m.doc.close()
}
