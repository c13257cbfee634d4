// Package app implements the termtui bubbletea program: a full-screen
// terminal emulator with scrollback, copy mode, and a status bar.
package app

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"

	"github.com/Gaurav-Gosain/termtui/internal/config"
	"github.com/Gaurav-Gosain/termtui/internal/input"
	"github.com/Gaurav-Gosain/termtui/internal/session"
)

// statusRows is the height of the status bar.
const statusRows = 1

// notificationDuration is how long transient status messages stay up.
const notificationDuration = 3 * time.Second

// Model is the bubbletea model for a running session.
type Model struct {
	cfg      *config.Config
	registry *config.KeybindRegistry
	sess     *session.Session
	logger   *log.Logger
	watcher  *config.Watcher

	width  int
	height int
	ready  bool

	// copyMode is non-nil while copy mode is active. copyTop is the
	// absolute row shown at the top of the copy-mode viewport.
	copyMode *input.CopyMode
	copyTop  int

	// scrollOffset is how many scrollback lines are shown above the
	// live screen. Zero means pinned to the bottom.
	scrollOffset int

	showHelp bool

	status       string
	statusExpiry time.Time
}

// Options configures a Model.
type Options struct {
	Config   *config.Config
	Registry *config.KeybindRegistry
	Session  *session.Session
	Logger   *log.Logger
	// Watcher delivers config hot reloads. Optional.
	Watcher *config.Watcher
}

// New builds the application model.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	registry := opts.Registry
	if registry == nil {
		registry = config.NewKeybindRegistry(cfg)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Model{
		cfg:      cfg,
		registry: registry,
		sess:     opts.Session,
		logger:   logger,
		watcher:  opts.Watcher,
	}
}

// Session returns the model's session.
func (m *Model) Session() *session.Session { return m.sess }

// InCopyMode reports whether copy mode is active.
func (m *Model) InCopyMode() bool { return m.copyMode != nil }

// notify sets a transient status message.
func (m *Model) notify(msg string) {
	m.status = msg
	m.statusExpiry = time.Now().Add(notificationDuration)
}

// terminalSize returns the emulator dimensions for the current host
// size, leaving room for the status bar.
func (m *Model) terminalSize() (cols, rows int) {
	cols = max(m.width, 1)
	rows = max(m.height-statusRows, 1)
	return cols, rows
}

// TickMsg drives periodic re-rendering while the child produces
// output.
type TickMsg time.Time

// SessionExitedMsg signals that the child process ended.
type SessionExitedMsg struct{}

// ConfigReloadedMsg carries a hot-reloaded configuration.
type ConfigReloadedMsg struct {
	Config *config.Config
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func listenForExit(sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		<-sess.Exited()
		return SessionExitedMsg{}
	}
}

func listenForConfigChanges(w *config.Watcher) tea.Cmd {
	return func() tea.Msg {
		cfg, ok := <-w.Changes()
		if !ok {
			return nil
		}
		return ConfigReloadedMsg{Config: cfg}
	}
}
