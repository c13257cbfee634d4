// Package session manages PTY-backed terminal sessions: spawning the
// child process, pumping its output into the emulator, and routing
// input back to it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/colorprofile"
	xpty "github.com/charmbracelet/x/xpty"
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/termtui/internal/pool"
	"github.com/Gaurav-Gosain/termtui/internal/vt"
)

// Spawn failure reasons. Everything after a successful spawn is
// reported through the exit notification, never as an error.
var (
	ErrInvalidSize     = errors.New("session: columns and rows must be positive")
	ErrCommandNotFound = errors.New("session: command not found")
	ErrPTYAllocation   = errors.New("session: PTY allocation failed")
	ErrAlreadyStarted  = errors.New("session: already started")
)

// Config carries per-session settings. The zero value uses detected
// defaults.
type Config struct {
	// Shell is the command to run. Empty means $SHELL, then a platform
	// default.
	Shell string
	// Args is the argument vector passed to the shell command.
	Args []string
	// Term overrides the detected TERM value.
	Term string
	// ColorTerm overrides the detected COLORTERM value.
	ColorTerm string
	// ScrollbackLines bounds the scrollback history. Zero keeps the
	// emulator default.
	ScrollbackLines int
	// Logger receives diagnostics for unrecognized sequences.
	Logger vt.Logger
}

// Callbacks notify the owner about session events. They are invoked
// from session goroutines; handlers must not call back into the
// session synchronously while holding their own locks.
type Callbacks struct {
	// Title fires when the child sets the window title.
	Title func(string)
	// Bell fires on BEL.
	Bell func()
	// Exited fires once when the child process ends.
	Exited func()
}

// Session is one terminal session: an emulator fed by a PTY. A single
// mutex serializes emulator access between the read loop and callers.
type Session struct {
	ID      string
	Name    string
	Created time.Time

	mu    sync.Mutex
	emu   *vt.Emulator
	pty   xpty.Pty
	input io.Writer
	cmd   *exec.Cmd

	cancel  context.CancelFunc
	started bool
	ended   bool
	exited  chan struct{}

	cb Callbacks
}

// New creates a session with an emulator but no child process. Start
// spawns the process. Fails only on degenerate dimensions.
func New(name string, cfg *Config, cols, rows int) (*Session, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}
	if cfg == nil {
		cfg = &Config{}
	}

	emu := vt.NewEmulator(cols, rows)
	if cfg.ScrollbackLines > 0 {
		emu.SetScrollbackMaxLines(cfg.ScrollbackLines)
	}
	if cfg.Logger != nil {
		emu.SetLogger(cfg.Logger)
	}

	s := &Session{
		ID:      uuid.NewString(),
		Name:    name,
		Created: time.Now(),
		emu:     emu,
		exited:  make(chan struct{}),
	}
	emu.SetCallbacks(vt.Callbacks{
		Title: func(title string) {
			if s.cb.Title != nil {
				s.cb.Title(title)
			}
		},
		Bell: func() {
			if s.cb.Bell != nil {
				s.cb.Bell()
			}
		},
	})
	return s, nil
}

// Spawn creates a session and starts its child process.
func Spawn(name string, cfg *Config, cols, rows int) (*Session, error) {
	s, err := New(name, cfg, cols, rows)
	if err != nil {
		return nil, err
	}
	if err := s.Start(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// SetCallbacks installs the event callbacks. Call before Start.
func (s *Session) SetCallbacks(cb Callbacks) {
	s.cb = cb
}

// Start spawns the child process on a fresh PTY and begins pumping its
// output into the emulator.
func (s *Session) Start(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	shell := cfg.Shell
	if shell == "" {
		shell = detectShell()
	}
	if _, err := exec.LookPath(shell); err != nil {
		return fmt.Errorf("%w: %s", ErrCommandNotFound, shell)
	}

	term, colorTerm := cfg.Term, cfg.ColorTerm
	if term == "" {
		term, colorTerm = terminalEnv()
	}

	cols, rows := s.emu.Width(), s.emu.Height()
	p, err := xpty.NewPty(cols, rows)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPTYAllocation, err)
	}

	env := append(os.Environ(),
		"TERM="+term,
		"TERMTUI_SESSION_ID="+s.ID,
	)
	if colorTerm != "" {
		env = append(env, "COLORTERM="+colorTerm)
	}
	cmd := newChildCommand(shell, cfg.Args, env)

	if err := p.Start(cmd); err != nil {
		_ = p.Close()
		return fmt.Errorf("%w: %v", ErrPTYAllocation, err)
	}
	// Some PTY implementations only accept the size once the child is
	// running.
	_ = p.Resize(cols, rows)

	ctx, cancel := context.WithCancel(context.Background())
	s.pty = p
	s.input = p
	s.cmd = cmd
	s.cancel = cancel
	s.started = true
	s.emu.SetReplyWriter(p)

	go s.readLoop(ctx)
	go s.waitForExit(ctx, cmd)
	return nil
}

// readLoop copies PTY output into the emulator until the PTY closes.
func (s *Session) readLoop(ctx context.Context) {
	bufPtr := pool.GetByteSlice()
	buf := *bufPtr
	defer pool.PutByteSlice(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := s.pty.Read(buf)
		if n > 0 {
			s.mu.Lock()
			_, _ = s.emu.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// waitForExit watches the child process and fires the exit
// notification once.
func (s *Session) waitForExit(ctx context.Context, cmd *exec.Cmd) {
	// xpty.WaitProcess works on both Unix PTYs and ConPTY.
	_ = xpty.WaitProcess(ctx, cmd)

	s.mu.Lock()
	already := s.ended
	s.ended = true
	s.mu.Unlock()
	if already {
		return
	}

	close(s.exited)
	if s.cb.Exited != nil {
		s.cb.Exited()
	}
}

// Exited is closed when the child process ends.
func (s *Session) Exited() <-chan struct{} { return s.exited }

// Running reports whether the session has a live child process.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.ended
}

// SendInput writes raw bytes to the child. Input after the session has
// ended is silently dropped.
func (s *Session) SendInput(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.input == nil || s.ended {
		return nil
	}
	if _, err := s.input.Write(data); err != nil {
		return fmt.Errorf("session: write to PTY: %w", err)
	}
	return nil
}

// Paste sends pasted text to the child. When the application enabled
// bracketed paste the text is wrapped in the paste markers; otherwise
// newlines become carriage returns so line-oriented programs see Enter.
func (s *Session) Paste(text string) error {
	if text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.input == nil || s.ended {
		return nil
	}

	var data []byte
	if s.emu.BracketedPasteEnabled() {
		data = make([]byte, 0, len(text)+12)
		data = append(data, "\x1b[200~"...)
		data = append(data, text...)
		data = append(data, "\x1b[201~"...)
	} else {
		data = []byte(strings.ReplaceAll(text, "\n", "\r"))
	}
	if _, err := s.input.Write(data); err != nil {
		return fmt.Errorf("session: write to PTY: %w", err)
	}
	return nil
}

// Resize changes the emulator and PTY dimensions. Zero or negative
// dimensions are rejected.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emu.Resize(cols, rows)
	if s.pty != nil {
		// PTY resize failures are not fatal; the emulator already
		// reflects the new size.
		_ = s.pty.Resize(cols, rows)
	}
	return nil
}

// Snapshot freezes the current terminal content for copy mode.
func (s *Session) Snapshot() *vt.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emu.Snapshot()
}

// WithLock runs f with the emulator while holding the session lock.
// The renderer uses this to read a consistent frame. f must not call
// other Session methods.
func (s *Session) WithLock(f func(emu *vt.Emulator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.emu)
}

// Title returns the child-reported window title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emu.Title()
}

// Size returns the emulator dimensions.
func (s *Session) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emu.Width(), s.emu.Height()
}

// Info returns a point-in-time summary of the session.
func (s *Session) Info() Info {
	cols, rows := s.Size()
	return Info{
		ID:      s.ID,
		Name:    s.Name,
		Width:   cols,
		Height:  rows,
		Title:   s.Title(),
		Created: s.Created.Unix(),
		Running: s.Running(),
	}
}

// Info summarizes a session for listings.
type Info struct {
	ID      string
	Name    string
	Width   int
	Height  int
	Title   string
	Created int64
	Running bool
}

// Close terminates the child process and releases the PTY. Safe to
// call on a session that never started or already ended.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	p := s.pty
	cmd := s.cmd
	s.pty = nil
	s.input = nil
	s.cmd = nil
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if p != nil {
		_ = p.Close()
	}
	if cmd != nil && cmd.Process != nil {
		done := make(chan struct{})
		go func() {
			_ = cmd.Process.Kill()
			_, _ = cmd.Process.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// newChildCommand builds the child process command with its argument
// vector and environment, configured for a controlling PTY.
func newChildCommand(shell string, args, env []string) *exec.Cmd {
	// #nosec G204 -- running the user's shell is the point of a
	// terminal emulator.
	cmd := exec.Command(shell, args...)
	cmd.Env = env
	configurePTYCommand(cmd)
	return cmd
}

func detectShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	if runtime.GOOS == "windows" {
		for _, shell := range []string{"pwsh.exe", "powershell.exe", "cmd.exe"} {
			if _, err := exec.LookPath(shell); err == nil {
				return shell
			}
		}
		return "cmd.exe"
	}
	for _, shell := range []string{"/bin/bash", "/bin/zsh", "/bin/fish", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

var (
	envOnce  sync.Once
	envTerm  string
	envColor string
)

// terminalEnv detects TERM and COLORTERM for child processes from the
// host terminal's capabilities. Detection runs once per process.
func terminalEnv() (term, colorTerm string) {
	envOnce.Do(func() {
		profile := colorprofile.Detect(os.Stdout, os.Environ())
		envTerm, envColor = profileEnv(profile)
	})
	return envTerm, envColor
}

func profileEnv(profile colorprofile.Profile) (term, colorTerm string) {
	parent := os.Getenv("TERM")
	switch profile {
	case colorprofile.TrueColor:
		if parent != "" && strings.Contains(parent, "color") {
			term = parent
		} else {
			term = "xterm-256color"
		}
		return term, "truecolor"
	case colorprofile.ANSI256:
		switch {
		case strings.Contains(parent, "256color"):
			term = parent
		case strings.HasPrefix(parent, "screen"):
			term = "screen-256color"
		case strings.HasPrefix(parent, "tmux"):
			term = "tmux-256color"
		default:
			term = "xterm-256color"
		}
		return term, ""
	case colorprofile.ANSI:
		if parent != "" && parent != "dumb" {
			return parent, ""
		}
		return "xterm", ""
	case colorprofile.Ascii, colorprofile.NoTTY:
		return "dumb", ""
	default:
		return "xterm-256color", ""
	}
}
