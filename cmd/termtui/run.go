package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"
	"charm.land/log/v2"
	"golang.org/x/term"

	"github.com/Gaurav-Gosain/termtui/internal/app"
	"github.com/Gaurav-Gosain/termtui/internal/config"
	"github.com/Gaurav-Gosain/termtui/internal/session"
)

// debugLogPath is where --debug writes its log, in the working
// directory so the TUI itself stays clean.
const debugLogPath = "termtui-debug.log"

func runLocal() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("termtui must run on a terminal")
	}

	logger, cleanup, err := newLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	userConfig, err := config.LoadUserConfig()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "err", err)
		userConfig = config.DefaultConfig()
	}
	registry := config.NewKeybindRegistry(userConfig)

	if debugMode {
		configPath, _ := config.ConfigPath()
		logger.Debug("configuration", "path", configPath)
	}

	// Hot reload is best effort; the program works without it.
	watcher, err := config.WatchConfig()
	if err != nil {
		logger.Warn("config watcher unavailable", "err", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	manager := session.NewManager()
	defer manager.CloseAll()

	// The initial size is a placeholder; the first WindowSizeMsg
	// resizes the session to the real terminal dimensions.
	sess, err := manager.SpawnSession(manager.GenerateSessionName(), &session.Config{
		Shell:           userConfig.Terminal.Shell,
		Args:            userConfig.Terminal.ShellArgs,
		ScrollbackLines: userConfig.Terminal.ScrollbackLines,
		Logger:          logger,
	}, 80, 24)
	if err != nil {
		return fmt.Errorf("spawning session: %w", err)
	}

	model := app.New(app.Options{
		Config:   userConfig,
		Registry: registry,
		Session:  sess,
		Logger:   logger,
		Watcher:  watcher,
	})

	p := tea.NewProgram(
		model,
		tea.WithoutSignalHandler(),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		p.Send(tea.QuitMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// newLogger returns the application logger. Without --debug the logs
// are discarded so they never bleed into the TUI.
func newLogger() (*log.Logger, func(), error) {
	if !debugMode {
		return log.New(io.Discard), func() {}, nil
	}

	f, err := os.OpenFile(debugLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening debug log: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
	})
	return logger, func() { _ = f.Close() }, nil
}
