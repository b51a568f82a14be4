package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/petems/keyregisters/internal/app"
	"github.com/petems/keyregisters/internal/clipboard"
	"github.com/petems/keyregisters/internal/config"
	"github.com/petems/keyregisters/internal/dispatch"
	"github.com/petems/keyregisters/internal/history"
	"github.com/petems/keyregisters/internal/hotkey"
	"github.com/petems/keyregisters/internal/inject"
	"github.com/petems/keyregisters/internal/logging"
	"github.com/petems/keyregisters/internal/loop"
	"github.com/petems/keyregisters/internal/notify"
	"github.com/petems/keyregisters/internal/permissions"
	"github.com/petems/keyregisters/internal/registers"
	"github.com/petems/keyregisters/internal/settings"
	"github.com/petems/keyregisters/internal/tray"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

func main() {
	// macOS needs the main thread for the native event loop
	hotkey.RunOnMainThread(run)
}

func run() {
	// Load config from XDG/Library/AppData
	cfg, err := config.Load()
	if err != nil {
		// Use default logger if config fails to load
		log := logging.New()
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.NewWithLevel(cfg.LogLevel)

	// Without accessibility access shortcuts still fire but copy/paste
	// synthesis is a no-op
	if err := permissions.EnsurePermissions(); err != nil {
		log.Warn().Err(err).Msg("Input synthesis unavailable")
	}

	dataDir := cfg.DataPath()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Warn().Err(err).Str("dir", dataDir).Msg("Failed to create data directory")
	}

	regs := registers.New(filepath.Join(dataDir, "registers.json"), log)
	if err := regs.Load(); err != nil {
		log.Info().Err(err).Msg("Starting with empty registers")
	}

	hist := history.New(filepath.Join(dataDir, "history.json"), cfg.HistoryLimit, log)
	if err := hist.Load(); err != nil {
		log.Info().Err(err).Msg("Starting with empty history")
	}

	prefs := settings.New(filepath.Join(dataDir, "settings.json"), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := loop.New(64)
	go func() {
		if err := events.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Event loop stopped")
		}
	}()

	engine := clipboard.NewEngine(clipboard.Config{
		Board:     clipboard.NewSystem(),
		Keyboard:  inject.New(log),
		Scheduler: events,
		Timing: clipboard.Timing{
			PasteRestoreDelay:   cfg.Timing.PasteRestoreDelay(),
			PollInterval:        cfg.Timing.CapturePollInterval(),
			CaptureTimeout:      cfg.Timing.CaptureTimeout(),
			CaptureRestoreDelay: cfg.Timing.CaptureRestoreDelay(),
		},
		QueueLimit: cfg.QueueLimit,
		Logger:     log,
	})

	application := app.New(app.Config{
		Clipboard: engine,
		Registers: regs,
		History:   hist,
		Settings:  prefs,
		Messenger: notify.New(cfg.Notifications, log),
		Logger:    log,
	})

	dispatcher := dispatch.New(dispatch.Config{
		Hotkeys:  hotkey.New(log),
		Settings: prefs,
		Loop:     events,
		Callbacks: dispatch.Callbacks{
			OnPaste:    application.OnPaste,
			OnSave:     application.OnSave,
			OnClearAll: application.OnClearAll,
		},
		Logger: log,
	})
	go dispatcher.Run(ctx)

	trayUI := tray.New(application, prefs, events, Version, Commit, log)
	application.SetUI(trayUI)

	log.Info().Str("version", Version).Str("data", dataDir).Msg("Key Registers starting...")

	// Setup shutdown signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	err = trayUI.Run(ctx, func() {
		dispatcher.Install()
		application.Ready()
	})
	if err != nil {
		log.Error().Err(err).Msg("Tray error")
	}

	if err := dispatcher.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to release shortcuts")
	}
	if err := engine.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close clipboard engine")
	}
	cancel()
	<-events.Done()
	log.Info().Msg("Stopped")
}
