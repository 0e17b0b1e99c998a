// Command mergetutor runs the interactive MergeSort tutoring session.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mergetutor/pkg/app"
	"mergetutor/pkg/auth"
	"mergetutor/pkg/chat"
	"mergetutor/pkg/checkpoint"
	"mergetutor/pkg/config"
	"mergetutor/pkg/logging"
	"mergetutor/pkg/model"
	"mergetutor/pkg/prompts"
	"mergetutor/pkg/scroll"
	"mergetutor/pkg/session"
	"mergetutor/pkg/storage"
	"mergetutor/pkg/terminal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mergetutor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	dataDir := flag.String("data-dir", "", "override data directory")
	logLevel := flag.String("log-level", "", "override log level (debug, info, warn, error)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	sessionID := session.NewID()

	logger, err := logging.NewLogger(filepath.Join(cfg.DataDir, "logs"), sessionID)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.SetMinLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := storage.New(filepath.Join(cfg.DataDir, "state.db"))
	if err != nil {
		// Persistence is optional; the session still runs without it.
		logger.Warn(logging.CategoryStorage, "store_open_failed", err.Error(), nil)
		store = nil
	} else {
		defer store.Close()
	}

	authState := auth.NewState()
	authClient := auth.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey)
	flow := auth.NewFlow(authState, authClient, logger)

	dispatcher := model.NewClient(
		cfg.Completion.URL,
		cfg.Completion.MaxTokens,
		cfg.Completion.Temperature,
		prompts.SystemMessage(),
		authState,
		logger,
	)

	checkpoints := checkpoint.NewSet()
	chatSession := chat.NewSession(dispatcher, checkpoints, logger)
	heights := scroll.NewHeightModel(scroll.DefaultEstimate)
	writer := terminal.New()

	a := app.New(chatSession, heights, authState, flow, store, writer, logger, sessionID, os.Stdin)
	a.Restore()

	logger.Info(logging.CategorySession, "session_start", "mergetutor started", map[string]any{
		"session_id": sessionID,
	})

	return a.Run()
}
