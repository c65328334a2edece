package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/mbrowse/internal/app"
	"github.com/llehouerou/mbrowse/internal/config"
	"github.com/llehouerou/mbrowse/internal/errmsg"
	"github.com/llehouerou/mbrowse/internal/history"
	"github.com/llehouerou/mbrowse/internal/logging"
	"github.com/llehouerou/mbrowse/internal/services"
	"github.com/llehouerou/mbrowse/internal/stderr"
)

func main() {
	if err := run(); err != nil {
		stderr.WriteOriginal(fmt.Sprintf("Error: %v\n", err))
		os.Exit(1)
	}
}

func run() error {
	store := config.Open(nil)
	loadErr := store.Load()

	cfg := store.Config()
	logs, logger := logging.NewManager(logging.FromConfig(cfg.GetLogConfig()), io.Discard)
	defer logs.Close()
	stopFollow := logs.Follow(store)
	defer stopFollow()

	if loadErr != nil {
		// keep going with defaults; the file may be fixed while running
		logger.Error("loading config", "err", loadErr)
	}
	if err := store.Watch(); err != nil {
		logger.Warn("watching config", "err", err)
	}
	defer store.Close()

	if err := stderr.Start(logger); err != nil {
		logger.Warn("capturing stderr", "err", err)
	}
	defer stderr.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := services.Start(ctx, cfg, logger)
	defer svc.Close()
	svc.Follow(store)
	sub := svc.Fetcher.Subscribe()

	hist, err := history.OpenDefault()
	if err != nil {
		logger.Warn("opening history", "err", err)
	} else {
		defer hist.Close()
	}

	lastKind := cfg.GetUIConfig().LastEntityType

	model := app.New(ctx, app.Deps{
		Client:       svc.Client,
		Fetcher:      svc.Fetcher,
		Subscription: sub,
		History:      hist,
		Config:       store,
		Logger:       logger,
	})
	if loadErr != nil {
		model.ErrorMsg = errmsg.Format(errmsg.OpConfigLoad, loadErr)
	}

	logger.Info("starting", "log", logs.Config().String())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	if cur := store.Config(); cur.GetUIConfig().LastEntityType != lastKind && loadErr == nil {
		if err := store.Save(); err != nil {
			logger.Error("saving config", "err", err)
		}
	}
	return nil
}
