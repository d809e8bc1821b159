// Command orderboard is a terminal order board kept live over the push
// channel, falling back to polling while the channel is down.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yeremiapane/restaurant-dashboard/api"
	"github.com/yeremiapane/restaurant-dashboard/config"
	"github.com/yeremiapane/restaurant-dashboard/dashboard"
	"github.com/yeremiapane/restaurant-dashboard/invalidation"
	"github.com/yeremiapane/restaurant-dashboard/polling"
	"github.com/yeremiapane/restaurant-dashboard/realtime"
	"github.com/yeremiapane/restaurant-dashboard/utils"
	"github.com/yeremiapane/restaurant-dashboard/viewmodel"
)

// time-in-status berubah walau data tidak
const redrawInterval = 30 * time.Second

func main() {
	cfg, err := config.LoadBoard()
	if err != nil {
		utils.InitLogger("info")
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)
	// log ke stderr supaya tidak bercampur dengan board
	utils.InfoLogger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdin, os.Stdout); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.BoardConfig, in io.Reader, out io.Writer) error {
	view := viewmodel.DefaultConfig()
	view.StatusBucket = viewmodel.StatusBucket(cfg.StatusBucket)
	view.SourceFilter = cfg.SourceFilter
	view.SortKey = viewmodel.SortKey(cfg.SortKey)
	view.PageSize = cfg.PageSize

	client := api.NewClient(cfg.BaseURL, &http.Client{Timeout: 15 * time.Second})
	session, err := dashboard.Mount(ctx, dashboard.Options{
		Channel: realtime.Config{
			BaseURL:        cfg.BaseURL,
			ReconnectDelay: cfg.ReconnectDelay,
			Logger:         utils.Component("push_channel"),
		},
		Polling: polling.Config{
			ConnectedInterval:    cfg.ConnectedInterval,
			DisconnectedInterval: cfg.DisconnectedInterval,
			Logger:               utils.Component("poller"),
		},
		Invalidation: invalidation.Config{
			CoalesceWindow: cfg.CoalesceWindow,
			Logger:         utils.Component("invalidation"),
		},
		View:   view,
		Logger: utils.Component("dashboard"),
	}, client)
	if err != nil {
		return fmt.Errorf("mount dashboard: %w", err)
	}
	defer session.Unmount()

	var outMu sync.Mutex
	draw := func(page viewmodel.Page) {
		outMu.Lock()
		defer outMu.Unlock()
		// bersihkan layar
		fmt.Fprint(out, "\033[H\033[2J")
		if err := render(out, page, session.View().Config(), session.Mode(), time.Now()); err != nil {
			utils.ErrorLogger.WithError(err).Error("render failed")
		}
	}
	session.OnUpdate(draw)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			draw(session.Page())
		case line, ok := <-lines:
			if !ok {
				<-ctx.Done()
				return nil
			}
			err := handleCommand(session, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				outMu.Lock()
				fmt.Fprintln(out, err)
				outMu.Unlock()
				continue
			}
			draw(session.Page())
		}
	}
}
