// Copyright 2026 The Canvas Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/canvas-foundation/canvas/lib/clock"
	"github.com/canvas-foundation/canvas/lib/config"
	"github.com/canvas-foundation/canvas/lib/service"
	"github.com/canvas-foundation/canvas/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath  string
		listen      string
		socketPath  string
		uploadDir   string
		baseURL     string
		seedPath    string
		showVersion bool
	)

	flagSet := flag.NewFlagSet("canvas-sync-service", flag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config file")
	flagSet.StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	flagSet.StringVar(&socketPath, "socket", "", "admin socket path (overrides config; \"none\" disables)")
	flagSet.StringVar(&uploadDir, "upload-dir", "", "image upload directory (overrides config)")
	flagSet.StringVar(&baseURL, "base-url", "", "external URL prefix for uploads (overrides config)")
	flagSet.StringVar(&seedPath, "seed", "", "JSONC seed document installed at startup")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if showVersion {
		version.Print("canvas-sync-service")
		return nil
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if socketPath == "none" {
		cfg.SocketPath = ""
	} else if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if uploadDir != "" {
		cfg.UploadDir = uploadDir
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	syncService := NewSyncService(cfg, clock.Real(), logger)

	if seedPath != "" {
		objects, err := loadSeed(seedPath)
		if err != nil {
			return err
		}
		syncService.installSeed(objects)
	}

	httpServer := service.NewHTTPServer(service.HTTPServerConfig{
		Address: cfg.Listen,
		Handler: syncService.routes(),
		Logger:  logger,
	})

	httpDone := make(chan error, 1)
	go func() {
		httpDone <- httpServer.Serve(ctx)
	}()

	select {
	case <-httpServer.Ready():
	case err := <-httpDone:
		// Serve failed before binding (port in use, bad address).
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	var socketDone chan error
	if cfg.SocketPath != "" {
		socketServer := service.NewSocketServer(cfg.SocketPath, logger)
		syncService.registerActions(socketServer)

		socketDone = make(chan error, 1)
		go func() {
			socketDone <- socketServer.Serve(ctx)
		}()
	}

	logger.Info("canvas sync service running",
		"address", httpServer.Addr().String(),
		"socket", cfg.SocketPath,
		"upload_dir", cfg.UploadDir,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := <-httpDone; err != nil {
			logger.Error("http server error", "error", err)
		}
	case err := <-httpDone:
		// The server quit on its own; bring the admin socket down and
		// surface the cause.
		stop()
		if socketDone != nil {
			<-socketDone
		}
		if err == nil {
			err = errors.New("http server stopped unexpectedly")
		}
		return err
	}

	if socketDone != nil {
		if err := <-socketDone; err != nil {
			logger.Error("admin socket error", "error", err)
		}
	}
	return nil
}
