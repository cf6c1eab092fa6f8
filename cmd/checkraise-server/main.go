package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/config"
	"github.com/checkraise/checkraise/internal/server"
)

var CLI struct {
	Config     string `short:"c" long:"config" default:"checkraise.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel   string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	InitConfig bool   `long:"init-config" help:"Write a starter config file to the config path and exit"`
}

func main() {
	ctx := kong.Parse(&CLI)

	if CLI.InitConfig {
		if err := config.WriteDefault(CLI.Config); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			ctx.Exit(1)
		}
		fmt.Printf("Wrote %s\n", CLI.Config)
		return
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.ServerAddress()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	srv := server.NewServer(server.Options{
		Addr:            addr,
		Logger:          logger,
		Schedule:        cfg.Schedule(),
		MinBet:          cfg.Match.MinBet,
		StartingBalance: cfg.Match.StartingBalance,
		AdvanceDelay:    cfg.AdvanceDelay(),
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig)
		srv.Stop()
	}()

	logger.Info("starting server", "addr", addr, "blind_levels", len(cfg.Blinds))
	if err := srv.Start(); err != nil {
		logger.Error("server exited", "error", err)
		ctx.Exit(1)
	}
}
