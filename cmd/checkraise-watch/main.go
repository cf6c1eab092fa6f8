package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/checkraise/checkraise/internal/server"
	"github.com/checkraise/checkraise/internal/watch"
	"github.com/gorilla/websocket"
)

var CLI struct {
	Server  string `short:"s" long:"server" default:"ws://localhost:8080/ws" help:"Server websocket URL"`
	Match   string `short:"m" long:"match" required:"" help:"Match ID to watch"`
	LogFile string `long:"log-file" help:"Debug log file path"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logger := log.New(io.Discard)
	if CLI.LogFile != "" {
		f, err := os.OpenFile(CLI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			ctx.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logger = log.New(f)
		logger.SetLevel(log.DebugLevel)
	}

	conn, _, err := websocket.DefaultDialer.Dial(CLI.Server, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", CLI.Server, err)
		ctx.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	spectate, err := server.NewMessage(server.MessageTypeSpectate, server.SpectateData{MatchID: CLI.Match})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode spectate request: %v\n", err)
		ctx.Exit(1)
	}
	if err := conn.WriteJSON(spectate); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to send spectate request: %v\n", err)
		ctx.Exit(1)
	}

	model := watch.NewModel(CLI.Match, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		for {
			var msg server.Message
			if err := conn.ReadJSON(&msg); err != nil {
				program.Send(watch.DisconnectedMsg{Err: err})
				return
			}
			decoded, err := watch.Decode(&msg)
			if err != nil {
				logger.Warn("undecodable message", "type", msg.Type, "error", err)
				continue
			}
			if decoded != nil {
				program.Send(decoded)
			}
		}
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		ctx.Exit(1)
	}
}
