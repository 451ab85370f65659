package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deepgram/chatdesk/internal/tui"
	"github.com/deepgram/chatdesk/internal/widget"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	server       string
	transport    string
	singleFlight bool
	logFile      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Terminal chat widget for a chatdesk server",
		Long: `Opens a chat window in the terminal and talks to a chatdesk server.

Type a message and press Enter to send it. Ctrl+C or Esc quits.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "base URL of the chatdesk server")
	cmd.Flags().StringVar(&opts.transport, "transport", "http", "how to reach the server: http or ws")
	cmd.Flags().BoolVar(&opts.singleFlight, "single-flight", false, "refuse new messages while a reply is pending")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "write logs to this file (logs are discarded otherwise)")

	return cmd
}

// newBackend picks the transport named by --transport.
func newBackend(opts *options) (widget.Backend, func() error, error) {
	switch opts.transport {
	case "http":
		return widget.NewHTTPBackend(opts.server, nil), func() error { return nil }, nil
	case "ws":
		backend, err := widget.NewWebSocketBackend(opts.server)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q (want http or ws)", opts.transport)
	}
}

func run(ctx context.Context, opts *options) error {
	// the TUI owns the terminal, so logs never go to stderr
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.Setup(logOut)

	backend, closeBackend, err := newBackend(opts)
	if err != nil {
		return err
	}
	defer closeBackend()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var widgetOpts []widget.Option
	widgetOpts = append(widgetOpts, widget.WithLogger(logger.For(logger.WIDGET)))
	if opts.singleFlight {
		widgetOpts = append(widgetOpts, widget.WithSingleFlight())
	}

	model := tui.NewModel(ctx, opts.server, backend, widgetOpts...)
	log.Info().Str("server", opts.server).Str("transport", opts.transport).Msg("Widget starting")

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run widget: %w", err)
	}

	// let in-flight exchanges finish logging before the log file closes
	cancel()
	model.Controller().Wait()
	return nil
}
