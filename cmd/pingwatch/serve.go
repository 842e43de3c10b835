package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pingwatch/pingwatch"
	"github.com/pingwatch/pingwatch/config"
	"github.com/pingwatch/pingwatch/watch"
)

const shutdownTimeout = 10 * time.Second

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd runs the prober against a configuration source.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Probe endpoints, following a live configuration source",
	Long: `Run the prober against a configuration source.

Exactly one source must be given:
  -c, --config   watch a local YAML file
      --url      poll a remote YAML document over HTTP
      --ws       receive pushed YAML documents over a websocket
      --listen   accept YAML documents POSTed to /config on this address

Whenever the source delivers a new configuration, all running probing
tasks are cancelled and replaced. The prober runs until interrupted
(Ctrl+C) or until the source fails unrecoverably.

Example:
  pingwatch serve -c pingwatch.yaml
  pingwatch serve --url https://config.example.com/prober.yaml
  pingwatch serve --ws wss://config.example.com/prober/stream
  pingwatch serve --listen :8081 --verbosity error`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to a config file to watch")
	serveCmd.Flags().String("url", "", "URL of a remote config document to poll")
	serveCmd.Flags().String("ws", "", "websocket URL pushing config documents")
	serveCmd.Flags().String("listen", "", "address to accept pushed config documents on")
	serveCmd.Flags().String("verbosity", "", "result logging: all, error, or none (default from config, else all)")
	serveCmd.Flags().Duration("timeout", 0, "per-probe HTTP timeout (default from config, else 10s)")
}

// buildSource constructs the configuration source selected by flags.
//
// For a file source the file is read exactly once here: the parsed document
// is returned so watcher-level settings can be seeded from it, and the same
// bytes seed the FileSource's initial snapshot. The returned document is nil
// for every other source kind.
func buildSource(cmd *cobra.Command, logger *slog.Logger) (pingwatch.Source, *config.Document, error) {
	configFile, _ := cmd.Flags().GetString("config")
	url, _ := cmd.Flags().GetString("url")
	ws, _ := cmd.Flags().GetString("ws")
	listen, _ := cmd.Flags().GetString("listen")

	var doc *config.Document
	var sources []pingwatch.Source
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
		doc, err = config.Parse(data)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid config: %w", err)
		}
		src := watch.NewFile(configFile)
		src.Seed = data
		src.Logger = logger
		sources = append(sources, src)
	}
	if url != "" {
		src := watch.NewHTTP(url)
		src.Logger = logger
		sources = append(sources, src)
	}
	if ws != "" {
		src := watch.NewWS(ws)
		src.Logger = logger
		sources = append(sources, src)
	}
	if listen != "" {
		src := watch.NewPush(listen)
		src.Logger = logger
		sources = append(sources, src)
	}

	if len(sources) != 1 {
		return nil, nil, fmt.Errorf("exactly one of --config, --url, --ws, --listen is required")
	}
	return sources[0], doc, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	source, doc, err := buildSource(cmd, logger)
	if err != nil {
		return err
	}

	verbosity, _ := cmd.Flags().GetString("verbosity")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	// a file source also seeds watcher-level settings from the document,
	// unless overridden by flags
	if doc != nil {
		if verbosity == "" {
			verbosity = doc.Verbosity
		}
		if timeout == 0 {
			timeout = doc.DefaultTimeout.Duration()
		}
	}

	opts := []pingwatch.Option{
		pingwatch.WithLogger(logger),
	}
	if verbosity != "" {
		v, err := pingwatch.ParseVerbosity(verbosity)
		if err != nil {
			return err
		}
		opts = append(opts, pingwatch.WithVerbosity(v))
	}
	if timeout != 0 {
		opts = append(opts, pingwatch.WithTimeout(timeout))
	}

	w, err := pingwatch.New(source, opts...)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	logger.Info("starting prober",
		"verbosity", w.Verbosity().String(),
		"probe_timeout", w.Timeout().String(),
	)

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the watcher - blocks until context cancelled or source failure
	errChan := make(chan error, 1)
	go func() {
		errChan <- w.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("prober error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("prober error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
