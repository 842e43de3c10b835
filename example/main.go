// Command example demonstrates live reconfiguration: it starts a mock
// target server, runs a watcher against a push source, and pushes a second
// configuration after a while, replacing the whole task set.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pingwatch/pingwatch"
	"github.com/pingwatch/pingwatch/watch"
)

const pushAddr = "127.0.0.1:9998"

const firstConfig = `
verbosity: all
paths:
  - method: GET
    path: http://localhost:9999/health
    interval_minutes: 0.05
`

const secondConfig = `
verbosity: all
paths:
  - method: GET
    path: http://localhost:9999/health
    interval_minutes: 0.05
  - method: GET
    path: http://localhost:9999/flaky
    interval_minutes: 0.1
`

func main() {
	// start a mock target server (see mock_server.go)
	go StartMockTargetServer(":9999")
	time.Sleep(100 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	source := watch.NewPush(pushAddr)
	source.Logger = logger

	w, err := pingwatch.New(source,
		pingwatch.WithLogger(logger),
		pingwatch.WithTimeout(2*time.Second),
	)
	if err != nil {
		slog.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  pingwatch demo")
	fmt.Println("  • probing starts when the first config is pushed")
	fmt.Println("  • a second config arrives after 15s and replaces the task set")
	fmt.Println("  • push your own:  curl -X POST --data-binary @config.yaml http://" + pushAddr + "/config")
	fmt.Println("  • press Ctrl+C to stop")
	fmt.Println()

	// push the initial config, then a replacement a little later
	go func() {
		pushConfig(firstConfig)
		time.Sleep(15 * time.Second)
		pushConfig(secondConfig)
	}()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		slog.Error("watcher error", "error", err)
		os.Exit(1)
	}
}

// pushConfig POSTs a config document to the push source, retrying briefly
// until the listener is up.
func pushConfig(doc string) {
	url := "http://" + pushAddr + "/config"
	for i := 0; i < 20; i++ {
		resp, err := http.Post(url, "application/yaml", bytes.NewBufferString(doc))
		if err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(250 * time.Millisecond)
	}
	slog.Error("failed to push config", "url", url)
}
