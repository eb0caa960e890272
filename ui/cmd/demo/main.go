// Demo serves the showcase app: an editable greeting, a lazily loaded
// list of half a million rows, drag and drop squares, a movable window
// and a canvas. Open the served page in a browser; every tab runs its
// own session on the server.
//
// Usage: demo [--addr :8080] [--state state.yaml] [--debug]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/elizafairlady/go-lensui/ui/cmd/demo/app"
	"github.com/elizafairlady/go-lensui/ui/cmd/demo/server"
	"github.com/elizafairlady/go-lensui/ui/loop"
	"github.com/elizafairlady/go-lensui/ui/metrics"
)

var (
	addr        string
	statePath   string
	debug       bool
	itemCount   int
	loadDelay   time.Duration
	width       int
	height      int
	eventRate   float64
	eventBurst  int
	measureMax  int
	shutdownMax time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "demo",
	Short: "Serve the lensui showcase app",
	Long: `demo serves the lensui showcase app over HTTP.

The page at / opens a websocket to /ws, forwards clicks, input, scroll,
drag and drop and pointer moves as input lines, and shows the HTML the
server renders in reply. Prometheus metrics are served at /metrics.

The initial state can be overridden with a YAML mapping:

	user: Romeo
	showWindow: true`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          serve,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&addr, "addr", ":8080", "listen address")
	f.StringVar(&statePath, "state", "", "YAML file overriding the initial state")
	f.BoolVar(&debug, "debug", false, "log at debug level")
	f.IntVar(&itemCount, "items", 500000, "number of list items")
	f.DurationVar(&loadDelay, "load-delay", 2*time.Second, "simulated latency of the item load")
	f.IntVar(&width, "width", 1024, "viewport width before the client reports its size")
	f.IntVar(&height, "height", 768, "viewport height before the client reports its size")
	f.Float64Var(&eventRate, "rate", server.DefaultEventRate, "inputs accepted per second per connection")
	f.IntVar(&eventBurst, "burst", server.DefaultEventBurst, "input burst per connection")
	f.IntVar(&measureMax, "max-measure-passes", loop.DefaultMaxMeasurePasses, "re-renders allowed per event while measurements change")
	f.DurationVar(&shutdownMax, "shutdown-timeout", 10*time.Second, "grace period for open connections on shutdown")
}

func newLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func serve(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("demo: init logger: %w", err)
	}
	defer logger.Sync()

	initial, err := app.LoadState(statePath)
	if err != nil {
		return err
	}

	m := metrics.NewCollector("demo")
	srv := server.New(server.Config{
		Initial:          initial,
		Items:            app.LoadItems(itemCount, loadDelay),
		Width:            width,
		Height:           height,
		EventRate:        rate.Limit(eventRate),
		EventBurst:       eventBurst,
		MaxMeasurePasses: measureMax,
	}, logger, m)

	hs := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("demo: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownMax)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("demo: shutdown: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
