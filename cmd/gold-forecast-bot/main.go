package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/config"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/history"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/metrics"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/notify"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/server/api"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/source"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/version"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/watch"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	once       = flag.Bool("once", false, "Run a single reconciliation pass, print the result and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("gold-forecast-bot version %s\n", version.Version)
		os.Exit(0)
	}

	// Load .env if present; secrets are referenced from config via env expansion
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting gold-forecast-bot", "version", version.Version)

	// Build source adapters from config
	sources, err := buildSources(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build sources", "error", err.Error())
	}
	logger.Info("Sources configured", "count", len(sources), "registered", source.List())

	reconciler := reconcile.NewReconciler(sources, reconcile.Options{
		Primary:              cfg.Reconcile.Primary,
		MismatchThresholdPct: decimal.NewFromFloat(cfg.Reconcile.MismatchThresholdPct),
		MaxQuoteAge:          cfg.Reconcile.MaxQuoteAge.ToDuration(),
		PlausibilityFactor:   decimal.NewFromFloat(cfg.Reconcile.PlausibilityFactor),
	}, logger)

	if *once {
		runOnce(reconciler)
		return
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err.Error())
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// History store
	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path, logger)
		if err != nil {
			logger.Fatal("Failed to open history store", "error", err.Error())
		}
		defer func() {
			_ = store.Close()
		}()
	}

	// Notifier
	notifier := notify.NewDiscordNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout.ToDuration(), logger)
	if !notifier.Enabled() {
		logger.Warn("Discord webhook not configured, notifications disabled")
	}

	// Read API
	var publishers []watch.Publisher
	var apiServer *api.Server
	if cfg.Server.HTTP.Enabled {
		apiServer = api.NewServer(cfg.Server.HTTP.Addr, store, logger)
		if cfg.Server.WebSocket.Enabled {
			wsServer := api.NewWebSocketServer(cfg.Server.WebSocket.Addr, logger)
			apiServer.SetWebSocketServer(wsServer)
			go func() {
				if err := wsServer.Start(ctx); err != nil {
					logger.Error("WebSocket server failed", "error", err.Error())
				}
			}()
			defer wsServer.Stop()
		}
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("HTTP server failed", "error", err.Error())
			}
		}()
		publishers = append(publishers, apiServer)
	}

	// Watcher
	watcher := watch.New(reconciler, storeOrNil(store), notifierOrNil(notifier), publishers, watch.Config{
		Interval:  cfg.Watch.Interval.ToDuration(),
		SMAPeriod: cfg.Watch.SMAPeriod,
		EMAPeriod: cfg.Watch.EMAPeriod,
		RSIPeriod: cfg.Watch.RSIPeriod,
	}, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- watcher.Run(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			logger.Error("Watcher failed", "error", err.Error())
			cancel()
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down gracefully...")
	if apiServer != nil {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err.Error())
		}
	}
	logger.Info("Shutdown complete")
}

// buildSources constructs enabled source adapters via the registry.
func buildSources(cfg *config.Config, logger *logging.Logger) ([]reconcile.Source, error) {
	enabled := cfg.EnabledSources()
	sources := make([]reconcile.Source, 0, len(enabled))
	for _, sc := range enabled {
		srcCfg := make(map[string]interface{}, len(sc.Config)+1)
		for k, v := range sc.Config {
			srcCfg[k] = v
		}
		srcCfg["logger"] = logger

		src, err := source.Create(sc.Name, srcCfg)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sc.Name, err)
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// runOnce executes a single pass and prints the result as JSON.
func runOnce(reconciler *reconcile.Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := reconciler.Run(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reconciliation failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// storeOrNil avoids a typed-nil interface when history is disabled.
func storeOrNil(store *history.Store) watch.Store {
	if store == nil {
		return nil
	}
	return store
}

// notifierOrNil avoids a typed-nil interface when the webhook is unset.
func notifierOrNil(n *notify.DiscordNotifier) watch.Notifier {
	if n == nil || !n.Enabled() {
		return nil
	}
	return n
}
