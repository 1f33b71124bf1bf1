package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"askstream/internal/agent"
	"askstream/internal/config"
	"askstream/internal/handler"
	"askstream/internal/llm"
	"askstream/internal/search"
	"askstream/internal/storage"
	"askstream/pkg/logger"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	cfgFile string
	port    int
	showVer bool
)

var rootCmd = &cobra.Command{
	Use:   "askstream",
	Short: "Streaming question answering over Server-Sent Events",
	Long: `A server that answers one-shot questions over Server-Sent Events.
Each query is acknowledged, classified for freshness, optionally grounded
with a web search, and answered with inline citations, event by event.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVer {
			fmt.Printf("askstream %s (built %s)\n", Version, BuildDate)
			return
		}

		cfg := config.Load(cfgFile)

		// Override config with command line flags
		if port > 0 {
			cfg.Server.Port = port
		}

		// Initialize logger
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
			os.Exit(1)
		}
		defer logger.Sync()

		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", zap.Error(err))
			os.Exit(1)
		}

		logger.Info("starting server",
			zap.String("version", Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.String("search_mode", cfg.Search.Mode),
		)

		startServer(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "show version")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func startServer(cfg *config.Config) {
	// Persistent cache for live search responses, optional
	var cache search.Cache
	if cfg.Cache.Enabled {
		searchCache, err := storage.NewSearchCache(cfg.Cache.Path, time.Duration(cfg.Cache.TTL)*time.Minute)
		if err != nil {
			logger.Warn("search cache unavailable, continuing without it", zap.Error(err))
		} else {
			cache = searchCache
			defer searchCache.Close()
		}
	}

	// Wire the pipeline: completion client + search client -> orchestrator
	searchClient := search.NewClient(&cfg.Search, cache)
	completer := llm.NewClient(&cfg.Generation)
	orchestrator := agent.New(completer, searchClient)

	apiHandler := handler.New(cfg, orchestrator, searchClient, Version)

	limiter := handler.NewRateLimiter(cfg.HTTP.RateLimit, time.Duration(cfg.HTTP.RateWindow)*time.Minute)
	chained := handler.Chain(apiHandler,
		handler.Recovery(),
		handler.Logging(),
		handler.RateLimit(limiter, false),
	)

	corsWrapped := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Trace-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
	}).Handler(chained)

	// Create server; WriteTimeout 0 keeps long streams open
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsWrapped,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Print startup info
	fmt.Printf(`
╔═══════════════════════════════════════════════════════════╗
║                    askstream %s                         ║
╠═══════════════════════════════════════════════════════════╣
║  Server: http://%s:%d                            ║
║  Health: http://%s:%d/health                      ║
║  Ask:    POST http://%s:%d/v1/ask                  ║
║  Search: %s                                        ║
╚═══════════════════════════════════════════════════════════╝

`, Version, cfg.Server.Host, cfg.Server.Port, cfg.Server.Host, cfg.Server.Port, cfg.Server.Host, cfg.Server.Port, cfg.Search.Mode)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
