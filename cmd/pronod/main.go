// pronod is the pick scanner daemon.
// It builds the daily slate on a schedule and serves it over HTTP and WebSocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/moisenya/pronoai/pkg/config"
	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
	"github.com/moisenya/pronoai/pkg/logging"
	"github.com/moisenya/pronoai/pkg/metrics"
	"github.com/moisenya/pronoai/pkg/model"
	"github.com/moisenya/pronoai/pkg/rationale"
	"github.com/moisenya/pronoai/pkg/scan"
	"github.com/moisenya/pronoai/pkg/slate"
	"github.com/moisenya/pronoai/pkg/sources"
	"github.com/moisenya/pronoai/pkg/sources/espn"
	"github.com/moisenya/pronoai/pkg/sources/sofascore"
	"github.com/moisenya/pronoai/pkg/streaming"
)

var (
	// Flags
	configPath = flag.String("config", "", "Path to YAML config file")
	httpAddr   = flag.String("http", "", "HTTP server address (overrides config)")
	once       = flag.Bool("once", false, "Run a single scan, print the result as JSON and exit")
	envFile    = flag.String("env-file", ".env", "Optional dotenv file")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New("pronod", cfg.Env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := newDaemon(cfg, logger)

	if *once {
		res := d.scanner.Scan(ctx)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Fatal("encode result", zap.Error(err))
		}
		return
	}

	go d.hub.Run(ctx)

	d.scanner.OnStageComplete(func(r *scan.StageResult) {
		fields := []zap.Field{
			zap.String("stage", string(r.Stage)),
			zap.Bool("success", r.Success),
			zap.Duration("duration", r.Duration),
			zap.Any("data", r.Data),
		}
		if r.Error != "" {
			fields = append(fields, zap.String("error", r.Error))
		}
		logger.Info("stage complete", fields...)
		d.hub.BroadcastStage(string(r.Stage), r.Duration, r.Data)
	})
	d.scanner.OnResult(func(res *scan.Result) {
		d.hub.BroadcastSlate(res)
	})

	server := d.httpServer()
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	if cfg.Scan.Interval > 0 {
		if err := d.scanner.Start(ctx, cfg.Scan.Interval); err != nil {
			logger.Fatal("failed to start scanner", zap.Error(err))
		}
		logger.Info("scanner running", zap.Duration("interval", cfg.Scan.Interval))
	} else {
		go d.scanner.Scan(ctx)
		logger.Info("scan loop disabled, serving on-demand scans")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	d.scanner.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown", zap.Error(err))
	}
}

type daemon struct {
	cfg     *config.Config
	scanner *scan.Scanner
	metrics *metrics.ScanMetrics
	hub     *streaming.Hub
	logger  *zap.Logger
}

func newDaemon(cfg *config.Config, logger *zap.Logger) *daemon {
	d := &daemon{
		cfg:     cfg,
		metrics: metrics.NewScanMetrics(),
		hub:     streaming.NewHub(logger),
		logger:  logger,
	}

	srcs := []sources.Source{
		espn.NewClient(
			espn.WithBaseURL(cfg.Sources.ESPN.BaseURL),
			espn.WithRateLimit(cfg.Sources.ESPN.RateLimit, cfg.Sources.ESPN.Burst),
			espn.WithTimeout(cfg.Sources.ESPN.Timeout),
		),
		sofascore.NewClient(
			sofascore.WithBaseURL(cfg.Sources.Sofascore.BaseURL),
			sofascore.WithRateLimit(cfg.Sources.Sofascore.RateLimit, cfg.Sources.Sofascore.Burst),
			sofascore.WithTimeout(cfg.Sources.Sofascore.Timeout),
		),
	}

	var llm rationale.LLMClient
	gemini, err := rationale.NewGeminiClient(cfg.GeminiConfig())
	switch {
	case errors.Is(err, rationale.ErrDisabled):
		logger.Info("no GEMINI_API_KEY, analyses stay templated")
	case err != nil:
		logger.Warn("failed to create Gemini client", zap.Error(err))
	default:
		llm = gemini
		logger.Info("rationale generator enabled", zap.String("model", gemini.Model()))
	}

	d.scanner = scan.New(
		&scan.Config{
			Timezone:     cfg.Scan.Timezone,
			WindowBuffer: cfg.Scan.WindowBuffer,
			DayOffsets:   cfg.Scan.DayOffsets,
			FetchTimeout: cfg.Scan.FetchTimeout,
			KickoffGrace: cfg.Scan.KickoffGrace,
			Leagues:      fixtures.DefaultLeagues(),
		},
		srcs,
		scan.WithReconciler(fixtures.NewReconciler(cfg.ReconcilerConfig())),
		scan.WithModel(model.New(nil)),
		scan.WithGate(gate.New(cfg.Thresholds())),
		scan.WithBuilder(slate.NewBuilder(cfg.BuilderConfig(), nil)),
		scan.WithGenerator(rationale.NewGenerator(llm, logger)),
		scan.WithMetrics(d.metrics),
		scan.WithLogger(logger),
	)
	return d
}

func (d *daemon) httpServer() *http.Server {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Status endpoint
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := d.scanner.GetStatus()
		writeJSON(w, http.StatusOK, map[string]any{
			"scanner":    status,
			"ws_clients": d.hub.ClientCount(),
		})
	})

	// Latest slate
	mux.HandleFunc("/slate", func(w http.ResponseWriter, r *http.Request) {
		res := d.scanner.Latest()
		if res == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no scan completed yet"})
			return
		}
		writeJSON(w, http.StatusOK, res)
	})

	// On-demand scan
	mux.HandleFunc("/scan", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "use POST"})
			return
		}
		writeJSON(w, http.StatusOK, d.scanner.Scan(r.Context()))
	})

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.HandlerFor(d.metrics.Registry(), promhttp.HandlerOpts{}))

	// WebSocket streaming endpoint
	mux.HandleFunc("/ws", d.hub.ServeWS)

	return &http.Server{
		Addr:         d.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // on-demand scans fan out to every source
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
