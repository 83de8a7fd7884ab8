package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tmori/recruitsum/internal/aggregation"
	"github.com/tmori/recruitsum/internal/config"
	"github.com/tmori/recruitsum/internal/db"
	"github.com/tmori/recruitsum/internal/grid"
	"github.com/tmori/recruitsum/internal/metrics"
	"github.com/tmori/recruitsum/internal/notify"
	"github.com/tmori/recruitsum/internal/repository"
	"github.com/tmori/recruitsum/internal/source"
)

var (
	configPath string
	verbose    bool
	dryRun     bool

	// Each command carries its own kind variable: pflag assigns defaults at
	// registration time, so a shared variable would take the last command's
	// default for all of them.
	runKind   string
	serveKind string
	runsKind  string
	runsLimit int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "recruitsum",
	Short: "Aggregates recruiting-platform exports into the shared report workbook",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one aggregation pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := aggregation.ParseKind(runKind)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		svc, cleanup, err := buildService(ctx, cfg, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := svc.Run(ctx, kind)
		if err != nil {
			return err
		}
		logger.Info("aggregation finished",
			zap.Bool("users_ok", result.UsersOK),
			zap.Bool("entryprocess_ok", result.EntryProcessOK))
		if !result.OK() {
			os.Exit(1)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run aggregations periodically and expose Prometheus metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := aggregation.ParseKind(serveKind)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		instruments := metrics.New(registry)

		svc, cleanup, err := buildService(ctx, cfg, instruments)
		if err != nil {
			return err
		}
		defer cleanup()

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		server := &http.Server{
			Addr:         cfg.Serve.Addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("metrics endpoint listening", zap.String("addr", cfg.Serve.Addr))
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()

		// Periodic aggregation loop.
		go func() {
			ticker := time.NewTicker(cfg.Serve.Interval)
			defer ticker.Stop()
			for {
				if result, runErr := svc.Run(ctx, kind); runErr != nil {
					logger.Error("aggregation run failed", zap.Error(runErr))
				} else {
					logger.Info("aggregation run finished",
						zap.Bool("users_ok", result.UsersOK),
						zap.Bool("entryprocess_ok", result.EntryProcessOK))
				}
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the run-log database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := db.RunMigrations(cfg.Database); err != nil {
			return err
		}
		logger.Info("migrations applied")
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent aggregation runs from the run log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runsKind == string(aggregation.KindBoth) {
			return fmt.Errorf("runs requires --kind users or --kind entryprocess")
		}
		kind, err := aggregation.ParseKind(runsKind)
		if err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer conn.Close()

		entries, err := repository.NewRunLogRepository(conn.Pool).ListRuns(ctx, string(kind), runsLimit)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			status := "ok"
			if !entry.OK {
				status = "FAILED: " + entry.ErrorMessage
			}
			fmt.Printf("%s  %s  %s  rows=%d matched=%d unmatched=%d dup=%d  %s\n",
				entry.StartedAt.Format(time.RFC3339), entry.Kind, entry.DateKey,
				entry.TotalRows, entry.MatchedRows, entry.UnmatchedRows,
				entry.DuplicateRows, status)
		}
		return nil
	},
}

func buildService(ctx context.Context, cfg config.Config, instruments *metrics.Metrics) (*aggregation.Service, func(), error) {
	reader := source.NewFileReader(cfg.SourceDir)

	var gridClient grid.Client
	if dryRun {
		gridClient = grid.NewMemory()
		logger.Info("dry run: writing to in-memory grid")
	} else {
		gridClient = grid.NewWorkbook(cfg.Workbook)
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.SlackWebhookURL != "" {
		notifier = notify.NewSlack(cfg.SlackWebhookURL, logger)
	}

	cleanup := func() {}
	var runLog repository.RunLogRepository
	if cfg.DatabaseEnabled {
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect run-log database: %w", err)
		}
		runLog = repository.NewRunLogRepository(conn.Pool)
		cleanup = conn.Close
	}

	settings := aggregation.Settings{
		Categories:      cfg.Categories,
		Routes:          cfg.Routes,
		OverallSection:  cfg.OverallSection,
		TotalLabel:      cfg.TotalLabel,
		ExcludedMarkers: cfg.ExcludedMarkers,
		CategoryField:   cfg.CategoryField,
		RouteField:      cfg.RouteField,
		EventFields: aggregation.EventFieldNames{
			Identity:  cfg.Event.Identity,
			Category:  cfg.Event.Category,
			EventDate: cfg.Event.EventDate,
			GroupCode: cfg.Event.GroupCode,
			GroupName: cfg.Event.GroupName,
		},
		ReportHeaderRows: 2,
		LedgerHeaderRows: 1,
	}

	svc := aggregation.NewService(settings, cfg, reader, gridClient,
		aggregation.WithLogger(logger),
		aggregation.WithNotifier(notifier),
		aggregation.WithRunLog(runLog),
		aggregation.WithMetrics(instruments),
	)
	return svc, cleanup, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().StringVar(&runKind, "kind", string(aggregation.KindBoth), "aggregation kind: users, entryprocess, or both")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan and apply writes to an in-memory grid only")
	serveCmd.Flags().StringVar(&serveKind, "kind", string(aggregation.KindBoth), "aggregation kind: users, entryprocess, or both")
	runsCmd.Flags().StringVar(&runsKind, "kind", string(aggregation.KindUsers), "aggregation kind: users or entryprocess")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs to list")

	rootCmd.AddCommand(runCmd, serveCmd, migrateCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
