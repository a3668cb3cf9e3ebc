package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hwdash/internal/config"
	"hwdash/internal/monitor"
	"hwdash/internal/poller"
	"hwdash/internal/ui"
)

var version = "dev"

func main() {
	cmd, _ := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *viper.Viper) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "hwdash",
		Short: "Terminal dashboard for a hardware metrics backend",
		Long: `hwdash polls a metrics backend for the current CPU, memory and disk
snapshot plus anomaly flags, and draws them with live CPU and memory charts.

Examples:
  hwdash
  hwdash --api-endpoint http://node:8002/dashboard --history-endpoint http://node:8002/history
  HWDASH_REFRESH_INTERVAL=2s hwdash`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if show, _ := cmd.Flags().GetBool("version"); show {
				fmt.Fprintf(cmd.OutOrStdout(), "hwdash %s\n", version)
				return nil
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	defaults := config.Defaults()
	flags := cmd.Flags()
	flags.String("config", "", "config file (default: $HWDASH_CONFIG, then the user config dir, then ./hwdash.toml)")
	flags.String("api-endpoint", defaults.APIEndpoint, "dashboard endpoint URL")
	flags.String("history-endpoint", defaults.HistoryEndpoint, "history endpoint URL")
	flags.Duration("refresh-interval", defaults.RefreshInterval.Duration, "time between polls")
	flags.Duration("request-timeout", defaults.RequestTimeout.Duration, "per-request timeout")
	flags.String("theme", defaults.Theme, "color theme (Ocean, Sand, Day)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	flags.String("log-file", defaults.LogFile, "log file, empty to disable logging")
	flags.BoolP("version", "v", false, "print version and exit")

	// Dashes in flags become underscores in viper keys.
	for _, name := range []string{"config", "api-endpoint", "history-endpoint", "refresh-interval",
		"request-timeout", "theme", "metrics-addr", "log-file"} {
		_ = v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flags.Lookup(name))
	}
	v.SetEnvPrefix("hwdash")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd, v
}

func run(cfg config.Config) error {
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "hwdash ")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	logger := log.Default()
	logger.Printf("starting hwdash %s (config file %q)", version, cfg.Path)
	logger.Printf("polling %s and %s every %s", cfg.APIEndpoint, cfg.HistoryEndpoint, cfg.RefreshInterval.Duration)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	srv := serveMetrics(cfg.MetricsAddr, reg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := monitor.NewClient(cfg.APIEndpoint, cfg.HistoryEndpoint, cfg.RequestTimeout.Duration)

	var pl *poller.Poller
	model := ui.NewModel(ui.Options{
		Theme:   cfg.Theme,
		Refresh: func() { pl.Refresh() },
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	pl = poller.New(client, ui.NewSink(program.Send), poller.Options{
		Interval: cfg.RefreshInterval.Duration,
		Logger:   logger,
		Metrics:  poller.NewMetrics(reg),
	})

	done := make(chan struct{})
	go func() {
		pl.Start(ctx)
		close(done)
	}()

	_, err := program.Run()
	cancel()
	<-done

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("metrics server shutdown: %v", err)
		}
	}
	logger.Printf("hwdash stopped")

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// serveMetrics starts the /metrics listener, or returns nil when addr is empty.
func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server: %v", err)
		}
	}()
	logger.Printf("serving metrics on %s/metrics", addr)
	return srv
}
