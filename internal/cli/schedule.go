package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"index-cleaner/internal/app"
	"index-cleaner/internal/metrics"
)

type scheduleOptions struct {
	cleanOptions
	Schedule    string
	MetricsAddr string
	RunNow      bool
}

func newScheduleCommand() *cobra.Command {
	opts := scheduleOptions{}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the retention cleanup on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd.Context(), cmd, opts)
		},
	}
	bindPolicyFlags(cmd, &opts.cleanOptions)
	cmd.Flags().StringVar(&opts.Schedule, "schedule", app.DefaultSchedule, "Cron expression for cleanup runs")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", ":9102", "Address for the Prometheus metrics endpoint (empty disables)")
	cmd.Flags().BoolVar(&opts.RunNow, "run-now", false, "Run once immediately before waiting for the schedule")

	_ = viper.BindPFlag("schedule", cmd.Flags().Lookup("schedule"))
	_ = viper.BindPFlag("metrics_addr", cmd.Flags().Lookup("metrics-addr"))
	_ = viper.BindPFlag("run_now", cmd.Flags().Lookup("run-now"))
	return cmd
}

func runSchedule(ctx context.Context, cmd *cobra.Command, opts scheduleOptions) error {
	request, err := buildCleanRequest(ctx, cmd, opts.cleanOptions)
	if err != nil {
		return err
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	service := newAppService()
	service.Metrics = metrics.New(registry)

	scheduler := app.NewScheduler(service, request, resolveString(cmd, opts.Schedule, "schedule", "schedule"))
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	if addr := resolveString(cmd, opts.MetricsAddr, "metrics_addr", "metrics-addr"); addr != "" {
		server := newMetricsServer(addr, registry)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
			}
		}()
		defer shutdownMetricsServer(server)
		log.Info().Str("addr", addr).Msg("metrics endpoint listening")
	}

	if resolveBool(cmd, opts.RunNow, "run_now", "run-now") {
		scheduler.RunOnce(ctx)
	}
	if next := scheduler.NextRun(); next != nil {
		log.Info().Time("next_run", *next).Msg("waiting for next scheduled run")
	}

	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("scheduler stopped unexpectedly").
		WithCause(ctx.Err())
}

func newMetricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdownMetricsServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}
