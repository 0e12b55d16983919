/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Generate command. Runs one batch over the selected grammar, optionally serving
Prometheus metrics while it runs, and writes the batch to the output directory.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kleascm/lang-explorer/pkg/export"
	"github.com/kleascm/lang-explorer/pkg/generator"
)

// RunGenerate executes the generate command
func RunGenerate(cmd *cobra.Command, args []string) error {
	logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.GetLogger()

	settings, err := LoadGenerateSettings()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	g, err := loadGrammar(settings.Grammar, settings.GrammarFile)
	if err != nil {
		return err
	}

	req, err := settings.Request()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.LogRunStarted(g.Name(), req.Count, req.Workers)

	gen := generator.New(g, log)
	gen.AddReporter(generator.NewLoggerReporter(log))

	if settings.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		gen.AddReporter(generator.NewPrometheusReporter(reg))

		stop := serveMetrics(settings.MetricsAddr, reg, log)
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	batch, err := gen.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	logger.LogRunFinished(batch.RunID.String(), batch.Stats.Accepted, batch.Stats.Duplicates,
		batch.Stats.Failures, batch.Stats.ProgramsPerSecond, batch.Elapsed)

	if settings.OutputDir == "" {
		for _, p := range batch.Complete() {
			if p.Program != nil {
				fmt.Fprintln(cmd.OutOrStdout(), *p.Program)
			}
		}
		return nil
	}

	dir, err := export.WriteBatch(settings.OutputDir, batch)
	if err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	if _, err := export.WriteReport(dir, batch, nil); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d programs for %s\n", batch.Stats.Accepted, batch.Grammar)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", dir)
	return nil
}

// serveMetrics exposes reg on addr/metrics until the returned stop function is called
func serveMetrics(addr string, reg *prometheus.Registry, log *logrus.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infof("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server failed: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("Metrics server shutdown: %v", err)
		}
	}
}
