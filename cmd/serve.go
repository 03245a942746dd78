package cmd

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/emrgen/custody/internal/jobs"
	"github.com/emrgen/custody/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var metricsAddr string

	command := &cobra.Command{
		Use:   "serve",
		Short: "run the background compliance sweep and metrics endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			collectors := metrics.New(registry)

			svc := newServices(collectors)
			defer svc.close()

			runner := jobs.NewRunner([]jobs.Task{
				jobs.NewComplianceTask(svc.store, collectors, svc.cnf.ComplianceSchedule),
			})
			if err := runner.Start(); err != nil {
				return err
			}
			defer runner.Stop()

			http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			go func() {
				logrus.Infof("metrics listening on %s", metricsAddr)
				if err := http.ListenAndServe(metricsAddr, nil); err != nil {
					logrus.Errorf("metrics server stopped: %v", err)
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			logrus.Info("shutting down")
			return nil
		},
	}

	command.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "metrics listen address")

	return command
}
