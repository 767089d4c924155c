package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/guarzo/schooladmin/common"
	"github.com/guarzo/schooladmin/common/model"
	"github.com/guarzo/schooladmin/modules/platform"
)

type WatchFlags struct {
	Interval    time.Duration
	MetricsAddr string
}

func NewWatchCommand(clientFlags *ClientFlags) *cobra.Command {
	f := &WatchFlags{Interval: 15 * time.Second}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the dashboard, serving cached data while it refreshes in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			metrics := common.NewMetricsCollector(registry)

			p, err := clientFlags.NewPlatform(cmd.Flags(), platform.WithMetrics(metrics))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if f.MetricsAddr != "" {
				srv := &http.Server{
					Addr:              f.MetricsAddr,
					Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					log.Infof("serving metrics on %s", f.MetricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.WithError(err).Error("metrics server failed")
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			query := platform.NewQuery(p.client, log.StandardLogger())
			return watchDashboard(ctx, query, p.policies.For(common.ResourceDashboard), f.Interval)
		},
	}
	cmd.Flags().DurationVar(&f.Interval, "interval", f.Interval, "How often to load the dashboard")
	cmd.Flags().StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :2112")
	return cmd
}

func watchDashboard(ctx context.Context, query *platform.Query, policy common.CachePolicy, interval time.Duration) error {
	defer query.Wait()

	cacheOpts := &platform.CacheOptions{
		TTL:       policy.TTL,
		StaleTime: policy.StaleTime,
		CacheKey:  common.ResourceDashboard,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		var dash model.Dashboard
		stale, err := query.LoadJSON(ctx, "/dashboard", &dash, nil, cacheOpts)
		if err != nil {
			if common.IsAuthError(err) {
				return err
			}
			log.WithError(err).Warn("could not load dashboard")
		} else {
			log.WithFields(log.Fields{
				"schools":     dash.TotalSchools,
				"active":      dash.ActiveSchools,
				"users":       dash.TotalUsers,
				"openTickets": dash.OpenTickets,
				"stale":       stale,
			}).Info("dashboard")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
