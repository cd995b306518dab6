// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/samirscode/zipkin/cmd/query/app"
	"github.com/samirscode/zipkin/cmd/query/app/querysvc"
	"github.com/samirscode/zipkin/pkg/config"
	"github.com/samirscode/zipkin/pkg/healthcheck"
	"github.com/samirscode/zipkin/pkg/recoveryhandler"
	"github.com/samirscode/zipkin/storage/spanstore"
	"github.com/samirscode/zipkin/storage/spanstore/badger"
	"github.com/samirscode/zipkin/storage/spanstore/memory"
	"github.com/samirscode/zipkin/storage/ttlstore"
)

func main() {
	serverChannel := make(chan os.Signal, 1)
	signal.Notify(serverChannel, os.Interrupt, syscall.SIGTERM)

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	v := viper.New()

	command := &cobra.Command{
		Use:   "zipkin-query",
		Short: "zipkin-query is a service to store and access tracing data",
		Long:  `zipkin-query ingests spans, retains them per trace TTL, and serves trace queries over HTTP.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			queryOpts := new(app.QueryOptions).InitFromViper(v)

			hc, err := healthcheck.Serve(http.StatusServiceUnavailable, queryOpts.HealthCheckHTTPPort, logger)
			if err != nil {
				logger.Fatal("Could not start the health check server", zap.Error(err))
			}

			ttl := ttlstore.NewManager(queryOpts.DefaultTTL)
			store, closeStore, err := buildStore(queryOpts, v, ttl, logger)
			if err != nil {
				logger.Fatal("Failed to initialize span storage", zap.Error(err))
			}
			defer closeStore()

			queryService := querysvc.NewQueryService(store, ttl, querysvc.Options{Logger: logger})
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			queryService.RegisterMetrics(registry)

			apiHandler := app.NewAPIHandler(queryService,
				app.HandlerOptions.Prefix(queryOpts.Prefix),
				app.HandlerOptions.Logger(logger))
			r := app.NewRouter()
			apiHandler.RegisterRoutes(r)
			r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			recoveryHandler := recoveryhandler.NewRecoveryHandler(logger, true)

			go func() {
				logger.Info("Starting zipkin-query HTTP server", zap.Int("port", queryOpts.Port))
				if err := http.ListenAndServe(":"+strconv.Itoa(queryOpts.Port), recoveryHandler(r)); err != nil {
					logger.Fatal("Could not launch service", zap.Error(err))
				}
			}()

			hc.Ready()

			<-serverChannel
			logger.Info("zipkin-query is finishing")
			return nil
		},
	}

	config.AddFlags(
		v,
		command,
		app.AddFlags,
		badger.AddFlags,
	)

	if err := command.Execute(); err != nil {
		logger.Fatal(err.Error())
	}
}

func buildStore(
	queryOpts *app.QueryOptions,
	v *viper.Viper,
	ttl *ttlstore.Manager,
	logger *zap.Logger,
) (spanstore.Store, func(), error) {
	switch queryOpts.StorageType {
	case app.StorageTypeBadger:
		opts := new(badger.Options).InitFromViper(v)
		store, err := badger.NewStore(*opts, ttl, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case app.StorageTypeMemory:
		store := memory.NewStore(ttl, logger)
		stopPurge := startPurger(store, queryOpts.PurgeInterval, logger)
		return store, stopPurge, nil
	default:
		return nil, nil, &spanstore.QueryError{
			Msg: "unknown storage type " + queryOpts.StorageType,
			Err: spanstore.ErrInvalidArgument,
		}
	}
}

// startPurger sweeps expired traces out of the memory store so their
// memory is reclaimed. Reads already hide expired traces; the sweep
// only frees space.
func startPurger(store *memory.Store, interval time.Duration, logger *zap.Logger) func() {
	if interval <= 0 {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := store.PurgeExpired(context.Background()); n > 0 {
					logger.Info("Purged expired traces", zap.Int("count", n))
				}
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
