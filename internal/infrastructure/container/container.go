// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	planningapp "github.com/alchemorsel/planner/internal/application/planning"
	"github.com/alchemorsel/planner/internal/domain/shared"
	"github.com/alchemorsel/planner/internal/infrastructure/catalog"
	"github.com/alchemorsel/planner/internal/infrastructure/config"
	"github.com/alchemorsel/planner/internal/infrastructure/events"
	"github.com/alchemorsel/planner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/planner/internal/infrastructure/nutrition"
	"github.com/alchemorsel/planner/internal/optimizer"
	"github.com/alchemorsel/planner/internal/ports/inbound"
	"github.com/alchemorsel/planner/internal/ports/outbound"
	"github.com/alchemorsel/planner/internal/solver"
	"github.com/alchemorsel/planner/pkg/logger"
)

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	ProviderModule,
	SolverModule,
	ServiceModule,
	MetricsServerModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
	func(cfg *config.Config) optimizer.Config {
		return cfg.OptimizerConfig()
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(cfg.LoggerConfig())
	},
	func(log *zap.Logger) *zap.SugaredLogger {
		return log.Sugar()
	},
)

// ProviderModule provides the outbound adapters of the planning core.
var ProviderModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.DishCatalogProvider, error) {
		return catalog.LoadFromFile(cfg.Catalog.Path, log)
	},
	func() outbound.NutrientCalculator {
		return nutrition.NewCalculator()
	},
	func(log *zap.Logger) outbound.PlannerMetrics {
		return monitoring.NewPlannerMetrics(log)
	},
	func(log *zap.Logger) shared.EventDispatcher {
		return events.NewDispatcher(log)
	},
)

// SolverModule provides the ranked solver registry.
var SolverModule = fx.Provide(
	func(log *zap.Logger) (*solver.Registry, error) {
		return solver.NewRegistry(log, solver.DefaultFactories()...)
	},
)

// ServiceModule provides the planner use cases.
var ServiceModule = fx.Provide(
	func(
		dishes outbound.DishCatalogProvider,
		calculator outbound.NutrientCalculator,
		metrics outbound.PlannerMetrics,
		dispatcher shared.EventDispatcher,
		cfg optimizer.Config,
		registry *solver.Registry,
		log *zap.Logger,
	) inbound.PlannerService {
		return planningapp.NewPlannerService(dishes, calculator, metrics, dispatcher, cfg, registry, log)
	},
)

// MetricsServerModule exposes the Prometheus endpoint when enabled.
var MetricsServerModule = fx.Invoke(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) {
		if !cfg.Monitoring.EnableMetrics {
			return
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort),
			Handler: mux,
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error("metrics server failed", zap.Error(err))
					}
				}()
				log.Info("metrics server listening", zap.Int("port", cfg.Monitoring.MetricsPort))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	},
)
