// Package main provides the planner CLI: it reads a planning request from
// JSON, runs one optimize call, and writes the resulting plan to stdout or
// a file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alchemorsel/planner/internal/domain/planning"
	"github.com/alchemorsel/planner/internal/infrastructure/container"
	"github.com/alchemorsel/planner/internal/infrastructure/progress"
	"github.com/alchemorsel/planner/internal/ports/inbound"
)

func main() {
	requestPath := flag.String("request", "", "path to the planning request JSON (required)")
	outputPath := flag.String("output", "", "path to write the plan JSON (default stdout)")
	flag.Parse()

	if *requestPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var exitCode int
	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		container.Module,
		fx.Invoke(func(service inbound.PlannerService, logger *zap.Logger, shutdowner fx.Shutdowner) {
			go func() {
				if err := run(service, logger, *requestPath, *outputPath); err != nil {
					logger.Error("plan optimization failed", zap.Error(err))
					exitCode = 1
				}
				_ = shutdowner.Shutdown()
			}()
		}),
	)
	app.Run()
	os.Exit(exitCode)
}

func run(service inbound.PlannerService, logger *zap.Logger, requestPath, outputPath string) error {
	data, err := os.ReadFile(requestPath)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var request planning.PlanningRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	plan, err := service.OptimizePlan(context.Background(), inbound.OptimizePlanCommand{
		Request:  &request,
		Progress: progress.NewLogSink(logger),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if outputPath == "" {
		fmt.Println(string(out))
		return nil
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	logger.Info("plan written", zap.String("path", outputPath))
	return nil
}
