package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kenkohealth/kenko/internal/api"
	"github.com/kenkohealth/kenko/internal/config"
	"github.com/kenkohealth/kenko/internal/metrics"
	"github.com/kenkohealth/kenko/internal/services"
	"github.com/kenkohealth/kenko/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Train on the dataset and serve predictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
		srv, err := newServer(cfg, logger)
		if err != nil {
			return err
		}
		return srv.run(cmd.Context())
	},
}

// server owns every listener of a serving process.
type server struct {
	cfg        *config.Config
	logger     *slog.Logger
	http       *api.HTTPServer
	grpc       *api.GRPCServer
	metrics    *http.Server
	metricsLis net.Listener
}

// newServer builds the bundle and only then binds listeners, so nothing is
// reachable before the model exists.
func newServer(cfg *config.Config, logger *slog.Logger) (*server, error) {
	logger.Info("starting kenko",
		slog.String("http", cfg.Server.HTTPAddress),
		slog.String("grpc", cfg.Server.GRPCAddress),
	)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	bundle, records, err := services.LoadBundle(cfg, logger)
	if err != nil {
		logger.Error("failed to build model", slog.Any("error", err))
		return nil, err
	}
	if cfg.Evaluation.OnStartup {
		if _, err := services.Evaluate(records, cfg, logger); err != nil {
			logger.Warn("startup evaluation skipped", slog.Any("error", err))
		}
	}

	predictor := services.NewPredictionService(logger, bundle)
	s := &server{cfg: cfg, logger: logger}

	s.http, err = api.NewHTTPServer(cfg.Server, api.NewRouter(logger, predictor, cfg.Server.AllowedOrigin))
	if err != nil {
		return nil, fmt.Errorf("create HTTP server: %w", err)
	}
	s.grpc, err = api.NewGRPCServer(cfg.Server, logger, predictor)
	if err != nil {
		s.http.Close()
		return nil, fmt.Errorf("create gRPC server: %w", err)
	}

	if cfg.Server.MetricsAddress != "" {
		s.metricsLis, err = net.Listen("tcp", cfg.Server.MetricsAddress)
		if err != nil {
			s.http.Close()
			s.grpc.Close()
			return nil, fmt.Errorf("listen on %s: %w", cfg.Server.MetricsAddress, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		s.metrics = &http.Server{
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
	}
	return s, nil
}

// run serves until parent is cancelled or a signal arrives, then shuts every
// listener down within the graceful timeout.
func (s *server) run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", slog.String("address", s.http.Address()))
		if err := s.http.Start(); err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		s.logger.Info("gRPC server listening", slog.String("address", s.grpc.Address()))
		if err := s.grpc.Start(); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	if s.metrics != nil {
		g.Go(func() error {
			s.logger.Info("metrics server listening", slog.String("address", s.metricsLis.Addr().String()))
			if err := s.metrics.Serve(s.metricsLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.grpc.GracefulTimeout())
		defer cancel()

		s.grpc.Shutdown(shutdownCtx)
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown", slog.Any("error", err))
		}
		if s.metrics != nil {
			if err := s.metrics.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("metrics server shutdown", slog.Any("error", err))
			}
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("kenko stopped")
	return err
}
