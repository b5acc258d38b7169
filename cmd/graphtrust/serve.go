package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"graphtrust/internal/device"
	"graphtrust/internal/events"
	"graphtrust/internal/events/kafka"
	"graphtrust/internal/graph"
	"graphtrust/internal/model"
	modelmetrics "graphtrust/internal/model/metrics"
	"graphtrust/internal/orders"
	ordershandler "graphtrust/internal/orders/handler"
	"graphtrust/internal/platform/httpserver"
	"graphtrust/internal/platform/metrics"
	"graphtrust/internal/platform/middleware"
	"graphtrust/internal/scoring"
	"graphtrust/internal/scoring/adapters"
	scoringhandler "graphtrust/internal/scoring/handler"
	scoringmetrics "graphtrust/internal/scoring/metrics"
	"graphtrust/pkg/platform/httputil"
	"graphtrust/pkg/platform/middleware/metadata"
	"graphtrust/pkg/platform/middleware/requesttime"
	"graphtrust/pkg/platform/sentinel"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when brokers are configured, the event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	platformMetrics := metrics.New()
	modelMetrics := modelmetrics.New()
	scoringMetrics := scoringmetrics.New()

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := be.close(); err != nil {
			log.Error("closing model registry", "error", err)
		}
	}()

	trainer, err := model.NewTrainer(be.registry,
		model.WithForestConfig(forestConfig(cfg.Model)),
		model.WithTrainerLogger(log),
		model.WithTrainerMetrics(modelMetrics),
	)
	if err != nil {
		return err
	}
	predictor, err := model.NewPredictor(be.registry,
		model.WithPredictorLogger(log),
		model.WithPredictorMetrics(modelMetrics),
	)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.NewInMemoryStore(), orders.WithLogger(log))
	if err != nil {
		return err
	}

	opts := []scoring.Option{
		scoring.WithLogger(log),
		scoring.WithMetrics(scoringMetrics),
		scoring.WithPlatformMetrics(platformMetrics),
		scoring.WithThresholds(scoring.Thresholds{HighBelow: cfg.Risk.HighBelow, MediumBelow: cfg.Risk.MediumBelow}),
		scoring.WithTraining(trainer, be.registry),
		scoring.WithTrainDefaults(cfg.Model.SampleCount, cfg.Model.Seed),
		scoring.WithDeviceService(device.NewService(cfg.Server.DeviceFingerprinting)),
	}
	if cfg.Server.RequireDeliveredOrder {
		opts = append(opts, scoring.WithOrderLookup(adapters.NewOrdersAdapter(orderService)))
	}
	scoringService, err := scoring.NewService(graph.NewStore(), predictor, opts...)
	if err != nil {
		return err
	}

	if cfg.Model.TrainOnStart {
		if err := trainIfEmpty(ctx, be.registry, scoringService, log); err != nil {
			return err
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(platformMetrics))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := be.health(req.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	scoringhandler.New(scoringService, log, cfg.Server.AdminToken).Register(r)
	ordershandler.New(orderService, log).Register(r)

	if cfg.Server.AdminToken == "" {
		log.Warn("ADMIN_API_TOKEN is not set, admin endpoints will reject every request")
	}

	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled() {
		consumer, err = newEventConsumer(ctx, a, scoringService, orderService, platformMetrics)
		if err != nil {
			return err
		}
	}

	srv := httpserver.New(cfg.Server.Addr, r)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting graphtrust", "addr", cfg.Server.Addr, "model_store", cfg.Model.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if consumer != nil {
		g.Go(func() error {
			log.Info("consuming marketplace events", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group)
			return consumer.Run(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			consumer.Close()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newEventConsumer(ctx context.Context, a *app, scoringService *scoring.Service, orderService *orders.Service, m *metrics.Metrics) (*kafka.Consumer, error) {
	cfg := a.cfg.Kafka
	topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(topicCtx, cfg.Brokers, cfg.Topic, 1, 1); err != nil {
		a.logger.Warn("could not ensure kafka topic", "topic", cfg.Topic, "error", err)
	}

	dispatcher, err := events.NewDispatcher(scoringService, orderService,
		events.WithLogger(a.logger),
		events.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	return kafka.NewConsumer(cfg, dispatcher, kafka.WithLogger(a.logger))
}

func trainIfEmpty(ctx context.Context, registry model.Registry, svc *scoring.Service, log *slog.Logger) error {
	_, err := registry.Active(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("check active model: %w", err)
	}
	v, err := svc.TrainModel(ctx, scoring.TrainRequest{})
	if err != nil {
		return fmt.Errorf("initial training: %w", err)
	}
	log.Info("trained initial model", "version", v.ID)
	return nil
}
