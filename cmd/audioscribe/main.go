package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/audioscribe/audio"
	"github.com/kbukum/audioscribe/config"
	"github.com/kbukum/audioscribe/diarization"
	"github.com/kbukum/audioscribe/diarization/pyannote"
	"github.com/kbukum/audioscribe/logger"
	"github.com/kbukum/audioscribe/observability"
	"github.com/kbukum/audioscribe/persistence"
	"github.com/kbukum/audioscribe/pipeline"
	"github.com/kbukum/audioscribe/server"
	"github.com/kbukum/audioscribe/transcription"
	"github.com/kbukum/audioscribe/transcription/whisper"
	"github.com/kbukum/audioscribe/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (searches standard locations when empty)")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("Service failed", logger.Fields(logger.FieldError, err.Error()))
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx := context.Background()

	metrics, shutdownTelemetry, err := initTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	transcriber := transcription.NewEngine(whisper.NewProviderFunc(cfg.Whisper), log)
	diarizer := diarization.NewEngine(pyannote.NewProviderFunc(cfg.Pyannote), log)
	orchestrator := pipeline.NewOrchestrator(diarizer, transcriber, metrics, log)

	normalizer := audio.NewNormalizer(cfg.Pipeline.FFmpegPath, log)
	store := persistence.NewStore(log)

	handler := server.NewHandler(server.HandlerConfig{
		ServiceName:       config.ServiceName,
		UploadDir:         cfg.Storage.UploadDir,
		ProcessedDir:      cfg.Storage.ProcessedDir,
		DefaultModel:      cfg.Pipeline.DefaultModel,
		DiarizationConfig: cfg.Pipeline.DiarizationConfig,
	}, normalizer, orchestrator, store, transcriber, diarizer, log)

	srv := server.New(cfg.Server, log)
	handler.RegisterRoutes(srv.GinEngine(), metrics, cfg.Server.FrontendDir)

	if err := srv.Start(ctx); err != nil {
		return err
	}

	log.Info("audioscribe ready", logger.Fields(
		"version", version.Short(),
		"environment", cfg.Environment,
		"default_model", cfg.Pipeline.DefaultModel,
	))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", logger.Fields("signal", sig.String()))

	return srv.Stop(ctx)
}

// initTelemetry sets up OTLP metrics and tracing when enabled. The returned
// shutdown function flushes both providers.
func initTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (*observability.Metrics, func(), error) {
	if !cfg.Observability.Enabled {
		return nil, func() {}, nil
	}

	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Observability.Insecure,
		Interval:       15 * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init meter: %w", err)
	}

	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.Endpoint,
		Insecure:       cfg.Observability.Insecure,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init tracer: %w", err)
	}

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, nil, fmt.Errorf("create metrics: %w", err)
	}

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("tracer shutdown", logger.Fields(logger.FieldError, err.Error()))
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			log.Warn("meter shutdown", logger.Fields(logger.FieldError, err.Error()))
		}
	}
	return metrics, shutdown, nil
}
