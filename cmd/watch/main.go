package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/vidvoice/vidvoice/internal/config"
	"github.com/vidvoice/vidvoice/internal/history"
	"github.com/vidvoice/vidvoice/internal/narration"
	"github.com/vidvoice/vidvoice/internal/output"
	"github.com/vidvoice/vidvoice/internal/pipeline"
	"github.com/vidvoice/vidvoice/internal/template"
	"github.com/vidvoice/vidvoice/internal/video"
	"github.com/vidvoice/vidvoice/internal/vision"
	"github.com/vidvoice/vidvoice/internal/watcher"
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		templateID = flag.String("template", "room-tour", "Narration template ID for all dropped videos")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Logging.SlogLevel(),
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(logger)

	if cfg.OpenAI.APIKey == "" {
		logger.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.Paths.Watch, 0755); err != nil {
		logger.Error("failed to create watch directory", "error", err)
		os.Exit(1)
	}

	templates := template.NewManager(cfg.Paths.CustomPrompts)
	selected, ok := templates.Get(*templateID)
	if !ok {
		logger.Error("unknown template", "template", *templateID)
		os.Exit(1)
	}

	db, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	extractor, err := video.NewExtractor(cfg.Pipeline.FrameSize, logger)
	if err != nil {
		logger.Error("failed to initialize frame extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Cleanup()

	client, err := vision.NewClient(vision.ClientConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.OpenAI.Model,
		MaxTokens:  cfg.OpenAI.MaxTokens,
		MaxRetries: cfg.OpenAI.MaxRetries,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize vision client", "error", err)
		os.Exit(1)
	}

	writer, err := output.NewWriter(cfg.Paths.Output)
	if err != nil {
		logger.Error("failed to initialize output writer", "error", err)
		os.Exit(1)
	}

	runner := &pipeline.Runner{
		Extractor: pipeline.FFmpegSource(extractor),
		Describer: client,
		Writer:    writer,
		Runs:      history.NewRunRepo(db),
		Descs:     history.NewDescriptionRepo(db),
		BatchSize: cfg.Pipeline.BatchSize,
		Smoothing: cfg.Pipeline.Smoothing,
		Logger:    logger,
	}
	if cfg.Pipeline.Polish {
		runner.Polisher = narration.NewPolisher(client.API(), cfg.OpenAI.Model, logger)
	}

	handle := func(ctx context.Context, videoPath string) error {
		_, err := runner.Run(ctx, pipeline.Request{
			VideoPath: videoPath,
			Template:  selected,
			Interval:  cfg.Pipeline.IntervalSeconds,
			OnProgress: func(p pipeline.Progress) {
				logger.Info(p.Message, "stage", p.Stage, "done", p.Done, "total", p.Total)
			},
		})
		return err
	}

	w, err := watcher.New(cfg.Paths.Watch, handle, logger)
	if err != nil {
		logger.Error("failed to create watcher", "error", err)
		os.Exit(1)
	}
	defer w.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("drop videos into the watch directory to narrate them",
		"dir", cfg.Paths.Watch, "template", selected.ID)

	if err := w.Start(ctx); err != nil && err != context.Canceled {
		logger.Error("watcher stopped", "error", err)
		os.Exit(1)
	}
}
