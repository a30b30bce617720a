package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/vidvoice/vidvoice/internal/api"
	"github.com/vidvoice/vidvoice/internal/config"
	"github.com/vidvoice/vidvoice/internal/history"
	"github.com/vidvoice/vidvoice/internal/narration"
	"github.com/vidvoice/vidvoice/internal/output"
	"github.com/vidvoice/vidvoice/internal/pipeline"
	"github.com/vidvoice/vidvoice/internal/storage"
	"github.com/vidvoice/vidvoice/internal/template"
	"github.com/vidvoice/vidvoice/internal/video"
	"github.com/vidvoice/vidvoice/internal/vision"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	// .env is optional, environment variables win either way.
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

	db, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		logger.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	localStorage, err := storage.NewLocalStorage(cfg.Paths.Uploads)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

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

	app := &api.App{
		Logger:        logger,
		Templates:     template.NewManager(cfg.Paths.CustomPrompts),
		Storage:       localStorage,
		Runner:        runner,
		RunRepo:       history.NewRunRepo(db),
		DescRepo:      history.NewDescriptionRepo(db),
		Jobs:          api.NewJobTracker(),
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Interval:      cfg.Pipeline.IntervalSeconds,
	}

	router := api.NewRouter(app)

	logger.Info("server starting",
		"port", cfg.Server.Port,
		"uploads", cfg.Paths.Uploads,
		"output", cfg.Paths.Output,
		"model", cfg.OpenAI.Model)

	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
