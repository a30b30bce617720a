package main

import (
	"context"
	"flag"
	"fmt"
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
)

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "Path to config file")
		videoPath  = flag.String("video", "", "Path to the video file")
		templateID = flag.String("template", "room-tour", "Narration template ID")
		interval   = flag.Float64("interval", 0, "Sampling interval in seconds (0 = config default)")
		outDir     = flag.String("out", "", "Output directory (default from config)")
		polish     = flag.Bool("polish", false, "Polish the narration with a second model pass")
		smooth     = flag.Bool("smooth", false, "Collapse adjacent near-identical frame descriptions")
	)
	flag.Parse()

	if *videoPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: narrate -video path/to/video.mp4 [-template id] [-interval seconds]")
		os.Exit(1)
	}

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
	if *interval > 0 {
		cfg.Pipeline.IntervalSeconds = *interval
	}
	if *outDir != "" {
		cfg.Paths.Output = *outDir
	}

	templates := template.NewManager(cfg.Paths.CustomPrompts)
	selected, ok := templates.Get(*templateID)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown template %q. Available templates:\n", *templateID)
		for _, t := range templates.List() {
			fmt.Fprintf(os.Stderr, "  %s - %s\n", t.ID, t.Description)
		}
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
		Smoothing: *smooth || cfg.Pipeline.Smoothing,
		Logger:    logger,
	}
	if *polish || cfg.Pipeline.Polish {
		runner.Polisher = narration.NewPolisher(client.API(), cfg.OpenAI.Model, logger)
	}

	// Ctrl+C stops the run after the in-flight API call returns.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := runner.Run(ctx, pipeline.Request{
		VideoPath: *videoPath,
		Template:  selected,
		Interval:  cfg.Pipeline.IntervalSeconds,
		OnProgress: func(p pipeline.Progress) {
			if p.Total > 0 {
				fmt.Printf("[%d/%d] %s\n", p.Done, p.Total, p.Message)
			} else {
				fmt.Println(p.Message)
			}
		},
	})
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("\nNarration: %s\nTiming:    %s\n", result.NarrationPath, result.TimingPath)
	fmt.Printf("Described %d frames over %.1f seconds of video\n", len(result.Descriptions), result.Duration)
}
