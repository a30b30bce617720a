package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/vidvoice/vidvoice/internal/history"
	"github.com/vidvoice/vidvoice/internal/narration"
	"github.com/vidvoice/vidvoice/internal/output"
	"github.com/vidvoice/vidvoice/internal/template"
	"github.com/vidvoice/vidvoice/internal/timing"
	"github.com/vidvoice/vidvoice/internal/video"
	"github.com/vidvoice/vidvoice/internal/vision"
)

// Description is one frame's text paired with the frame's timestamp.
type Description struct {
	Index     int
	Timestamp float64
	Text      string
}

// FrameSource is the lazy frame sequence the extractor produces.
type FrameSource interface {
	Duration() float64
	Len() int
	Next(ctx context.Context) (*video.Frame, error)
}

// Extractor opens a video for interval sampling.
type Extractor interface {
	Open(ctx context.Context, videoPath string, interval float64) (FrameSource, error)
}

// Polisher optionally rewrites the assembled narration for TTS flow.
type Polisher interface {
	Polish(ctx context.Context, text, style string) (string, error)
}

// FFmpegSource adapts the concrete ffmpeg extractor to the Extractor
// interface.
func FFmpegSource(e *video.Extractor) Extractor {
	return ffmpegExtractor{e}
}

type ffmpegExtractor struct {
	e *video.Extractor
}

func (a ffmpegExtractor) Open(ctx context.Context, videoPath string, interval float64) (FrameSource, error) {
	seq, err := a.e.Open(ctx, videoPath, interval)
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// Request describes one narration run.
type Request struct {
	VideoPath  string
	BaseName   string // output file base; defaults to the video filename stem
	Template   *template.Template
	Interval   float64
	OnProgress ProgressFunc
}

// Result is everything a completed run produced.
type Result struct {
	Run           *history.Run
	Duration      float64
	Descriptions  []Description
	Narration     string
	Entries       []timing.Entry
	NarrationPath string
	TimingPath    string
}

// Runner drives the linear pipeline: extract frames, describe each through
// the vision client, assemble the narration, write the two output files.
// Runs are sequential and stateless; a Runner can be shared across runs.
type Runner struct {
	Extractor Extractor
	Describer vision.Describer
	Writer    *output.Writer
	Runs      *history.RunRepo         // optional, nil disables history
	Descs     *history.DescriptionRepo // optional
	Polisher  Polisher                 // optional
	BatchSize int
	Smoothing bool // collapse adjacent near-identical descriptions in the narration
	Logger    *slog.Logger
}

// Run executes the pipeline once. Cancellation through ctx takes effect
// between API calls; the in-flight call is allowed to finish. Any failure
// aborts the run before output files are written, so a failed run produces
// none.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if req.Template == nil {
		return nil, fmt.Errorf("template is required")
	}
	if req.BaseName == "" {
		req.BaseName = baseName(req.VideoPath)
	}
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	run := history.NewRun(req.BaseName, req.Template.ID, req.Interval)
	if r.Runs != nil {
		if err := r.Runs.Insert(ctx, run); err != nil {
			return nil, err
		}
	}

	result, err := r.run(ctx, req, run, batchSize, logger)
	if err != nil {
		status := history.StatusFailed
		if errors.Is(err, context.Canceled) {
			status = history.StatusCancelled
		}
		if r.Runs != nil {
			if ferr := r.Runs.Fail(context.WithoutCancel(ctx), run.ID, status, err.Error()); ferr != nil {
				logger.Error("failed to record run failure", "run_id", run.ID, "error", ferr)
			}
		}
		return nil, err
	}
	return result, nil
}

func (r *Runner) run(ctx context.Context, req Request, run *history.Run, batchSize int, logger *slog.Logger) (*Result, error) {
	report := func(p Progress) {
		if req.OnProgress != nil {
			req.OnProgress(p)
		}
	}

	report(Progress{Stage: StageExtracting, Message: "Loading video..."})

	source, err := r.Extractor.Open(ctx, req.VideoPath, req.Interval)
	if err != nil {
		return nil, err
	}

	total := source.Len()
	duration := source.Duration()
	logger.Info("video opened", "run_id", run.ID, "duration", duration, "frames", total)

	prompt := req.Template.AnalysisPrompt()
	descriptions := make([]Description, 0, total)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, done, err := nextBatch(ctx, source, batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		report(Progress{
			Stage:   StageDescribing,
			Message: fmt.Sprintf("Analyzing frame %d of %d", batch[0].Index+1, total),
			Done:    batch[0].Index,
			Total:   total,
		})

		images := make([][]byte, len(batch))
		for i, f := range batch {
			images[i] = f.JPEG
		}

		texts, err := r.Describer.Describe(ctx, prompt, images)
		if err != nil {
			return nil, err
		}

		for i, f := range batch {
			descriptions = append(descriptions, Description{
				Index:     f.Index,
				Timestamp: f.Timestamp,
				Text:      texts[i],
			})
		}

		if done {
			break
		}
	}

	if len(descriptions) != total {
		return nil, fmt.Errorf("description count %d does not match frame count %d", len(descriptions), total)
	}

	report(Progress{Stage: StageAssembling, Message: "Assembling narration...", Done: total, Total: total})

	texts := make([]string, len(descriptions))
	timestamps := make([]float64, len(descriptions))
	for i, d := range descriptions {
		texts[i] = d.Text
		timestamps[i] = d.Timestamp
	}

	narrTexts := texts
	if r.Smoothing {
		narrTexts = narration.Smooth(texts)
	}
	script := narration.Assemble(narrTexts)
	if r.Polisher != nil {
		report(Progress{Stage: StageAssembling, Message: "Polishing narration...", Done: total, Total: total})
		script, err = r.Polisher.Polish(ctx, script, req.Template.NarrationPrompt())
		if err != nil {
			return nil, err
		}
	}

	segments := make([]string, len(descriptions))
	for i, d := range descriptions {
		segments[i] = narration.Clean(d.Text)
	}
	entries, err := timing.Build(timestamps, segments, duration)
	if err != nil {
		return nil, err
	}

	report(Progress{Stage: StageWriting, Message: "Saving narration files...", Done: total, Total: total})

	narrationPath, timingPath, err := r.Writer.Write(req.BaseName, script, entries)
	if err != nil {
		return nil, err
	}

	if r.Descs != nil {
		stored := make([]history.FrameDescription, len(descriptions))
		for i, d := range descriptions {
			stored[i] = history.FrameDescription{
				FrameNumber: d.Index,
				Timestamp:   d.Timestamp,
				Description: d.Text,
			}
		}
		if err := r.Descs.InsertBatch(ctx, run.ID, stored); err != nil {
			logger.Error("failed to persist frame descriptions", "run_id", run.ID, "error", err)
		}
	}
	if r.Runs != nil {
		if err := r.Runs.Complete(ctx, run.ID, len(descriptions), narrationPath, timingPath); err != nil {
			logger.Error("failed to mark run complete", "run_id", run.ID, "error", err)
		}
	}

	run.FrameCount = len(descriptions)
	run.Status = history.StatusCompleted
	run.NarrationPath = narrationPath
	run.TimingPath = timingPath

	report(Progress{Stage: StageComplete, Message: "Narration complete", Done: total, Total: total})
	logger.Info("run complete", "run_id", run.ID, "frames", total, "narration", narrationPath)

	return &Result{
		Run:           run,
		Duration:      duration,
		Descriptions:  descriptions,
		Narration:     script,
		Entries:       entries,
		NarrationPath: narrationPath,
		TimingPath:    timingPath,
	}, nil
}

// nextBatch pulls up to n frames from the source. done reports that the
// source is exhausted.
func nextBatch(ctx context.Context, source FrameSource, n int) (batch []*video.Frame, done bool, err error) {
	for len(batch) < n {
		frame, err := source.Next(ctx)
		if err == io.EOF {
			return batch, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		batch = append(batch, frame)
	}
	return batch, false, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
