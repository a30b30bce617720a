package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vidvoice/vidvoice/internal/history"
	"github.com/vidvoice/vidvoice/internal/pipeline"
	"github.com/vidvoice/vidvoice/internal/storage"
	tmpl "github.com/vidvoice/vidvoice/internal/template"
)

type App struct {
	Logger        *slog.Logger
	Templates     *tmpl.Manager
	Storage       storage.Storage
	Runner        *pipeline.Runner
	RunRepo       *history.RunRepo
	DescRepo      *history.DescriptionRepo
	Jobs          *JobTracker
	MaxUploadSize int64
	Interval      float64
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	page, err := template.ParseFiles(filepath.Join("web", "templates", "home.html"))
	if err != nil {
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Templates []*tmpl.Template
		Interval  float64
	}{
		Templates: app.Templates.List(),
		Interval:  app.Interval,
	}

	if err := page.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

// StartRunHandler accepts the uploaded video plus run options and launches
// the pipeline on a background goroutine. It responds with the job status
// partial, which polls itself until the run finishes.
func (app *App) StartRunHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		app.renderError(w, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		app.renderError(w, "Failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") && contentType != "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".mp4" && ext != ".mov" && ext != ".mkv" && ext != ".webm" {
			app.renderError(w, "Only video files are allowed")
			return
		}
	}

	templateID := r.FormValue("template")
	selected, ok := app.Templates.Get(templateID)
	if !ok {
		app.renderError(w, "Unknown template")
		return
	}

	interval := app.Interval
	if v := r.FormValue("interval"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			app.renderError(w, "Invalid sampling interval")
			return
		}
		interval = parsed
	}

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		app.renderError(w, "Failed to save file")
		return
	}

	videoPath, err := app.Storage.FullPath(filename)
	if err != nil {
		app.renderError(w, "Failed to resolve file")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := app.Jobs.New(header.Filename, cancel)

	go func() {
		defer cancel()
		// The stored upload is only needed while ffmpeg reads it; the run's
		// artifacts live in the output directory.
		defer func() {
			if err := app.Storage.DeleteFile(filename); err != nil {
				app.Logger.Error("failed to remove uploaded video", "file", filename, "error", err)
			}
		}()

		result, err := app.Runner.Run(ctx, pipeline.Request{
			VideoPath:  videoPath,
			BaseName:   baseName(header.Filename),
			Template:   selected,
			Interval:   interval,
			OnProgress: job.SetProgress,
		})
		job.Finish(result, err, errors.Is(err, context.Canceled))
		if err != nil {
			app.Logger.Error("run failed", "job_id", job.ID, "error", err)
		}
	}()

	app.renderJobStatus(w, job.Snapshot())
}

func (app *App) JobStatusHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, ok := app.Jobs.Get(jobID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	app.renderJobStatus(w, job.Snapshot())
}

func (app *App) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, ok := app.Jobs.Get(jobID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	job.Cancel()
	app.renderJobStatus(w, job.Snapshot())
}

func (app *App) renderJobStatus(w http.ResponseWriter, view JobView) {
	page, err := template.ParseFiles(filepath.Join("web", "templates", "_job_status.html"))
	if err != nil {
		fmt.Fprintf(w, `<div class="job" id="job-%s">%s: %s</div>`,
			template.HTMLEscapeString(view.ID),
			template.HTMLEscapeString(view.Status),
			template.HTMLEscapeString(view.Message))
		return
	}
	page.Execute(w, view)
}

func (app *App) RunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := app.RunRepo.List(r.Context())
	if err != nil {
		http.Error(w, "Error loading runs", http.StatusInternalServerError)
		return
	}

	page, err := template.ParseFiles(filepath.Join("web", "templates", "runs.html"))
	if err != nil {
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Runs []history.Run
	}{Runs: runs}

	if err := page.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

func (app *App) RunDetailHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	run, err := app.RunRepo.GetByID(r.Context(), runID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	descriptions, err := app.DescRepo.ListByRunID(r.Context(), runID)
	if err != nil {
		http.Error(w, "Error loading descriptions", http.StatusInternalServerError)
		return
	}

	var narrationText string
	if run.NarrationPath != "" {
		if data, err := os.ReadFile(run.NarrationPath); err == nil {
			narrationText = string(data)
		}
	}

	page, err := template.ParseFiles(filepath.Join("web", "templates", "run.html"))
	if err != nil {
		http.Error(w, "Error loading template", http.StatusInternalServerError)
		return
	}

	data := struct {
		Run          *history.Run
		Descriptions []history.FrameDescription
		Narration    string
	}{
		Run:          run,
		Descriptions: descriptions,
		Narration:    narrationText,
	}

	if err := page.Execute(w, data); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

// DownloadHandler serves a finished run's narration or timing file.
func (app *App) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")

	run, err := app.RunRepo.GetByID(r.Context(), runID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var path string
	switch kind {
	case "narration":
		path = run.NarrationPath
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case "timing":
		path = run.TimingPath
		w.Header().Set("Content-Type", "application/json")
	default:
		http.NotFound(w, r)
		return
	}
	if path == "" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// EditTemplateHandler saves custom prompt overrides for a template.
func (app *App) EditTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		app.renderError(w, "Invalid form")
		return
	}

	err := app.Templates.SetCustomPrompts(templateID,
		r.FormValue("analysis_prompt"), r.FormValue("narration_prompt"))
	if err != nil {
		app.renderError(w, "Failed to save template")
		return
	}

	app.renderSuccess(w, "Template saved")
}

// ResetTemplateHandler discards a template's custom prompts.
func (app *App) ResetTemplateHandler(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "id")
	if err := app.Templates.Reset(templateID); err != nil {
		app.renderError(w, "Unknown template")
		return
	}
	app.renderSuccess(w, "Template reset to defaults")
}

func (app *App) renderError(w http.ResponseWriter, message string) {
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, `<div class="alert alert-error">%s</div>`, template.HTMLEscapeString(message))
}

func (app *App) renderSuccess(w http.ResponseWriter, message string) {
	fmt.Fprintf(w, `<div class="alert alert-success">%s</div>`, template.HTMLEscapeString(message))
}

func baseName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}
