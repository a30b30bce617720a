package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", app.HomeHandler)
	r.Get("/ping", PingHandler)

	r.Post("/narrate", app.StartRunHandler)
	r.Get("/jobs/{id}", app.JobStatusHandler)
	r.Post("/jobs/{id}/cancel", app.CancelJobHandler)

	r.Get("/runs", app.RunsHandler)
	r.Get("/runs/{id}", app.RunDetailHandler)
	r.Get("/runs/{id}/download/{kind}", app.DownloadHandler)

	r.Post("/templates/{id}", app.EditTemplateHandler)
	r.Post("/templates/{id}/reset", app.ResetTemplateHandler)

	fileServer := http.FileServer(http.Dir("./web/static"))
	r.Handle("/static/*", http.StripPrefix("/static", fileServer))

	return r
}
