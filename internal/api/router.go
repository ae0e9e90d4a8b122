package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoanghai1803/creatorpilot/internal/api/handlers"
	"github.com/hoanghai1803/creatorpilot/internal/storage"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Store     *storage.Store
	Settings  handlers.SettingsStore
	Generator handlers.Generator
	Extractor handlers.ArticleExtractor

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
}

// NewRouter creates and configures the HTTP router with all API routes, the
// metrics endpoint and a liveness probe.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS(d.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"status":"ok"}` + "\n"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API sub-router.
	r.Route("/api", func(api chi.Router) {
		api.Get("/config", handlers.GetConfig(d.Settings))
		api.Post("/config", handlers.UpdateConfig(d.Settings))
		api.Get("/config/providers", handlers.ListProviders())
		api.Get("/config/{capability}", handlers.GetCapabilityConfig(d.Settings))
		api.Post("/config/{capability}", handlers.UpdateCapabilityConfig(d.Settings))

		api.Post("/content/generate", handlers.GenerateContent(d.Generator))
		api.Post("/content/titles", handlers.GenerateTitles(d.Generator))
		api.Post("/images/generate", handlers.GenerateImage(d.Generator))
		api.Get("/trends/search", handlers.SearchTrends(d.Generator))

		api.Post("/hot/analyze", handlers.AnalyzeHot(d.Generator))
		api.Put("/hot/analyze", handlers.BatchAnalyzeHot(d.Generator))
		api.Get("/hot/content", handlers.ListHotContents(d.Store))
		api.Post("/hot/content", handlers.CreateHotContent(d.Store))
		api.Put("/hot/content", handlers.UpdateHotContent(d.Store))
		api.Delete("/hot/content", handlers.DeleteHotContent(d.Store))
		api.Post("/hot/import", handlers.ImportHotContent(d.Store, d.Extractor))
		api.Get("/hot/rank", handlers.GetHotRanks(d.Store))
		api.Post("/hot/rank", handlers.RefreshHotRanks(d.Store))

		api.Get("/accounts", handlers.GetAccounts(d.Store))
		api.Post("/accounts", handlers.CreateAccount(d.Store))
		api.Put("/accounts", handlers.UpdateAccount(d.Store))
		api.Delete("/accounts", handlers.DeleteAccount(d.Store))

		api.Get("/contents", handlers.GetContents(d.Store))
		api.Post("/contents", handlers.CreateContent(d.Store))
		api.Put("/contents", handlers.UpdateContent(d.Store))
		api.Delete("/contents", handlers.DeleteContent(d.Store))
	})

	// Unknown routes answer in the same envelope as the API.
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"not found"}` + "\n"))
	})

	return r
}
