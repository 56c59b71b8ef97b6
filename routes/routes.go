package routes

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Dosada05/judo-pools/handlers"
)

//go:embed openapi.json
var openAPIDoc []byte

type Handlers struct {
	Category  *handlers.CategoryHandler
	Pool      *handlers.PoolHandler
	Table     *handlers.TableHandler
	Report    *handlers.ReportHandler
	WebSocket *handlers.WebSocketHandler
	Metrics   http.Handler
}

func SetupRoutes(router *chi.Mux, h Handlers, corsOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-URL"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", h.Metrics)
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(openAPIDoc)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// the websocket connection outlives any request timeout
	router.Get("/ws/{room}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Category.ListHandler)
			r.Route("/{categoryID}", func(r chi.Router) {
				r.Post("/competitors", h.Category.RegisterCompetitorHandler)
				r.Get("/roster", h.Category.RosterHandler)
				r.Post("/roster", h.Category.UpdateRosterHandler)
				r.Get("/export", h.Report.ExportHandler)
				r.Route("/pools", func(r chi.Router) {
					r.Get("/", h.Pool.ListHandler)
					r.Post("/generate", h.Category.GeneratePoolsHandler)
					r.Get("/{poolNumber}", h.Pool.GetHandler)
					r.Put("/{poolNumber}/fixtures", h.Pool.SaveFixtureHandler)
					r.Put("/{poolNumber}/validation", h.Pool.ValidationHandler)
				})
			})
		})

		r.Route("/competitors/{competitorID}", func(r chi.Router) {
			r.Put("/", h.Category.UpdateCompetitorHandler)
			r.Delete("/", h.Category.DeleteCompetitorHandler)
			r.Put("/outside-bracket", h.Category.OutsideBracketHandler)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/", h.Table.BoardHandler)
			r.Post("/balance", h.Table.BalanceHandler)
			r.Put("/assignments", h.Table.ReassignHandler)
			r.Get("/{tableNumber}", h.Table.GetHandler)
			r.Get("/{tableNumber}/link", h.Table.LinkHandler)
		})
		r.Get("/t/{token}", h.Table.ResolveLinkHandler)

		r.Route("/config", func(r chi.Router) {
			r.Get("/", h.Table.SettingsHandler)
			r.Put("/table-count", h.Table.TableCountHandler)
			r.Put("/active-categories", h.Table.ActiveCategoriesHandler)
		})

		r.Get("/stats/clubs", h.Report.ClubStatsHandler)
	})
}
