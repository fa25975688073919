package api

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/dealer-portal/internal/adapter/api/handler"
	"github.com/V4T54L/dealer-portal/internal/adapter/api/middleware"
	"github.com/V4T54L/dealer-portal/internal/adapter/metrics"
	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/pkg/config"
	"github.com/V4T54L/dealer-portal/internal/store"
	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// UseCases bundles the services the API exposes.
type UseCases struct {
	Dealers   *usecase.DealerUseCase
	Search    *usecase.SearchUseCase
	Notes     *usecase.NoteUseCase
	Tasks     *usecase.TaskUseCase
	Reports   *usecase.ReportUseCase
	Routes    *usecase.RouteUseCase
	Directory *usecase.DirectoryUseCase
	Exports   *usecase.ExportUseCase
}

// NewUseCases wires every use case to the store.
func NewUseCases(s *store.Store, sink domain.ExportSink, logger *slog.Logger) UseCases {
	search := usecase.NewSearchUseCase(s)
	reports := usecase.NewReportUseCase(s)
	routes := usecase.NewRouteUseCase(s)
	return UseCases{
		Dealers:   usecase.NewDealerUseCase(s, logger),
		Search:    search,
		Notes:     usecase.NewNoteUseCase(s, logger),
		Tasks:     usecase.NewTaskUseCase(s),
		Reports:   reports,
		Routes:    routes,
		Directory: usecase.NewDirectoryUseCase(s, logger),
		Exports:   usecase.NewExportUseCase(search, reports, routes, sink, logger),
	}
}

// NewRouter creates and configures the main HTTP router for the portal.
// Note: This router uses method and path patterns available in Go 1.22+.
func NewRouter(cfg *config.Config, logger *slog.Logger, s *store.Store, uc UseCases, m *metrics.PortalMetrics) http.Handler {
	mux := http.NewServeMux()

	dealerHandler := handler.NewDealerHandler(uc.Dealers, uc.Search, logger, cfg.MaxBodyBytes)
	noteHandler := handler.NewNoteHandler(uc.Notes, uc.Tasks, logger, cfg.MaxBodyBytes)
	reportHandler := handler.NewReportHandler(uc.Reports, logger)
	routeHandler := handler.NewRouteHandler(uc.Routes, logger, cfg.MaxBodyBytes)
	directoryHandler := handler.NewDirectoryHandler(uc.Directory, logger, cfg.MaxBodyBytes)
	exportHandler := handler.NewExportHandler(uc.Exports, logger)
	adminHandler := handler.NewAdminHandler(s, logger)

	// Middleware
	resolve := func(username string) (domain.User, error) {
		return usecase.ResolveActor(s.Snapshot(), username)
	}
	authMiddleware := middleware.Auth(cfg.JWTSecret, resolve, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger, m)
	// The limiter runs first so rejected tokens are throttled as well.
	protect := func(h http.HandlerFunc) http.Handler {
		return limiter.Middleware(authMiddleware(h))
	}

	// Dealers
	mux.Handle("GET /api/dealers", protect(dealerHandler.Search))
	mux.Handle("POST /api/dealers", protect(dealerHandler.Create))
	mux.Handle("GET /api/dealers/{id}", protect(dealerHandler.Get))
	mux.Handle("PATCH /api/dealers/{id}", protect(dealerHandler.Update))
	mux.Handle("DELETE /api/dealers/{id}", protect(dealerHandler.Delete))
	mux.Handle("PUT /api/dealers/{id}/rep", protect(dealerHandler.Reassign))
	mux.Handle("PUT /api/dealers/{id}/sending-deals", protect(dealerHandler.SetSendingDeals))
	mux.Handle("GET /api/region-options", protect(dealerHandler.RegionOptions))

	// Notes and tasks
	mux.Handle("GET /api/dealers/{id}/notes", protect(noteHandler.ListNotes))
	mux.Handle("POST /api/dealers/{id}/notes", protect(noteHandler.CreateNote))
	mux.Handle("GET /api/tasks", protect(noteHandler.ListTasks))
	mux.Handle("POST /api/tasks/{id}/complete", protect(noteHandler.CompleteTask))

	// Reports and exports
	mux.Handle("GET /api/reports", protect(reportHandler.Get))
	mux.Handle("GET /api/exports/{view}", protect(exportHandler.Download))
	mux.Handle("POST /api/exports/{view}", protect(exportHandler.Publish))

	// Routes
	mux.Handle("GET /api/routes/{date}", protect(routeHandler.List))
	mux.Handle("GET /api/routes/{date}/available", protect(routeHandler.Available))
	mux.Handle("POST /api/routes/{date}/stops", protect(routeHandler.AddStop))
	mux.Handle("POST /api/routes/{date}/stops/{id}/move", protect(routeHandler.MoveStop))
	mux.Handle("DELETE /api/routes/{date}/stops/{id}", protect(routeHandler.RemoveStop))

	// Directory
	mux.Handle("GET /api/me", protect(directoryHandler.Me))
	mux.Handle("GET /api/users", protect(directoryHandler.ListUsers))
	mux.Handle("POST /api/users", protect(directoryHandler.CreateUser))
	mux.Handle("PUT /api/users/{username}", protect(directoryHandler.UpdateUser))
	mux.Handle("GET /api/regions", protect(directoryHandler.ListRegions))
	mux.Handle("POST /api/regions/{state}", protect(directoryHandler.AddRegion))
	mux.Handle("DELETE /api/regions/{state}/{name}", protect(directoryHandler.DeleteRegion))

	// Maintenance
	mux.Handle("POST /api/admin/refresh", protect(adminHandler.Refresh))
	mux.HandleFunc("GET /health", adminHandler.HealthCheck)

	return mux
}
