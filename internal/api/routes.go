package api

import (
	"net/http"

	"github.com/JaimeStill/inspector/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	propertiesHandler := domain.Properties.Handler()
	findingsHandler := domain.Findings.Handler(runtime.MaxUploadSize)
	auditHandler := domain.Audit.Handler()

	patterns := routes.Register(
		mux,
		propertiesHandler.Routes(),
		propertiesHandler.RoomRoutes(),
		findingsHandler.Routes(),
		findingsHandler.RoomRoutes(),
		domain.Risk.Handler().Routes(),
		domain.Summaries.Handler().Routes(),
		domain.Classifications.Handler().Routes(),
		auditHandler.Routes(),
		auditHandler.HistoryRoutes(),
	)

	runtime.Logger.Debug("routes registered", "count", len(patterns))
}
