package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"escrutinio/internal/middleware"
	"escrutinio/internal/poller"
)

// NewRouter builds the HTTP handler of the read API
func NewRouter(manager *poller.Manager, allowedOrigins []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	NewResultsHandler(manager, logger).Register(r)
	r.Use(middleware.Recovery(logger), middleware.Logging(logger.Named("http")))

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	return c.Handler(r)
}
