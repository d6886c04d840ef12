package app

import (
	"github.com/gorilla/mux"

	"mouscache/internal/handlers"
	"mouscache/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers) {
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware)

	h.Register(router)
}
