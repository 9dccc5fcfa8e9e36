package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/config"
	"homefix_backend/internal/handlers"
	"homefix_backend/internal/middleware"
	"homefix_backend/internal/services"
	"homefix_backend/internal/validator"
	"homefix_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouteTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	container := services.NewServiceContainer(&cfg, services.Deps{})
	tokens := auth.NewTokenManager("secret", time.Hour)

	r := gin.New()
	RegisterRoutes(r,
		handlers.NewAppHandlers(container, validator.New(), nil),
		ws.NewWebSocketHandler(ws.NewHub(0), tokens),
		middleware.AuthMiddleware(tokens),
	)

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/bookings",
		"GET /api/v1/bookings",
		"GET /api/v1/bookings/nearby-requests",
		"GET /api/v1/bookings/:id",
		"PUT /api/v1/bookings/:id/status",
		"POST /api/v1/bookings/:id/pay",
		"POST /api/v1/bookings/:id/review",
		"GET /api/v1/workers/nearby",
		"GET /api/v1/workers/search",
		"GET /api/v1/workers/:id",
		"PUT /api/v1/workers/profile",
		"PUT /api/v1/workers/location",
		"GET /api/v1/notifications",
		"GET /api/v1/notifications/unread-count",
		"PUT /api/v1/notifications/:id/read",
		"PUT /api/v1/notifications/read-all",
		"GET /api/v1/notifications/settings",
		"PUT /api/v1/notifications/settings",
		"GET /ws",
		"GET /health",
	} {
		assert.True(t, registered[want], want)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
