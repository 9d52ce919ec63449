package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshua-takyi/eventful/internal/container"
	"github.com/joshua-takyi/eventful/internal/helpers"
	"github.com/joshua-takyi/eventful/internal/media/mediatest"
	"github.com/joshua-takyi/eventful/internal/models/modelstest"
	"github.com/stretchr/testify/assert"
)

func TestSetupRoutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := container.NewContainer(
		logger,
		container.Repos{Events: modelstest.NewEventRepo(), Users: modelstest.NewUserRepo()},
		&mediatest.Store{},
		helpers.NewTokens("test-secret", time.Hour),
		nil,
		false,
	)
	r := SetupRoutes(c, []string{"http://localhost:3000"})

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/health", http.StatusOK},
		{"/api/v1/events", http.StatusOK},
		{"/api/v1/events/getEventsByCategory", http.StatusOK},
		{"/api/v1/users/me", http.StatusUnauthorized},
		{"/swagger/doc.json", http.StatusOK},
		{"/categories", http.StatusOK},
		{"/events/000000000000000000000000", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestSetupRoutes_RequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := container.NewContainer(
		logger,
		container.Repos{Events: modelstest.NewEventRepo(), Users: modelstest.NewUserRepo()},
		&mediatest.Store{},
		helpers.NewTokens("test-secret", time.Hour),
		nil,
		false,
	)
	r := SetupRoutes(c, []string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
