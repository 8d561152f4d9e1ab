package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/api/handlers"
	"github.com/cloo-solutions/litbot/internal/api/middleware"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/ingest"
	"github.com/cloo-solutions/litbot/internal/pagination"
)

const testToken = "test-token"

type MockKeywordService struct {
	mock.Mock
}

func (m *MockKeywordService) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockKeywordService) Add(ctx context.Context, keyword string) (string, error) {
	args := m.Called(ctx, keyword)
	return args.String(0), args.Error(1)
}

func (m *MockKeywordService) Remove(ctx context.Context, keyword string) error {
	return m.Called(ctx, keyword).Error(0)
}

type stubHistory struct{}

func (stubHistory) List(context.Context, *pagination.Cursor, int) ([]*domain.HistoryRecord, error) {
	return nil, nil
}

func (stubHistory) Search(context.Context, string) ([]*domain.HistoryRecord, error) {
	return nil, nil
}

func (stubHistory) Count(context.Context) (int, error) { return 0, nil }

type stubPipeline struct{}

func (stubPipeline) RunManual(context.Context) (*domain.SweepResult, error) {
	return &domain.SweepResult{Trigger: domain.SweepTriggerManual}, nil
}

func (stubPipeline) LastResult() *domain.SweepResult { return nil }

func (stubPipeline) Share(context.Context, *domain.Item, ingest.ShareVia) (domain.Processed, error) {
	return domain.Processed{}, nil
}

type stubAnswerer struct{}

func (stubAnswerer) Answer(context.Context, string) (string, error) { return "answer", nil }

func setupRouter() (http.Handler, *MockKeywordService) {
	keywords := new(MockKeywordService)
	cfg := RouterConfig{
		Auth:           middleware.StaticToken{Token: testToken},
		HistoryHandler: handlers.NewHistoryHandler(stubHistory{}),
		KeywordHandler: handlers.NewKeywordHandler(keywords),
		AskHandler:     handlers.NewAskHandler(stubAnswerer{}),
		SweepHandler:   handlers.NewSweepHandler(stubPipeline{}, nil),
		StatsHandler: handlers.NewStatsHandler(handlers.StatsConfig{
			History:  stubHistory{},
			Keywords: stubHistory{},
			Sweeps:   stubPipeline{},
		}),
	}
	return NewRouter(cfg), keywords
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_AuthenticatedRoutes_RequireAuth(t *testing.T) {
	router, keywords := setupRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/stats"},
		{http.MethodGet, "/history"},
		{http.MethodGet, "/history/search?q=ai"},
		{http.MethodGet, "/keywords"},
		{http.MethodPost, "/keywords"},
		{http.MethodDelete, "/keywords/AI"},
		{http.MethodPost, "/ask"},
		{http.MethodGet, "/sweep"},
		{http.MethodPost, "/sweep"},
		{http.MethodPost, "/share"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", "Bearer wrong")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	keywords.AssertNotCalled(t, "List", mock.Anything)
}

func TestRouter_AuthenticatedRoutes_WithValidAuth(t *testing.T) {
	router, keywords := setupRouter()
	keywords.On("List", mock.Anything).Return([]string{"AI", "GDPR"}, nil)
	keywords.On("Remove", mock.Anything, "GDPR").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["AI","GDPR"]}`, w.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/keywords/GDPR", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	keywords.AssertExpectations(t)
}

func TestRouter_SweepAndStats(t *testing.T) {
	router, _ := setupRouter()

	for _, tc := range []struct {
		method, path string
		status       int
	}{
		{http.MethodPost, "/sweep", http.StatusOK},
		{http.MethodGet, "/sweep", http.StatusNotFound},
		{http.MethodGet, "/stats", http.StatusOK},
		{http.MethodGet, "/history", http.StatusOK},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.method+" "+tc.path)
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	router, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(strings.Repeat("x", 2<<20)))
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
