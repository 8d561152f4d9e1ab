package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/ingest"
	"github.com/cloo-solutions/litbot/internal/pagination"
)

type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]*domain.HistoryRecord, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryReader) Search(ctx context.Context, query string) ([]*domain.HistoryRecord, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.HistoryRecord), args.Error(1)
}

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
	args := m.Called(ctx, keyword)
	return args.Error(0)
}

type MockAnswerer struct {
	mock.Mock
}

func (m *MockAnswerer) Answer(ctx context.Context, question string) (string, error) {
	args := m.Called(ctx, question)
	return args.String(0), args.Error(1)
}

type MockPipeline struct {
	mock.Mock
}

func (m *MockPipeline) RunManual(ctx context.Context) (*domain.SweepResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepResult), args.Error(1)
}

func (m *MockPipeline) LastResult() *domain.SweepResult {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.SweepResult)
}

func (m *MockPipeline) Share(ctx context.Context, item *domain.Item, via ingest.ShareVia) (domain.Processed, error) {
	args := m.Called(ctx, item, via)
	return args.Get(0).(domain.Processed), args.Error(1)
}

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, rawURL string) (*domain.Item, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

type stubCounter int

func (c stubCounter) Count(context.Context) (int, error) { return int(c), nil }

type stubJobCounter map[domain.IndexJobStatus]int

func (c stubJobCounter) CountByStatus(context.Context) (map[domain.IndexJobStatus]int, error) {
	return c, nil
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestHistoryHandler_List(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	records := []*domain.HistoryRecord{
		{Link: "https://x/2", Title: "Two", Tags: "#AI #AILaw", Category: "AI & Law", CreatedAt: created},
		{Link: "https://x/1", Title: "One", CreatedAt: created.Add(-time.Hour)},
	}
	history := new(MockHistoryReader)
	history.On("List", mock.Anything, (*pagination.Cursor)(nil), 2).Return(records, nil)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=2", nil)
	w := httptest.NewRecorder()
	NewHistoryHandler(history).List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page pagination.PageResult[HistoryResponse]
	decodeData(t, w, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, []string{"#AI", "#AILaw"}, page.Items[0].Hashtags)
	assert.Equal(t, "2024-05-01T10:00:00Z", page.Items[0].CreatedAt)
	assert.True(t, page.HasMore)

	cursor, err := pagination.DecodeCursor(page.Cursor)
	require.NoError(t, err)
	assert.Equal(t, "https://x/1", cursor.Link)
	history.AssertExpectations(t)
}

func TestHistoryHandler_ListWithCursor(t *testing.T) {
	ts := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	history := new(MockHistoryReader)
	history.On("List", mock.Anything, &pagination.Cursor{Link: "https://x/1", CreatedAt: ts}, defaultHistoryPageSize).
		Return([]*domain.HistoryRecord{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/history?cursor="+pagination.Cursor{Link: "https://x/1", CreatedAt: ts}.Encode(), nil)
	w := httptest.NewRecorder()
	NewHistoryHandler(history).List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var page pagination.PageResult[HistoryResponse]
	decodeData(t, w, &page)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestHistoryHandler_ListBadInput(t *testing.T) {
	h := NewHistoryHandler(new(MockHistoryReader))

	for _, target := range []string{"/history?limit=0", "/history?limit=abc", "/history?cursor=not-base64!"} {
		w := httptest.NewRecorder()
		h.List(w, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestHistoryHandler_Search(t *testing.T) {
	history := new(MockHistoryReader)
	history.On("Search", mock.Anything, "gdpr").Return([]*domain.HistoryRecord{{Link: "https://x/1", Title: "GDPR fine"}}, nil)

	w := httptest.NewRecorder()
	NewHistoryHandler(history).Search(w, httptest.NewRequest(http.MethodGet, "/history/search?q=+gdpr+", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var items []HistoryResponse
	decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "GDPR fine", items[0].Title)

	w = httptest.NewRecorder()
	NewHistoryHandler(history).Search(w, httptest.NewRequest(http.MethodGet, "/history/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKeywordHandler_List(t *testing.T) {
	svc := new(MockKeywordService)
	svc.On("List", mock.Anything).Return(nil, nil)

	w := httptest.NewRecorder()
	NewKeywordHandler(svc).List(w, httptest.NewRequest(http.MethodGet, "/keywords", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestKeywordHandler_Add(t *testing.T) {
	svc := new(MockKeywordService)
	svc.On("Add", mock.Anything, "Deepfake").Return("Deepfake", nil)
	svc.On("Add", mock.Anything, "AI").Return("", domain.ErrKeywordAlreadyExists)
	h := NewKeywordHandler(svc)

	w := httptest.NewRecorder()
	h.Add(w, httptest.NewRequest(http.MethodPost, "/keywords", jsonBody(t, KeywordRequest{Keyword: "Deepfake"})))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	h.Add(w, httptest.NewRequest(http.MethodPost, "/keywords", jsonBody(t, KeywordRequest{Keyword: "AI"})))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	h.Add(w, httptest.NewRequest(http.MethodPost, "/keywords", jsonBody(t, KeywordRequest{Keyword: "  "})))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Add(w, httptest.NewRequest(http.MethodPost, "/keywords", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestKeywordHandler_Remove(t *testing.T) {
	svc := new(MockKeywordService)
	svc.On("Remove", mock.Anything, "Data Privacy").Return(nil)
	svc.On("Remove", mock.Anything, "nope").Return(domain.ErrKeywordNotFound)

	r := chi.NewRouter()
	r.Delete("/keywords/{keyword}", NewKeywordHandler(svc).Remove)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/keywords/Data%20Privacy", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/keywords/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertExpectations(t)
}

func TestAskHandler(t *testing.T) {
	answerer := new(MockAnswerer)
	answerer.On("Answer", mock.Anything, "what is PDPA?").Return("An act.", nil)
	answerer.On("Answer", mock.Anything, "boom").Return("Sorry", domain.Wrap(domain.ErrAnswerFailed, assert.AnError))
	h := NewAskHandler(answerer)

	w := httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/ask", jsonBody(t, AskRequest{Question: "what is PDPA?"})))
	require.Equal(t, http.StatusOK, w.Code)
	var resp AskResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "An act.", resp.Answer)

	w = httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/ask", jsonBody(t, AskRequest{Question: "boom"})))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = httptest.NewRecorder()
	h.Ask(w, httptest.NewRequest(http.MethodPost, "/ask", jsonBody(t, AskRequest{})))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweepHandler_Run(t *testing.T) {
	res := &domain.SweepResult{Trigger: domain.SweepTriggerManual, Fetched: 3, Published: 1}
	pipeline := new(MockPipeline)
	pipeline.On("RunManual", mock.Anything).Return(res, nil).Once()

	w := httptest.NewRecorder()
	NewSweepHandler(pipeline, nil).Run(w, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.SweepResult
	decodeData(t, w, &got)
	assert.Equal(t, 3, got.Fetched)
	assert.Equal(t, 1, got.Published)
}

func TestSweepHandler_RunFailure(t *testing.T) {
	pipeline := new(MockPipeline)
	pipeline.On("RunManual", mock.Anything).Return(nil, assert.AnError)

	w := httptest.NewRecorder()
	NewSweepHandler(pipeline, nil).Run(w, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSweepHandler_RunPartial(t *testing.T) {
	res := &domain.SweepResult{Trigger: domain.SweepTriggerManual, Fetched: 4}
	pipeline := new(MockPipeline)
	pipeline.On("RunManual", mock.Anything).Return(res, assert.AnError)

	w := httptest.NewRecorder()
	NewSweepHandler(pipeline, nil).Run(w, httptest.NewRequest(http.MethodPost, "/sweep", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body struct {
		Data  domain.SweepResult `json:"data"`
		Error string             `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Data.Fetched)
	assert.Equal(t, "internal server error", body.Error)
}

func TestSweepHandler_Last(t *testing.T) {
	pipeline := new(MockPipeline)
	pipeline.On("LastResult").Return(nil).Once()
	pipeline.On("LastResult").Return(&domain.SweepResult{Published: 2}).Once()
	h := NewSweepHandler(pipeline, nil)

	w := httptest.NewRecorder()
	h.Last(w, httptest.NewRequest(http.MethodGet, "/sweep", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.Last(w, httptest.NewRequest(http.MethodGet, "/sweep", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSweepHandler_Share(t *testing.T) {
	item := &domain.Item{Title: "Ruling", Link: "https://court.example/ruling", Source: "court.example"}
	scraper := new(MockScraper)
	scraper.On("Scrape", mock.Anything, "https://court.example/ruling").Return(item, nil)
	pipeline := new(MockPipeline)
	pipeline.On("Share", mock.Anything, item, ingest.ShareViaCommand).
		Return(domain.Processed{Category: "Data Privacy", Hashtags: []string{"#DataPrivacy"}}, nil)

	w := httptest.NewRecorder()
	NewSweepHandler(pipeline, scraper).Share(w, httptest.NewRequest(http.MethodPost, "/share",
		jsonBody(t, ShareRequest{URL: " https://court.example/ruling "})))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp ShareResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "Data Privacy", resp.Category)
	assert.Equal(t, "Ruling", resp.Title)
	scraper.AssertExpectations(t)
	pipeline.AssertExpectations(t)
}

func TestSweepHandler_ShareErrors(t *testing.T) {
	scraper := new(MockScraper)
	scraper.On("Scrape", mock.Anything, "ftp://x").Return(nil, domain.ErrInvalidLink)
	scraper.On("Scrape", mock.Anything, "https://ok.example").Return(&domain.Item{Link: "https://ok.example"}, nil)
	pipeline := new(MockPipeline)
	pipeline.On("Share", mock.Anything, mock.Anything, ingest.ShareViaCommand).
		Return(domain.Processed{}, domain.Wrap(domain.ErrPublishFailed, assert.AnError))
	h := NewSweepHandler(pipeline, scraper)

	w := httptest.NewRecorder()
	h.Share(w, httptest.NewRequest(http.MethodPost, "/share", jsonBody(t, ShareRequest{URL: "ftp://x"})))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.Share(w, httptest.NewRequest(http.MethodPost, "/share", jsonBody(t, ShareRequest{URL: "https://ok.example"})))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = httptest.NewRecorder()
	h.Share(w, httptest.NewRequest(http.MethodPost, "/share", jsonBody(t, ShareRequest{})))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsHandler(t *testing.T) {
	pipeline := new(MockPipeline)
	pipeline.On("LastResult").Return(&domain.SweepResult{Published: 4})

	h := NewStatsHandler(StatsConfig{
		History:   stubCounter(12),
		Keywords:  stubCounter(30),
		Chunks:    stubCounter(80),
		IndexJobs: stubJobCounter{domain.IndexJobStatusPending: 1, domain.IndexJobStatusFailed: 2},
		Sweeps:    pipeline,
		Sources:   14,
	})

	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	decodeData(t, w, &resp)
	assert.Equal(t, 12, resp.Articles)
	assert.Equal(t, 30, resp.Keywords)
	assert.Equal(t, 80, resp.Chunks)
	assert.Equal(t, 14, resp.Sources)
	assert.Equal(t, map[string]int{"pending": 1, "failed": 2}, resp.IndexJobs)
	require.NotNil(t, resp.LastSweep)
	assert.Equal(t, 4, resp.LastSweep.Published)
}
