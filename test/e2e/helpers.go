//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/litbot/internal/api/handlers"
	"github.com/cloo-solutions/litbot/internal/api/middleware"
	"github.com/cloo-solutions/litbot/internal/backup"
	"github.com/cloo-solutions/litbot/internal/classifier"
	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/feeds"
	"github.com/cloo-solutions/litbot/internal/ingest"
	"github.com/cloo-solutions/litbot/internal/repository"
	"github.com/cloo-solutions/litbot/internal/scraper"
	"github.com/cloo-solutions/litbot/internal/server"
	"github.com/cloo-solutions/litbot/internal/service"
	"github.com/cloo-solutions/litbot/internal/storage"
	"github.com/cloo-solutions/litbot/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apiToken = "e2e-secret-token"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	S3Client     *storage.S3Client
	Backups      *backup.Service
	Feed         *FeedServer
	Channel      *RecordingPublisher
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv starts Postgres and RustFS, a fake feed and the admin API
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "litbot-backups",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		Feed:       NewFeedServer(),
		Channel:    &RecordingPublisher{},
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	env.ServerURL, env.ServerCloser = env.startServer(port)
	return env
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Feed != nil {
		e.Feed.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

// BuildBinaries builds the litbot client binary
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "litbot-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, "litbot"), "./cmd/litbot")
	cmd.Dir = "../.."
	if out, err := cmd.CombinedOutput(); err != nil {
		e.T.Fatalf("failed to build litbot: %v\n%s", err, out)
	}
}

// RunLitbot runs the litbot CLI against the test server. HOME points at a
// scratch directory so a saved login on the host is never read.
func (e *E2ETestEnv) RunLitbot(args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "litbot"), args...)
	cmd.Env = append(os.Environ(),
		"HOME="+e.BinaryDir,
		"LITBOT_CONFIG_DIR="+filepath.Join(e.BinaryDir, "config"),
		fmt.Sprintf("LITBOT_API_TOKEN=%s", apiToken),
		fmt.Sprintf("LITBOT_API_URL=%s", e.ServerURL),
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// APIResponse represents a standard API response
type APIResponse struct {
	Status int
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error,omitempty"`
}

func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, apiToken)
}

func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, apiToken)
}

func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil, apiToken)
}

// Do sends a request with an explicit token and never treats status codes as errors
func (e *E2ETestEnv) Do(method, path string, body interface{}, token string) (*APIResponse, error) {
	return e.doRequestRaw(method, path, body, token)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, token string) (*APIResponse, error) {
	resp, err := e.doRequestRaw(method, path, body, token)
	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return resp, fmt.Errorf("HTTP %d: %s", resp.Status, resp.Error)
	}
	return resp, nil
}

func (e *E2ETestEnv) doRequestRaw(method, path string, body interface{}, token string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{Status: resp.StatusCode}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return apiResp, nil
	}
	if err := json.Unmarshal(respBody, apiResp); err != nil {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return apiResp, nil
}

// FeedItem is one entry served by FeedServer
type FeedItem struct {
	Title       string
	Link        string
	Description string
	Published   time.Time
}

// FeedServer serves a mutable RSS document and the article pages it links to
type FeedServer struct {
	*httptest.Server

	mu    sync.Mutex
	items []FeedItem
}

func NewFeedServer() *FeedServer {
	fs := &FeedServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", fs.serveFeed)
	mux.HandleFunc("/articles/", fs.serveArticle)
	fs.Server = httptest.NewServer(mux)
	return fs
}

// Add appends an item whose link points at this server
func (fs *FeedServer) Add(slug, title, description string, published time.Time) FeedItem {
	item := FeedItem{
		Title:       title,
		Link:        fs.URL + "/articles/" + slug,
		Description: description,
		Published:   published,
	}
	fs.mu.Lock()
	fs.items = append(fs.items, item)
	fs.mu.Unlock()
	return item
}

func (fs *FeedServer) FeedURL() string {
	return fs.URL + "/feed.xml"
}

func (fs *FeedServer) serveFeed(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	items := append([]FeedItem(nil), fs.items...)
	fs.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>E2E Law</title>`)
	for _, it := range items {
		fmt.Fprintf(&buf, "<item><title>%s</title><link>%s</link><description>%s</description><pubDate>%s</pubDate></item>",
			it.Title, it.Link, it.Description, it.Published.UTC().Format(time.RFC1123Z))
	}
	buf.WriteString(`</channel></rss>`)

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write(buf.Bytes())
}

func (fs *FeedServer) serveArticle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><head><title>Shared Copyright Ruling</title>
<meta property="og:description" content="A court rules on copyright in model training data."></head>
<body><article><h1>Shared Copyright Ruling</h1>
<p>The court held that copyright claims over training data can proceed, a first for generative models.</p>
<p>Lawyers expect appeals and a wave of similar filings across the region in the coming months.</p>
</article></body></html>`)
}

// RecordingPublisher stands in for the Telegram channel
type RecordingPublisher struct {
	mu    sync.Mutex
	posts []string
}

func (p *RecordingPublisher) Publish(ctx context.Context, text string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, text)
	return len(p.posts), nil
}

func (p *RecordingPublisher) Posts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

// startServer wires the real repositories and sweep pipeline behind the router
func (e *E2ETestEnv) startServer(port int) (string, func()) {
	historyRepo := repository.NewHistoryRepository(e.Pool)
	keywordRepo := repository.NewKeywordRepository(e.Pool)
	chunkRepo := repository.NewChunkRepository(e.Pool)
	indexJobRepo := repository.NewIndexJobRepository(e.Pool)

	keywordSvc := service.NewKeywordService(keywordRepo)
	httpClient := &http.Client{Timeout: 10 * time.Second}
	aggregator := feeds.NewAggregator([]feeds.Source{
		feeds.NewRSSSource("E2E Law", e.Feed.FeedURL(), httpClient),
	})

	opts := ingest.DefaultOptions()
	opts.PublishDelay = 0
	orch := ingest.New(ingest.Deps{
		Fetcher:    aggregator,
		History:    historyRepo,
		Keywords:   keywordRepo,
		Classifier: classifier.New(),
		Summarizer: service.NewSummaryService(nil),
		Publisher:  e.Channel,
		IndexJobs:  indexJobRepo,
	}, opts)

	e.Backups = backup.NewService(historyRepo, keywordRepo, e.S3Client)

	router := server.NewRouter(server.RouterConfig{
		Auth:           middleware.StaticToken{Token: apiToken},
		HistoryHandler: handlers.NewHistoryHandler(historyRepo),
		KeywordHandler: handlers.NewKeywordHandler(keywordSvc),
		AskHandler:     handlers.NewAskHandler(disabledAnswerer{}),
		SweepHandler:   handlers.NewSweepHandler(orch, scraper.New(httpClient)),
		StatsHandler: handlers.NewStatsHandler(handlers.StatsConfig{
			History:   historyRepo,
			Keywords:  keywordRepo,
			Chunks:    chunkRepo,
			IndexJobs: indexJobRepo,
			Sweeps:    orch,
			Sources:   len(aggregator.Sources()),
		}),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.T.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(e.T, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

// disabledAnswerer mirrors litbotd without an OpenAI key.
type disabledAnswerer struct{}

func (disabledAnswerer) Answer(ctx context.Context, question string) (string, error) {
	return "", domain.ErrAnswersDisabled
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
