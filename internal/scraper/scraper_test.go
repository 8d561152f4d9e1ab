package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<html><head><title>Court Rules on AI Copyright</title></head>
<body><nav>menu</nav><article><h1>Court Rules on AI Copyright</h1>
<p>A federal court ruled today that works generated entirely by artificial intelligence cannot be registered for copyright protection under current law.</p>
<p>The decision has broad implications for creators who rely on generative tools, and for the companies that build them.</p>
<p>Legal scholars expect further appeals as the question of human authorship moves through the courts.</p>
</article></body></html>`

func TestScraper_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, articleHTML)
	}))
	defer srv.Close()

	item, err := New(srv.Client()).Scrape(context.Background(), srv.URL+"/story")

	require.NoError(t, err)
	assert.Equal(t, "Court Rules on AI Copyright", item.Title)
	assert.Equal(t, srv.URL+"/story", item.Link)
	assert.Contains(t, item.Summary, "human authorship")
	assert.NotContains(t, item.Summary, "<p>")
	assert.False(t, item.Published.IsZero())
}

func TestScraper_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://x/y", "https://"} {
		_, err := New(nil).Scrape(context.Background(), raw)
		assert.ErrorIs(t, err, domain.ErrInvalidLink, raw)
	}
}

func TestScraper_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(srv.Client()).Scrape(context.Background(), srv.URL)

	assert.ErrorIs(t, err, domain.ErrExtractFailed)
	assert.ErrorContains(t, err, "status 404")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, strings.Repeat("ß", 3), truncate(strings.Repeat("ß", 10), 3))
}
