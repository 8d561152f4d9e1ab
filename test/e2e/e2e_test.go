//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/legacy"
	"github.com/cloo-solutions/litbot/internal/repository"
)

type sweepResult struct {
	Trigger    string `json:"trigger"`
	Fetched    int    `json:"fetched"`
	Duplicates int    `json:"duplicates"`
	Irrelevant int    `json:"irrelevant"`
	Published  int    `json:"published"`
	Failed     int    `json:"failed"`
}

type article struct {
	Link      string   `json:"link"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Category  string   `json:"category"`
	Hashtags  []string `json:"hashtags"`
	CreatedAt string   `json:"created_at"`
}

type historyPage struct {
	Items   []article `json:"items"`
	Cursor  string    `json:"cursor"`
	HasMore bool      `json:"has_more"`
}

type stats struct {
	Articles  int            `json:"articles"`
	Keywords  int            `json:"keywords"`
	Chunks    int            `json:"chunks"`
	Sources   int            `json:"sources"`
	IndexJobs map[string]int `json:"index_jobs"`
	LastSweep *sweepResult   `json:"last_sweep"`
}

func TestE2E_Auth(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health is public", func(t *testing.T) {
		resp, err := env.Do(http.MethodGet, "/health", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		resp, err := env.Do(http.MethodGet, "/stats", nil, "")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("wrong token is rejected", func(t *testing.T) {
		resp, err := env.Do(http.MethodGet, "/keywords", nil, "not-the-token")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
		assert.Equal(t, "invalid api token", resp.Error)
	})
}

func TestE2E_Keywords(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("add keyword", func(t *testing.T) {
		resp, err := env.Post("/keywords", map[string]string{"keyword": "  Copyright  "})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)

		var added struct {
			Keyword string `json:"keyword"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &added))
		assert.Equal(t, "Copyright", added.Keyword)
	})

	t.Run("duplicate ignoring case conflicts", func(t *testing.T) {
		resp, err := env.Do(http.MethodPost, "/keywords", map[string]string{"keyword": "copyright"}, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.Status)
	})

	t.Run("empty keyword is rejected", func(t *testing.T) {
		resp, err := env.Do(http.MethodPost, "/keywords", map[string]string{"keyword": "   "}, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("list contains keyword", func(t *testing.T) {
		resp, err := env.Get("/keywords")
		require.NoError(t, err)

		var keywords []string
		require.NoError(t, json.Unmarshal(resp.Data, &keywords))
		assert.Equal(t, []string{"Copyright"}, keywords)
	})

	t.Run("remove keyword with spaces in path", func(t *testing.T) {
		_, err := env.Post("/keywords", map[string]string{"keyword": "Data Privacy"})
		require.NoError(t, err)

		resp, err := env.Delete("/keywords/" + url.PathEscape("Data Privacy"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.Status)
	})

	t.Run("remove missing keyword is not found", func(t *testing.T) {
		resp, err := env.Do(http.MethodDelete, "/keywords/Blockchain", nil, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})
}

func TestE2E_SweepPublishesAndDedupes(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.Post("/keywords", map[string]string{"keyword": "Copyright"})
	require.NoError(t, err)

	now := time.Now()
	relevant := env.Feed.Add("ruling", "Court narrows copyright claims against model makers",
		"A federal judge trimmed the copyright suit.", now.Add(-10*time.Minute))
	env.Feed.Add("garden", "Ten tips for spring gardening", "Roses and tulips.", now.Add(-5*time.Minute))
	env.Feed.Add("stale", "Old copyright news", "Published long ago.", now.Add(-48*time.Hour))

	t.Run("no sweep has run yet", func(t *testing.T) {
		resp, err := env.Do(http.MethodGet, "/sweep", nil, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("first sweep publishes the relevant item", func(t *testing.T) {
		resp, err := env.Post("/sweep", nil)
		require.NoError(t, err)

		var res sweepResult
		require.NoError(t, json.Unmarshal(resp.Data, &res))
		assert.Equal(t, "manual", res.Trigger)
		assert.Equal(t, 2, res.Fetched)
		assert.Equal(t, 1, res.Irrelevant)
		assert.Equal(t, 1, res.Published)
		assert.Zero(t, res.Failed)

		posts := env.Channel.Posts()
		require.Len(t, posts, 1)
		assert.Contains(t, posts[0], "Court narrows copyright claims against model makers")
		assert.Contains(t, posts[0], relevant.Link)
		assert.Contains(t, posts[0], "#Copyright")
	})

	t.Run("history lists the published article", func(t *testing.T) {
		resp, err := env.Get("/history?limit=10")
		require.NoError(t, err)

		var page historyPage
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, relevant.Link, page.Items[0].Link)
		assert.Contains(t, page.Items[0].Hashtags, "#Copyright")
		assert.False(t, page.HasMore)
	})

	t.Run("history search matches title", func(t *testing.T) {
		resp, err := env.Get("/history/search?q=" + url.QueryEscape("model makers"))
		require.NoError(t, err)

		var articles []article
		require.NoError(t, json.Unmarshal(resp.Data, &articles))
		require.Len(t, articles, 1)
		assert.Equal(t, relevant.Link, articles[0].Link)
	})

	t.Run("second sweep skips the duplicate", func(t *testing.T) {
		resp, err := env.Post("/sweep", nil)
		require.NoError(t, err)

		var res sweepResult
		require.NoError(t, json.Unmarshal(resp.Data, &res))
		assert.Equal(t, 1, res.Duplicates)
		assert.Zero(t, res.Published)
		assert.Len(t, env.Channel.Posts(), 1)
	})

	t.Run("last sweep and stats reflect the runs", func(t *testing.T) {
		resp, err := env.Get("/sweep")
		require.NoError(t, err)
		var last sweepResult
		require.NoError(t, json.Unmarshal(resp.Data, &last))
		assert.Equal(t, 1, last.Duplicates)

		resp, err = env.Get("/stats")
		require.NoError(t, err)
		var s stats
		require.NoError(t, json.Unmarshal(resp.Data, &s))
		assert.Equal(t, 1, s.Articles)
		assert.Equal(t, 1, s.Keywords)
		assert.Equal(t, 1, s.Sources)
		require.NotNil(t, s.LastSweep)
		assert.Equal(t, 1, s.LastSweep.Duplicates)
	})
}

func TestE2E_ShareAndBackup(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	_, err := env.Post("/keywords", map[string]string{"keyword": "Copyright"})
	require.NoError(t, err)

	link := env.Feed.URL + "/articles/shared"

	t.Run("share publishes a scraped link", func(t *testing.T) {
		resp, err := env.Post("/share", map[string]string{"url": link})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.Status)

		var shared struct {
			Link     string   `json:"link"`
			Title    string   `json:"title"`
			Hashtags []string `json:"hashtags"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &shared))
		assert.Equal(t, link, shared.Link)
		assert.Contains(t, shared.Title, "Shared Copyright Ruling")
		assert.Contains(t, shared.Hashtags, "#Copyright")

		posts := env.Channel.Posts()
		require.Len(t, posts, 1)
		assert.Contains(t, posts[0], link)
	})

	t.Run("share rejects a non-http link", func(t *testing.T) {
		resp, err := env.Do(http.MethodPost, "/share", map[string]string{"url": "ftp://example.com/x"}, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("backup snapshot contains history and keywords", func(t *testing.T) {
		key, err := env.Backups.Run(env.Ctx)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(key, ".json"))

		snap, latestKey, err := env.Backups.Latest(env.Ctx)
		require.NoError(t, err)
		assert.Equal(t, key, latestKey)
		require.Len(t, snap.History, 1)
		assert.Equal(t, link, snap.History[0].Link)
		require.Len(t, snap.Keywords, 1)
		assert.Equal(t, "Copyright", snap.Keywords[0].Keyword)
	})

	t.Run("restore brings back deleted rows", func(t *testing.T) {
		resp, err := env.Delete("/keywords/Copyright")
		require.NoError(t, err)
		require.Equal(t, http.StatusNoContent, resp.Status)

		snap, _, err := env.Backups.Latest(env.Ctx)
		require.NoError(t, err)
		report, err := legacy.NewImporter(repository.NewTxRunner(env.Pool)).Import(env.Ctx, &legacy.Dataset{
			History:  snap.Records(),
			Keywords: snap.KeywordNames(),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, report.KeywordsAdded)
		assert.Equal(t, 1, report.HistorySkipped)

		resp, err = env.Get("/keywords")
		require.NoError(t, err)
		assert.Contains(t, string(resp.Data), "Copyright")
	})
}

func TestE2E_Ask(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("empty question is rejected", func(t *testing.T) {
		resp, err := env.Do(http.MethodPost, "/ask", map[string]string{"question": "  "}, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})

	t.Run("answers without a provider are unavailable", func(t *testing.T) {
		resp, err := env.Do(http.MethodPost, "/ask", map[string]string{"question": "What changed in copyright law?"}, apiToken)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
		assert.Contains(t, resp.Error, "answers not configured")
	})
}

func TestE2E_CLIWorkflow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.BuildBinaries()

	env.Feed.Add("privacy", "Regulator fines app over data privacy lapses",
		"The fine follows a breach.", time.Now().Add(-15*time.Minute))

	t.Run("litbot keywords add", func(t *testing.T) {
		output, err := env.RunLitbot("keywords", "add", "Data Privacy")
		require.NoError(t, err, "keywords add failed: %s", output)
	})

	t.Run("litbot keywords list", func(t *testing.T) {
		output, err := env.RunLitbot("keywords", "list", "--output")
		require.NoError(t, err, "keywords list failed: %s", output)
		assert.Contains(t, output, "Data Privacy")
	})

	t.Run("litbot sweep", func(t *testing.T) {
		output, err := env.RunLitbot("sweep", "--output")
		require.NoError(t, err, "sweep failed: %s", output)
		assert.Contains(t, output, `"published": 1`)
	})

	t.Run("litbot search", func(t *testing.T) {
		output, err := env.RunLitbot("search", "fines", "--output")
		require.NoError(t, err, "search failed: %s", output)
		assert.Contains(t, output, "Regulator fines app over data privacy lapses")
	})

	t.Run("litbot stats", func(t *testing.T) {
		output, err := env.RunLitbot("stats", "--output")
		require.NoError(t, err, "stats failed: %s", output)
		assert.Contains(t, output, `"articles": 1`)
	})

	t.Run("litbot rejects a bad token", func(t *testing.T) {
		output, err := env.RunLitbot("stats", "--api-token", "wrong")
		require.Error(t, err)
		assert.Contains(t, output, "invalid api token")
	})
}
