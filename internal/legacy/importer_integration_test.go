//go:build integration

package legacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/repository"
	"github.com/cloo-solutions/litbot/internal/testutil"
)

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc)
	defer pool.Close()

	history := repository.NewHistoryRepository(pool)
	require.NoError(t, history.Add(ctx, &domain.HistoryRecord{Link: "https://x/existing", Title: "kept"}))

	ds := &Dataset{
		History: []domain.HistoryRecord{
			{Link: "https://x/existing", Title: "ignored"},
			{Link: "https://x/new", Title: "New", Category: "Data Privacy", Tags: "#DataPrivacy"},
		},
		Keywords: []string{"AI", "ai", "GDPR"},
	}

	importer := NewImporter(repository.NewTxRunner(pool))
	report, err := importer.Import(ctx, ds)

	require.NoError(t, err)
	assert.Equal(t, &Report{HistoryInserted: 1, HistorySkipped: 1, KeywordsAdded: 2, KeywordsSkipped: 1}, report)

	rec, err := history.Get(ctx, "https://x/existing")
	require.NoError(t, err)
	assert.Equal(t, "kept", rec.Title)

	again, err := importer.Import(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 0, again.HistoryInserted)
	assert.Equal(t, 0, again.KeywordsAdded)

	count, err := history.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
