//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/testutil"
)

func newTestS3Client(ctx context.Context, t *testing.T) *S3Client {
	t.Helper()
	rc := testutil.NewRustFSContainer(ctx, t)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "litbot-backups",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	return client
}

func TestNewS3Client_RequiresBucket(t *testing.T) {
	_, err := NewS3Client(context.Background(), S3ClientConfig{Region: "us-east-1"})
	assert.ErrorContains(t, err, "bucket")
}

func TestS3Client_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newTestS3Client(ctx, t)

	require.NoError(t, client.EnsureBucket(ctx), "second call is a no-op")

	require.NoError(t, client.PutObject(ctx, "backups/b.json", "application/json", []byte(`{"n":2}`)))
	require.NoError(t, client.PutObject(ctx, "backups/a.json", "application/json", []byte(`{"n":1}`)))
	require.NoError(t, client.PutObject(ctx, "other/c.json", "application/json", []byte(`{}`)))

	keys, err := client.ListKeys(ctx, "backups/")
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/a.json", "backups/b.json"}, keys)

	data, err := client.GetObject(ctx, "backups/b.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":2}`, string(data))

	require.NoError(t, client.DeleteObject(ctx, "backups/a.json"))
	_, err = client.GetObject(ctx, "backups/a.json")
	assert.ErrorIs(t, err, domain.ErrBackupNotFound)

	keys, err = client.ListKeys(ctx, "backups/")
	require.NoError(t, err)
	assert.Equal(t, []string{"backups/b.json"}, keys)
}
