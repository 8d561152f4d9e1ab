package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOpenAIAPI is a mock for the OpenAI API
type MockOpenAIAPI struct {
	mock.Mock
}

func (m *MockOpenAIAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockOpenAIAPI) CreateChatCompletion(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

func vector(seed float32) []float32 {
	v := make([]float32, DefaultEmbeddingDimensions)
	for i := range v {
		v[i] = seed + float32(i)*0.001
	}
	return v
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)

	ctx := context.Background()
	text := "EU adopts AI Act"
	expected := vector(0)

	mockAPI.On("CreateEmbeddings", ctx, []string{text}).Return([][]float32{expected}, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbeddings_Batch(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)

	ctx := context.Background()
	texts := []string{"chunk one", "chunk two"}
	mockAPI.On("CreateEmbeddings", ctx, texts).Return([][]float32{vector(1), vector(2)}, nil)

	embeddings, err := client.GenerateEmbeddings(ctx, texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.Equal(t, float32(2), embeddings[1][0])
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	embedding, err := client.GenerateEmbedding(context.Background(), "")

	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)

	_, err = client.GenerateEmbeddings(context.Background(), []string{"ok", ""})
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbedding_APIError(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"Test text"}).Return(nil, errors.New("API rate limit exceeded"))

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embedding")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)

	ctx := context.Background()
	mockAPI.On("CreateEmbeddings", ctx, []string{"Test text"}).Return([][]float32{make([]float32, 512)}, nil)

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Nil(t, embedding)
	assert.Equal(t, ErrWrongDimensions, err)
}

func TestClient_Complete(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)

	ctx := context.Background()
	mockAPI.On("CreateChatCompletion", ctx, "sys", "prompt").Return("  A short summary.\n", nil)

	text, err := client.Complete(ctx, "sys", "prompt")

	require.NoError(t, err)
	assert.Equal(t, "A short summary.", text)
}

func TestClient_Complete_Failures(t *testing.T) {
	mockAPI := new(MockOpenAIAPI)
	client := newClient(mockAPI, 0)
	ctx := context.Background()

	_, err := client.Complete(ctx, "sys", " ")
	assert.Equal(t, ErrEmptyText, err)

	mockAPI.On("CreateChatCompletion", ctx, "sys", "blank").Return("   ", nil)
	_, err = client.Complete(ctx, "sys", "blank")
	assert.Equal(t, ErrEmptyCompletion, err)

	mockAPI.On("CreateChatCompletion", ctx, "sys", "down").Return("", errors.New("503"))
	_, err = client.Complete(ctx, "sys", "down")
	assert.ErrorContains(t, err, "failed to create completion")
}

func TestNewClient(t *testing.T) {
	client := NewClientWithConfig(Config{APIKey: "test-api-key", BaseURL: "http://localhost:9999/v1"})

	assert.NotNil(t, client)
	assert.NotNil(t, client.api)
	assert.Equal(t, DefaultEmbeddingDimensions, client.dimensions)
}

func TestNewClientFromEnv_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClientFromEnv()

	assert.Nil(t, client)
	assert.Equal(t, ErrNoAPIKey, err)
}

func TestNewClientFromEnv_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	client, err := NewClientFromEnv()

	assert.NotNil(t, client)
	assert.NoError(t, err)
}
