package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestContentCacheKey(t *testing.T) {
	key := contentCacheKey(FormatTXT, []byte("hello"))
	assert.Equal(t, "studybyte:extract:txt:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", key)
	assert.NotEqual(t, key, contentCacheKey(FormatPDF, []byte("hello")))
}

func TestExtract_Cache(t *testing.T) {
	ctx := context.Background()
	ttl := 2 * time.Hour
	key := contentCacheKey(FormatTXT, []byte("hello"))

	t.Run("Hit", func(t *testing.T) {
		mockCache := new(MockCache)
		mockCache.On("Get", mock.Anything, key).Return("cached text", nil).Once()

		got, err := New(Options{Cache: mockCache, CacheTTL: ttl}).Extract(ctx, strings.NewReader("hello"), "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "cached text", got)
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockCache.AssertExpectations(t)
	})

	t.Run("MissStoresResult", func(t *testing.T) {
		mockCache := new(MockCache)
		mockCache.On("Get", mock.Anything, key).Return("", domain.ErrCacheMiss).Once()
		mockCache.On("Set", mock.Anything, key, "hello", ttl).Return(nil).Once()

		got, err := New(Options{Cache: mockCache, CacheTTL: ttl}).Extract(ctx, strings.NewReader("hello"), "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
		mockCache.AssertExpectations(t)
	})

	t.Run("CacheFailuresAreBypassed", func(t *testing.T) {
		mockCache := new(MockCache)
		mockCache.On("Get", mock.Anything, key).Return("", errors.New("connection refused")).Once()
		mockCache.On("Set", mock.Anything, key, "hello", ttl).Return(errors.New("connection refused")).Once()

		got, err := New(Options{Cache: mockCache, CacheTTL: ttl}).Extract(ctx, strings.NewReader("hello"), "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
		mockCache.AssertExpectations(t)
	})

	t.Run("FailedExtractionIsNotStored", func(t *testing.T) {
		mockCache := new(MockCache)
		mockCache.On("Get", mock.Anything, mock.Anything).Return("", domain.ErrCacheMiss).Once()

		_, err := New(Options{Cache: mockCache}).Extract(ctx, strings.NewReader("not a zip"), "a.docx")
		assert.True(t, domain.HasCode(err, domain.CodeExtractionFailed))
		mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
