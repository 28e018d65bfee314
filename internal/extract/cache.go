package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"study-byte/internal/cache"
	"study-byte/internal/domain"

	"go.uber.org/zap"
)

const cacheServiceName = "extract"

// contentCacheKey identifies a document by format and content hash.
func contentCacheKey(format Format, data []byte) string {
	sum := sha256.Sum256(data)
	return cache.GenerateCacheKey(cacheServiceName, strings.TrimPrefix(string(format), "."), hex.EncodeToString(sum[:]))
}

// extractCached serves repeated uploads from the cache. Identical concurrent
// uploads share one extraction. Cache failures only cost a re-extraction.
func (e *Extractor) extractCached(ctx context.Context, format Format, data []byte) (string, error) {
	key := contentCacheKey(format, data)

	cached, err := e.cache.Get(ctx, key)
	if err == nil {
		e.logger.Debug("Extraction cache hit", zap.String("cache_key", key))
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		e.logger.Warn("Extraction cache read failed", zap.String("cache_key", key), zap.Error(err))
	}

	v, err, shared := e.sfGroup.Do(key, func() (interface{}, error) {
		text, err := extractBytes(format, data)
		if err != nil {
			return "", err
		}
		// Detached from the request so a cancelled caller does not skip the write.
		if err := e.cache.Set(context.WithoutCancel(ctx), key, text, e.cacheTTL); err != nil {
			e.logger.Warn("Extraction cache write failed", zap.String("cache_key", key), zap.Error(err))
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		e.logger.Debug("Extraction shared with concurrent request", zap.String("cache_key", key))
	}
	return v.(string), nil
}
