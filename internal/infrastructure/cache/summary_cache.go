// Package cache provides the Redis-backed cache for inventory summaries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"stockroom/internal/domain/rollup"
	"stockroom/internal/domain/stock"
	"stockroom/pkg/logger"
)

const (
	summaryKey = "rollup:summary"

	// DefaultTTL bounds staleness if an invalidation is ever lost.
	DefaultTTL = 5 * time.Minute
)

// Codec serializes summaries as zstd-compressed JSON. Full summaries grow
// with the catalog, so payloads are compressed before they hit Redis.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a summary codec.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Encode marshals and compresses a summary.
func (c *Codec) Encode(summary *rollup.Summary) ([]byte, error) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal summary: %w", err)
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

// Decode decompresses and unmarshals a summary.
func (c *Codec) Decode(data []byte) (*rollup.Summary, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress summary: %w", err)
	}

	var summary rollup.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}

// Compile-time checks: the cache decorates the summarizer and listens for
// stock changes.
var (
	_ rollup.Summarizer = (*CachedSummarizer)(nil)
	_ stock.Notifier    = (*CachedSummarizer)(nil)
)

// CachedSummarizer is a cache-aside decorator around a Summarizer.
// Only the unfiltered summary is cached; filtered requests pass through.
// Cache failures degrade to computing the summary directly.
type CachedSummarizer struct {
	next   rollup.Summarizer
	client *redis.Client
	codec  *Codec
	ttl    time.Duration
}

// NewCachedSummarizer creates the cache decorator.
func NewCachedSummarizer(next rollup.Summarizer, client *redis.Client, ttl time.Duration) (*CachedSummarizer, error) {
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &CachedSummarizer{
		next:   next,
		client: client,
		codec:  codec,
		ttl:    ttl,
	}, nil
}

// Summarize returns the cached summary when available, computing and storing
// it otherwise.
func (c *CachedSummarizer) Summarize(ctx context.Context, filter rollup.Filter) (*rollup.Summary, error) {
	if len(filter.ProductIDs) > 0 {
		return c.next.Summarize(ctx, filter)
	}

	if cached := c.lookup(ctx); cached != nil {
		return cached, nil
	}

	summary, err := c.next.Summarize(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.store(ctx, summary)
	return summary, nil
}

// StockChanged drops the cached summary; the next read recomputes it.
func (c *CachedSummarizer) StockChanged(ctx context.Context, event stock.ChangeEvent) error {
	if err := c.client.Del(ctx, summaryKey).Err(); err != nil {
		return fmt.Errorf("invalidate summary cache: %w", err)
	}
	return nil
}

func (c *CachedSummarizer) lookup(ctx context.Context) *rollup.Summary {
	data, err := c.client.Get(ctx, summaryKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "summary cache read failed", "error", err)
		}
		return nil
	}

	summary, err := c.codec.Decode(data)
	if err != nil {
		logger.Warn(ctx, "summary cache decode failed", "error", err)
		return nil
	}

	return summary
}

func (c *CachedSummarizer) store(ctx context.Context, summary *rollup.Summary) {
	data, err := c.codec.Encode(summary)
	if err != nil {
		logger.Warn(ctx, "summary cache encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, summaryKey, data, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "summary cache write failed", "error", err)
	}
}
