// Package cache is the Redis read-through layer in front of the document
// repository. Cache failures are never fatal: a broken read counts as a
// miss and a broken write is logged and dropped, so the repository stays
// the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/docvault/docvault/internal/document"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
)

// Key families under the configured prefix. List windows share a common
// stem so one scan can drop them all.
const (
	documentKeyFmt = "document:%s"
	versionsKeyFmt = "document_versions:%s"
	listKeyFmt     = "documents:skip=%d:limit=%d"
	listKeyGlob    = "documents:skip=*"
)

// Redis caches documents, version histories, and list windows as JSON
// values that share one TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates the cache layer. Prefix namespaces every key and may
// be empty.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) documentKey(id uuid.UUID) string {
	return r.prefix + fmt.Sprintf(documentKeyFmt, id)
}

func (r *Redis) versionsKey(id uuid.UUID) string {
	return r.prefix + fmt.Sprintf(versionsKeyFmt, id)
}

func (r *Redis) listKey(skip, limit int) string {
	return r.prefix + fmt.Sprintf(listKeyFmt, skip, limit)
}

// GetDocument returns the cached document and whether the lookup hit.
func (r *Redis) GetDocument(ctx context.Context, id uuid.UUID) (*document.Document, bool) {
	var d document.Document
	if !r.fetch(ctx, "document", r.documentKey(id), &d) {
		return nil, false
	}
	return &d, true
}

// SetDocument stores the document, version history included, under its id.
func (r *Redis) SetDocument(ctx context.Context, d *document.Document) {
	r.store(ctx, r.documentKey(d.ID), d)
}

// InvalidateDocument drops the per-id entry.
func (r *Redis) InvalidateDocument(ctx context.Context, id uuid.UUID) {
	r.drop(ctx, r.documentKey(id))
}

// GetVersions returns the cached version history. An empty history is a
// legitimate hit, distinct from a miss.
func (r *Redis) GetVersions(ctx context.Context, id uuid.UUID) ([]document.Version, bool) {
	var vs []document.Version
	if !r.fetch(ctx, "versions", r.versionsKey(id), &vs) {
		return nil, false
	}
	return vs, true
}

// SetVersions stores the version history for one document.
func (r *Redis) SetVersions(ctx context.Context, id uuid.UUID, versions []document.Version) {
	r.store(ctx, r.versionsKey(id), versions)
}

// InvalidateVersions drops the version-history entry.
func (r *Redis) InvalidateVersions(ctx context.Context, id uuid.UUID) {
	r.drop(ctx, r.versionsKey(id))
}

// GetList returns the cached window for the exact skip/limit pair.
func (r *Redis) GetList(ctx context.Context, skip, limit int) ([]*document.Document, bool) {
	var docs []*document.Document
	if !r.fetch(ctx, "list", r.listKey(skip, limit), &docs) {
		return nil, false
	}
	return docs, true
}

// SetList stores one pagination window.
func (r *Redis) SetList(ctx context.Context, docs []*document.Document, skip, limit int) {
	r.store(ctx, r.listKey(skip, limit), docs)
}

// InvalidateLists drops every cached window, whatever its skip/limit.
// Mutations cannot tell which windows a change lands in, so they all go.
func (r *Redis) InvalidateLists(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.prefix+listKeyGlob, 100).Iterator()
	keys := []string{}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warnf("cache scan for list windows failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logger.Warnf("cache drop of %d list windows failed: %v", len(keys), err)
	}
}

func (r *Redis) fetch(ctx context.Context, namespace, key string, dest interface{}) bool {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warnf("cache read %s failed: %v", key, err)
		}
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		logger.Warnf("cache entry %s is corrupt, treating as miss: %v", key, err)
		metrics.CacheMisses.WithLabelValues(namespace).Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues(namespace).Inc()
	logger.Debugf("cache hit %s", key)
	return true
}

func (r *Redis) store(ctx context.Context, key string, val interface{}) {
	b, err := json.Marshal(val)
	if err != nil {
		logger.Warnf("cache encode for %s failed: %v", key, err)
		return
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logger.Warnf("cache write %s failed: %v", key, err)
	}
}

func (r *Redis) drop(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logger.Warnf("cache drop %s failed: %v", key, err)
	}
}
