package cache

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/internal/document"
)

func newTestCache(t *testing.T) (*Redis, *mr.Miniredis) {
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedis(client, "test:", 5*time.Minute), m
}

func sampleDoc() *document.Document {
	doc := document.New(document.CreateInput{
		Title:   "cached",
		Content: "v1",
		Author:  "alice",
		Tags:    []string{"infra"},
	}, time.Now())
	c2 := "v2"
	return document.Revise(doc, document.UpdateInput{Content: &c2}, time.Now().Add(time.Second))
}

func TestDocumentRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	_, ok := c.GetDocument(ctx, doc.ID)
	require.False(t, ok, "cold cache misses")

	c.SetDocument(ctx, doc)
	got, ok := c.GetDocument(ctx, doc.ID)
	require.True(t, ok)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "v2", got.Content)
	require.Len(t, got.Versions, 1, "version history rides along with the document")
	assert.Equal(t, "v1", got.Versions[0].Content)

	c.InvalidateDocument(ctx, doc.ID)
	_, ok = c.GetDocument(ctx, doc.ID)
	assert.False(t, ok)
}

func TestVersionsRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	c.SetVersions(ctx, doc.ID, doc.Versions)
	got, ok := c.GetVersions(ctx, doc.ID)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, doc.Versions[0].VersionID, got[0].VersionID)

	c.InvalidateVersions(ctx, doc.ID)
	_, ok = c.GetVersions(ctx, doc.ID)
	assert.False(t, ok)
}

func TestEmptyVersionsIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	doc := document.New(document.CreateInput{Title: "t", Content: "c", Author: "bob"}, time.Now())

	c.SetVersions(ctx, doc.ID, doc.Versions)
	got, ok := c.GetVersions(ctx, doc.ID)
	require.True(t, ok, "an empty history is a hit, not a miss")
	assert.Empty(t, got)
}

func TestListWindowsInvalidateTogether(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	c.SetList(ctx, []*document.Document{doc}, 0, 10)
	c.SetList(ctx, []*document.Document{}, 10, 10)
	c.SetDocument(ctx, doc)

	win, ok := c.GetList(ctx, 0, 10)
	require.True(t, ok)
	require.Len(t, win, 1)
	assert.Equal(t, doc.ID, win[0].ID)

	empty, ok := c.GetList(ctx, 10, 10)
	require.True(t, ok, "an empty window is still a hit")
	assert.Empty(t, empty)

	_, ok = c.GetList(ctx, 20, 10)
	assert.False(t, ok, "windows are keyed by exact skip and limit")

	c.InvalidateLists(ctx)
	_, ok = c.GetList(ctx, 0, 10)
	assert.False(t, ok)
	_, ok = c.GetList(ctx, 10, 10)
	assert.False(t, ok)

	// per-document entries survive a list invalidation
	_, ok = c.GetDocument(ctx, doc.ID)
	assert.True(t, ok)
}

func TestEntriesExpireWithTTL(t *testing.T) {
	c, m := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	c.SetDocument(ctx, doc)
	_, ok := c.GetDocument(ctx, doc.ID)
	require.True(t, ok)

	m.FastForward(6 * time.Minute)

	_, ok = c.GetDocument(ctx, doc.ID)
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, m := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	require.NoError(t, m.Set("test:document:"+doc.ID.String(), "{not json"))
	_, ok := c.GetDocument(ctx, doc.ID)
	assert.False(t, ok)
}

func TestUnreachableRedisDegrades(t *testing.T) {
	c, m := newTestCache(t)
	ctx := context.Background()
	doc := sampleDoc()

	m.Close()

	// writes are swallowed, reads count as misses
	c.SetDocument(ctx, doc)
	_, ok := c.GetDocument(ctx, doc.ID)
	assert.False(t, ok)
	c.InvalidateLists(ctx)
	c.InvalidateDocument(ctx, doc.ID)
}
