package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scribe-go-api/internal/dto"
)

func newCachedDocumentService(t *testing.T, store *memoryDocumentStore, policy AccessPolicy) (DocumentService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewDocumentService(store, store, policy, validate, client, time.Minute, testLogger()), mr
}

func TestDocumentServiceGetServesFromCache(t *testing.T) {
	store := newMemoryDocumentStore()
	svc, mr := newCachedDocumentService(t, store, newStubPolicy())

	created, err := svc.Create(context.Background(), dto.DocumentCreateRequest{
		Title:   "Essay",
		Content: "draft one",
	}, 7)
	require.NoError(t, err)

	fetched, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "draft one", fetched.Content)
	require.True(t, mr.Exists(fmt.Sprintf("scribe:document:%d", created.ID)))

	// The cached copy answers even when the backing row changes underneath.
	mutated := store.documents[created.ID]
	mutated.Content = "tampered"
	store.documents[created.ID] = mutated

	cached, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "draft one", cached.Content)
}

func TestDocumentServiceUpdateInvalidatesCache(t *testing.T) {
	store := newMemoryDocumentStore()
	policy := newStubPolicy()
	svc, mr := newCachedDocumentService(t, store, policy)

	created, err := svc.Create(context.Background(), dto.DocumentCreateRequest{
		Title:   "Essay",
		Content: "draft one",
	}, 7)
	require.NoError(t, err)
	policy.owners[created.ID] = 7

	_, err = svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(fmt.Sprintf("scribe:document:%d", created.ID)))

	_, err = svc.Update(context.Background(), created.ID, dto.DocumentUpdateRequest{Content: "draft two"}, 7)
	require.NoError(t, err)
	require.False(t, mr.Exists(fmt.Sprintf("scribe:document:%d", created.ID)))
}

func TestDocumentServiceCacheEntriesExpire(t *testing.T) {
	store := newMemoryDocumentStore()
	svc, mr := newCachedDocumentService(t, store, newStubPolicy())

	created, err := svc.Create(context.Background(), dto.DocumentCreateRequest{
		Title:   "Essay",
		Content: "draft one",
	}, 7)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists(fmt.Sprintf("scribe:document:%d", created.ID)))

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists(fmt.Sprintf("scribe:document:%d", created.ID)))
}
