package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tgienger/ctm/internal/api"
	"github.com/tgienger/ctm/internal/clock"
	"github.com/tgienger/ctm/internal/db"
	"github.com/tgienger/ctm/internal/models"
	"github.com/tgienger/ctm/internal/store"
)

// TestStoreAgainstServer drives the client store over HTTP against a live
// router backed by the in-memory repository.
func TestStoreAgainstServer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	repo := db.NewMemoryRepo()
	require.NoError(t, Seed(ctx, repo, now, zap.NewNop()))
	srv := httptest.NewServer(WithCORS(NewRouter(repo, zap.NewNop()), []string{"*"}))
	defer srv.Close()

	s := store.New(api.New(srv.URL),
		store.WithClock(clock.NewFake(now)),
		store.WithInputLocation(time.UTC),
	)
	defer s.Close()

	require.NoError(t, s.Refresh(ctx))
	require.Len(t, s.Tasks(), 4)

	created, err := s.Create(ctx, models.Draft{
		Title: "Lodge appeal",
		Day:   "3",
		Month: "11",
		Year:  "2026",
		Time:  "16:45",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, time.Date(2026, 11, 3, 16, 45, 0, 0, time.UTC), created.DueDate)
	require.Len(t, s.Tasks(), 5)

	updated, err := s.UpdateStatus(ctx, created.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Len(t, s.Filter(models.Filter(models.StatusCompleted)), 1)

	require.NoError(t, s.RequestDelete(2))
	require.NoError(t, s.ConfirmDelete(ctx, 2))
	assert.Len(t, s.Tasks(), 4)

	// another client removed task 3 behind our back
	require.NoError(t, repo.DeleteTask(ctx, 3))
	_, err = s.UpdateStatus(ctx, 3, models.StatusInProgress)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Len(t, s.Tasks(), 4)

	require.NoError(t, s.Refresh(ctx))
	assert.Len(t, s.Tasks(), 3)
	assert.NoError(t, s.Err())
}
