package notifyd

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daymark/daymark/internal/notify"
)

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := OpenRegistry(RegistryOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

func oneShotRecord(handle string, at time.Time) Record {
	return Record{
		Handle:      handle,
		Trigger:     notify.OneShot(at),
		Content:     notify.Content{Title: "t", Body: "b"},
		Correlation: notify.Correlation{Type: notify.TypeMilestone, EventID: "e1", MilestoneID: "m-" + handle},
		NextFireAt:  at.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestRegistryPutGet(t *testing.T) {
	reg := setupTestRegistry(t)

	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	want := oneShotRecord("h-1", at)
	require.NoError(t, reg.Put(want))

	got, err := reg.Get("h-1")
	require.NoError(t, err)
	assert.Equal(t, want.Handle, got.Handle)
	assert.True(t, got.NextFireAt.Equal(at))
	assert.Equal(t, want.Correlation, got.Correlation)
	require.NotNil(t, got.Trigger.At)
	assert.True(t, got.Trigger.At.Equal(at))
}

func TestRegistryGetMissing(t *testing.T) {
	reg := setupTestRegistry(t)

	_, err := reg.Get("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryDeleteIdempotent(t *testing.T) {
	reg := setupTestRegistry(t)

	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, reg.Put(oneShotRecord("h-1", at)))

	require.NoError(t, reg.Delete("h-1"))
	_, err := reg.Get("h-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	// Deleting again, or deleting a handle that never existed, succeeds.
	assert.NoError(t, reg.Delete("h-1"))
	assert.NoError(t, reg.Delete("never-existed"))
}

func TestRegistryListOrdered(t *testing.T) {
	reg := setupTestRegistry(t)

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, reg.Put(oneShotRecord("h-late", base.Add(48*time.Hour))))
	require.NoError(t, reg.Put(oneShotRecord("h-early", base)))
	require.NoError(t, reg.Put(oneShotRecord("h-mid", base.Add(24*time.Hour))))

	recs, err := reg.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "h-early", recs[0].Handle)
	assert.Equal(t, "h-mid", recs[1].Handle)
	assert.Equal(t, "h-late", recs[2].Handle)
}

func TestRegistryDue(t *testing.T) {
	reg := setupTestRegistry(t)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, reg.Put(oneShotRecord("h-past", now.Add(-time.Hour))))
	require.NoError(t, reg.Put(oneShotRecord("h-exact", now)))
	require.NoError(t, reg.Put(oneShotRecord("h-future", now.Add(time.Hour))))

	due, err := reg.Due(now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "h-past", due[0].Handle)
	assert.Equal(t, "h-exact", due[1].Handle)
}

func TestRegistryPutReplaces(t *testing.T) {
	reg := setupTestRegistry(t)

	at := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	rec := oneShotRecord("h-1", at)
	require.NoError(t, reg.Put(rec))

	rec.NextFireAt = at.Add(24 * time.Hour)
	require.NoError(t, reg.Put(rec))

	got, err := reg.Get("h-1")
	require.NoError(t, err)
	assert.True(t, got.NextFireAt.Equal(at.Add(24*time.Hour)))

	recs, err := reg.List()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
