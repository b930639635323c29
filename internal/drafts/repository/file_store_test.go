package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
)

func setupFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "data", "drafts.json"), nil)
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	store := setupFileStore(t)

	drafts, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestFileStore_LoadCorruptedFile(t *testing.T) {
	store := setupFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))

	for name, content := range map[string]string{
		"invalid json": `[{"id": 1,`,
		"mapping":      `{"id": 1, "components": {}}`,
		"scalar":       `42`,
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

			drafts, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Empty(t, drafts)
		})
	}
}

func TestFileStore_AppendCreatesDirectoryAndAssignsIDs(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()

	first, err := store.Append(ctx, stampNext(`{"cpu":"X"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := store.Append(ctx, stampNext(`{"gpu":"Y"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	drafts, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.JSONEq(t, `{"cpu":"X"}`, string(drafts[0].Components))
	assert.JSONEq(t, `{"gpu":"Y"}`, string(drafts[1].Components))
}

func TestFileStore_AppendWritesPrettyPrintedList(t *testing.T) {
	store := setupFileStore(t)

	_, err := store.Append(context.Background(), stampNext(`{"cpu":"X"}`))
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])
	assert.Contains(t, string(data), "\n  {\n    \"components\"")
	assert.Equal(t, byte('\n'), data[len(data)-1])
}

func TestFileStore_AppendRereadsExternalChanges(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)

	external := `[{"id": 1, "components": {}, "stats": {}}, {"id": 3, "components": {}, "stats": {}}]`
	require.NoError(t, os.WriteFile(store.Path(), []byte(external), 0o644))

	d, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 4, d.ID)
}

func TestFileStore_AppendOverCorruptedFileStartsFresh(t *testing.T) {
	store := setupFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("not json"), 0o644))

	d, err := store.Append(context.Background(), stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, d.ID)
}

func TestFileStore_AppendBuildErrorDoesNotWrite(t *testing.T) {
	store := setupFileStore(t)
	boom := errors.New("boom")

	_, err := store.Append(context.Background(), func([]domain.Draft) (domain.Draft, error) {
		return domain.Draft{}, boom
	})
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_AppendWriteFailureIsPersistError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := NewFileStore(filepath.Join(blocker, "drafts.json"), nil)

	_, err := store.Append(context.Background(), stampNext(`{}`))
	require.Error(t, err)

	var perr *domain.PersistError
	require.ErrorAs(t, err, &perr)
}

func TestFileStore_DeleteExisting(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, stampNext(`{"n":1}`))
		require.NoError(t, err)
	}
	before, err := store.Load(ctx)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, removed)

	after, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(after))
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	d, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 4, d.ID)
}

func TestFileStore_DeleteMissingLeavesFileUntouched(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, stampNext(`{"cpu":"X"}`))
	require.NoError(t, err)

	// Hand-formatted content proves no rewrite happens.
	original := []byte("[ {\"id\": 1, \"components\": {\"cpu\": \"X\"}, \"stats\": {}} ]")
	require.NoError(t, os.WriteFile(store.Path(), original, 0o644))
	infoBefore, err := os.Stat(store.Path())
	require.NoError(t, err)

	removed, err := store.Delete(ctx, 99)
	require.NoError(t, err)
	assert.False(t, removed)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, original, data)

	infoAfter, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, infoBefore.ModTime(), infoAfter.ModTime())
}

func TestFileStore_DeleteOnMissingFile(t *testing.T) {
	store := setupFileStore(t)

	removed, err := store.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, removed)

	_, statErr := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_ConcurrentAppendsKeepEveryRecord(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan int, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := store.Append(ctx, stampNext(`{}`))
			if err == nil {
				results <- d.ID
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int]bool{}
	for id := range results {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, writers)

	drafts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, drafts, writers)
	assert.Equal(t, writers+1, NextID(drafts))
}

func TestFileStore_Ping(t *testing.T) {
	store := setupFileStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	broken := NewFileStore(filepath.Join(blocker, "drafts.json"), nil)
	assert.Error(t, broken.Ping(context.Background()))
}

func TestFileStore_UnusualRecordsSurviveSaveAndDelete(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))

	content := `[
		{"id": 1, "components": {}, "stats": {}},
		{"id": 2.0, "components": {"cpu": "X"}, "stats": {}},
		{"id": 3, "components": {}, "stats": "x"},
		{"id": "seven", "components": {}},
		{"id": 4.5, "components": {}, "stats": {}},
		"not a draft"
	]`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	drafts, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, drafts, 6)
	assert.Equal(t, 2, drafts[1].ID)
	assert.True(t, drafts[2].Passthrough())
	assert.True(t, drafts[5].Passthrough())

	d, err := store.Append(ctx, stampNext(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 6, d.ID)

	removed, err := store.Delete(ctx, 3)
	require.NoError(t, err)
	assert.True(t, removed)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id": 1, "components": {}, "stats": {}},
		{"id": 2, "components": {"cpu": "X"}, "stats": {}},
		{"id": "seven", "components": {}, "stats": {}},
		{"id": 4.5, "components": {}, "stats": {}},
		"not a draft",
		{"id": 6, "components": {}, "stats": {"timestamp": "2026-10-19 10:00:00"}}
	]`, string(data))
}

func TestFileStore_DeleteKeepsOtherStatsExact(t *testing.T) {
	store := setupFileStore(t)
	ctx := context.Background()
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))

	content := `[{"id":1,"components":{},"stats":{"serial":12345678901234567891,"price":100.50}},{"id":2,"components":{},"stats":{}}]`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0o644))

	removed, err := store.Delete(ctx, 2)
	require.NoError(t, err)
	require.True(t, removed)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"serial": 12345678901234567891`)
	assert.Contains(t, string(data), `"price": 100.50`)
}
