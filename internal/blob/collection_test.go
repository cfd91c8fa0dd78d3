package blob_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameforum/internal/blob"
)

func newStrings(store blob.Store) *blob.Collection[[]string] {
	return blob.NewCollection(store, "items", func() []string {
		return []string{}
	})
}

func TestCollectionLoadAbsent(t *testing.T) {
	col := newStrings(blob.NewMemory())

	v, err := col.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)
}

func TestCollectionLoadMalformed(t *testing.T) {
	mem := blob.NewMemory()
	require.NoError(t, mem.Set(context.Background(), "items", []byte("{not json")))

	col := newStrings(mem)
	v, err := col.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestCollectionSaveLoadRoundTrip(t *testing.T) {
	col := newStrings(blob.NewMemory())
	ctx := context.Background()

	require.NoError(t, col.Save(ctx, []string{"a", "b"}))

	v, err := col.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)
}

func TestCollectionUpdateNoChangeSkipsWrite(t *testing.T) {
	mem := blob.NewMemory()
	col := newStrings(mem)

	err := col.Update(context.Background(), func(v *[]string) error {
		return blob.ErrNoChange
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mem.Len())
}

func TestCollectionUpdateErrorWritesNothing(t *testing.T) {
	mem := blob.NewMemory()
	col := newStrings(mem)

	err := col.Update(context.Background(), func(v *[]string) error {
		*v = append(*v, "x")
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, mem.Len())
}

func TestCollectionConcurrentUpdatesLoseNothing(t *testing.T) {
	col := newStrings(blob.NewMemory())
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := col.Update(ctx, func(v *[]string) error {
				*v = append(*v, "entry")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := col.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, v, writers)
}
