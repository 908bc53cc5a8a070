package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store implementation shares.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing collection", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})

	t.Run("query missing collection", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Query(ctx, "missing", []float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("upsert assigns sequential ids", func(t *testing.T) {
		s := newStore(t)
		chunks, err := s.Upsert(ctx, "wf", []ChunkInput{
			{Text: "a", Embedding: []float32{1, 0}},
			{Text: "b", Embedding: []float32{0, 1}},
			{Text: "c", EmbeddingError: "Embedding Error: quota"},
		})
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		coll, err := s.Get(ctx, "wf")
		require.NoError(t, err)
		assert.Equal(t, "wf", coll.WorkflowID)
		require.Len(t, coll.Chunks, 3)
		for i, c := range coll.Chunks {
			assert.Equal(t, fmt.Sprintf("chunk-%d", i), c.ID)
			assert.Equal(t, i, c.Index)
		}
		assert.Equal(t, []float32{0, 1}, coll.Chunks[1].Embedding)
		assert.Empty(t, coll.Chunks[2].Embedding)
		assert.Equal(t, "Embedding Error: quota", coll.Chunks[2].EmbeddingError)
	})

	t.Run("upsert is idempotent", func(t *testing.T) {
		s := newStore(t)
		in := []ChunkInput{{Text: "a", Embedding: []float32{1, 2}}, {Text: "b", Embedding: []float32{3, 4}}}

		_, err := s.Upsert(ctx, "wf", in)
		require.NoError(t, err)
		first, err := s.Get(ctx, "wf")
		require.NoError(t, err)

		_, err = s.Upsert(ctx, "wf", in)
		require.NoError(t, err)
		second, err := s.Get(ctx, "wf")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("shorter upsert overwrites prefix and keeps tail", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Upsert(ctx, "wf", []ChunkInput{{Text: "old-0"}, {Text: "old-1"}, {Text: "old-2"}})
		require.NoError(t, err)
		_, err = s.Upsert(ctx, "wf", []ChunkInput{{Text: "new-0"}})
		require.NoError(t, err)

		coll, err := s.Get(ctx, "wf")
		require.NoError(t, err)
		texts := make([]string, len(coll.Chunks))
		for i, c := range coll.Chunks {
			texts[i] = c.Text
		}
		assert.Equal(t, []string{"new-0", "old-1", "old-2"}, texts)
	})

	t.Run("empty upsert creates collection", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Upsert(ctx, "empty", nil)
		require.NoError(t, err)

		coll, err := s.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, coll.Chunks)
	})

	t.Run("collections are isolated", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Upsert(ctx, "one", []ChunkInput{{Text: "from one"}})
		require.NoError(t, err)
		_, err = s.Upsert(ctx, "two", []ChunkInput{{Text: "from two"}})
		require.NoError(t, err)

		coll, err := s.Get(ctx, "one")
		require.NoError(t, err)
		require.Len(t, coll.Chunks, 1)
		assert.Equal(t, "from one", coll.Chunks[0].Text)
	})

	t.Run("query ranks by similarity and skips failed chunks", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Upsert(ctx, "wf", []ChunkInput{
			{Text: "north", Embedding: []float32{0, 1}},
			{Text: "east", Embedding: []float32{1, 0}},
			{Text: "broken", EmbeddingError: "Embedding Error: down"},
			{Text: "north-east", Embedding: []float32{1, 1}},
		})
		require.NoError(t, err)

		got, err := s.Query(ctx, "wf", []float32{1, 0.1}, 2)
		require.NoError(t, err)
		assert.Equal(t, "east\n\nnorth-east", got)
	})

	t.Run("concurrent upserts keep ids intact", func(t *testing.T) {
		s := newStore(t)
		const writers = 8
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				in := make([]ChunkInput, 5)
				for i := range in {
					in[i] = ChunkInput{Text: fmt.Sprintf("w%d-%d", w, i), Embedding: []float32{float32(w), float32(i)}}
				}
				_, err := s.Upsert(ctx, "shared", in)
				errs <- err
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		coll, err := s.Get(ctx, "shared")
		require.NoError(t, err)
		require.Len(t, coll.Chunks, 5)
		for i, c := range coll.Chunks {
			assert.Equal(t, fmt.Sprintf("chunk-%d", i), c.ID)
		}
	})
}
