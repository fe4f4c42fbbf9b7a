package tokenstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = store.Save(ctx, sampleRecord("tok", time.Hour))
				_, _ = store.Get(ctx, "tok")
				_, _ = store.DeleteExpired(ctx, time.Now())
			}
		}()
	}
	wg.Wait()

	_, err := store.Get(ctx, "tok")
	assert.NoError(t, err)
}
