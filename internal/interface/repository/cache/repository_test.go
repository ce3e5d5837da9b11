package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyroxy/internal/domain"
)

func testPage(msg string) *domain.Page {
	return &domain.Page{Err: msg}
}

func TestRepository_GetSet(t *testing.T) {
	repo := New(10)

	page := testPage("p1")
	repo.Set("k1", page, time.Minute)

	got, ok := repo.Get("k1")
	require.True(t, ok)
	assert.Same(t, page, got)

	_, ok = repo.Get("missing")
	assert.False(t, ok)
}

func TestRepository_LazyExpiry(t *testing.T) {
	repo := New(10)

	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return current }

	repo.Set("k1", testPage("p1"), 300*time.Second)

	// 期限内は見える
	current = current.Add(299 * time.Second)
	_, ok := repo.Get("k1")
	assert.True(t, ok)

	// ちょうど期限で absent になり, エントリ自体も削除される
	current = current.Add(1 * time.Second)
	_, ok = repo.Get("k1")
	assert.False(t, ok)
	assert.Equal(t, 0, repo.Len())
}

func TestRepository_EvictionClearsEverything(t *testing.T) {
	const maxSize = 5
	repo := New(maxSize)

	for i := 0; i < maxSize; i++ {
		repo.Set(fmt.Sprintf("k%d", i), testPage("p"), time.Minute)
	}
	require.Equal(t, maxSize, repo.Len())

	// maxSize+1 個目の挿入で全クリアされ, 最後の1件だけが残る
	repo.Set("last", testPage("p"), time.Minute)
	assert.Equal(t, 1, repo.Len())

	_, ok := repo.Get("last")
	assert.True(t, ok)
	_, ok = repo.Get("k0")
	assert.False(t, ok)
}

func TestRepository_OverwriteSameKey(t *testing.T) {
	repo := New(10)

	repo.Set("k1", testPage("old"), time.Minute)
	repo.Set("k1", testPage("new"), time.Minute)

	got, ok := repo.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "new", got.Err)
	assert.Equal(t, 1, repo.Len())
}

func TestRepository_ConcurrentAccess(t *testing.T) {
	repo := New(50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%60)
				repo.Set(key, testPage("p"), time.Minute)
				repo.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, repo.Len(), 50)
}
