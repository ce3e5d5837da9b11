package cache

import (
	"sync"
	"time"

	"pyroxy/internal/domain"
)

// DefaultMaxSize は既定の最大エントリ数
const DefaultMaxSize = 1000

// Repository はインメモリキャッシュのリポジトリ実装. エントリ数が
// maxSize に達した状態で挿入されると, 全エントリをクリアしてから
// 挿入する（部分的な追い出しは行わない）.
type Repository struct {
	mu      sync.Mutex
	entries map[string]*Entry
	maxSize int
	now     func() time.Time
}

// Verify interface implementation
var _ domain.CacheManager = (*Repository)(nil)

// New は新しいRepositoryインスタンスを作成
func New(maxSize int) *Repository {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Repository{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get はキャッシュからページを取得. 期限切れのエントリは削除してから
// absent を返す（バックグラウンドでの掃除は行わない）.
func (r *Repository) Get(key string) (*domain.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, false
	}

	if entry.IsExpired(r.now()) {
		delete(r.entries, key)
		return nil, false
	}

	return entry.Page, true
}

// Set はキャッシュにページを保存. 挿入時点でエントリ数が maxSize 以上の
// 場合はストア全体をクリアしてから挿入する.
func (r *Repository) Set(key string, page *domain.Page, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.maxSize {
		r.entries = make(map[string]*Entry, r.maxSize)
	}

	r.entries[key] = NewEntry(page, ttl, r.now())
}

// Len は現在のエントリ数を返す
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
