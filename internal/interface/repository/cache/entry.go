package cache

import (
	"time"

	"pyroxy/internal/domain"
)

// Entry はキャッシュエントリを表す
type Entry struct {
	Page      *domain.Page
	ExpiresAt time.Time
}

// NewEntry は新しいEntryインスタンスを作成
func NewEntry(page *domain.Page, ttl time.Duration, now time.Time) *Entry {
	return &Entry{
		Page:      page,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired はエントリが期限切れかどうかを確認. エントリは
// now < ExpiresAt の間のみ有効.
func (e *Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}
