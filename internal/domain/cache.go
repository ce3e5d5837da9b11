package domain

import "time"

// CacheManager はキャッシュ管理のインターフェース. 削除・無効化の操作は
// 提供しない（期限切れ検出と全クリアのみが削除経路）.
type CacheManager interface {
	Get(key string) (*Page, bool)
	Set(key string, page *Page, ttl time.Duration)
}
