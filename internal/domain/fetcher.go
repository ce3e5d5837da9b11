package domain

import "context"

// PageFetcher はリモートページ取得のインターフェース. トランスポート
// エラーはエラー形の Page として返され, error としては返らない.
type PageFetcher interface {
	Fetch(ctx context.Context, url, method, format, charset string) *Page
}
