package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"pyroxy/internal/domain"
)

// ProxyUseCase はリクエスト処理パイプラインを実装. 検証済みパラメータから
// キャッシュキーを構築し, キャッシュを参照して, ミス時にリモート取得を
// 行い, ポリシーに従って結果をキャッシュに保存する.
type ProxyUseCase struct {
	access  domain.AccessController
	cache   domain.CacheManager
	fetcher domain.PageFetcher
	metrics domain.MetricsCollector
	logger  domain.Logger
}

// NewProxyUseCase は新しいProxyUseCaseインスタンスを作成
func NewProxyUseCase(
	access domain.AccessController,
	cache domain.CacheManager,
	fetcher domain.PageFetcher,
	metrics domain.MetricsCollector,
	logger domain.Logger,
) *ProxyUseCase {
	return &ProxyUseCase{
		access:  access,
		cache:   cache,
		fetcher: fetcher,
		metrics: metrics,
		logger:  logger,
	}
}

// ProcessRequest はページ取得のパイプラインを実行する. 上流のトランス
// ポートエラーはエラー形の Page として返り, error は宛先ブロックなど
// リクエスト自体を拒否する場合のみ返る.
func (uc *ProxyUseCase) ProcessRequest(
	ctx context.Context, params *domain.RequestParams,
) (*domain.Page, error) {
	uc.metrics.RecordRequest()

	host := hostOf(params.URL)
	allowed, err := uc.access.IsAllowed(host)
	if err != nil {
		return nil, fmt.Errorf("access control check failed: %w", err)
	}
	if !allowed {
		uc.metrics.RecordBlockedRequest()
		return nil, &domain.ErrBlockedHost{Host: host}
	}

	key := params.CacheKey()
	cacheable := params.CacheableMethod() && !params.DisableCache

	// キャッシュ参照は GET/HEAD かつキャッシュ有効時のみ
	if cacheable {
		if page, ok := uc.cache.Get(key); ok {
			uc.metrics.RecordCacheHit()
			return page, nil
		}
		uc.metrics.RecordCacheMiss()
	}

	uc.metrics.RecordFetch()
	page := uc.fetcher.Fetch(ctx, params.URL, params.Method, params.Format, params.Charset)

	if page.ErrorMessage() != "" {
		uc.metrics.RecordError()
	} else {
		uc.metrics.AddBytesFetched(page.FetchedBytes())
	}

	// エラー形の結果もキャッシュ対象 (stale-if-error 相当の扱い)
	if cacheable {
		ttl := time.Duration(params.TTLSeconds()) * time.Second
		uc.cache.Set(key, page, ttl)
	}

	return page, nil
}

// LogRequest はリクエストのサマリを1行記録する. ロギングの失敗が
// レスポンスに影響することはない.
func (uc *ProxyUseCase) LogRequest(
	params *domain.RequestParams, page *domain.Page, elapsed time.Duration,
) {
	if msg := page.ErrorMessage(); msg != "" {
		uc.logger.Warn("Upstream error", map[string]interface{}{
			"error":      msg,
			"url":        params.URL,
			"request_id": params.RequestID,
		})
	}

	from := "browser"
	if params.Origin != "" {
		if u, err := url.Parse(params.Origin); err == nil && u.Hostname() != "" {
			from = u.Hostname()
		}
	}

	to := "unknown"
	if host := hostOf(params.URL); host != "" {
		to = host
	}

	uc.logger.Info("Request processed", map[string]interface{}{
		"method":     params.Method,
		"format":     params.Format,
		"from":       from,
		"to":         to,
		"time":       fmt.Sprintf("%.3fs", elapsed.Seconds()),
		"request_id": params.RequestID,
	})
}

// hostOf はURLからホスト名を取り出す. 解釈できない場合は空文字列.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
