package fetcher

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pyroxy/internal/domain"
)

const (
	fetchTimeout = 10 * time.Second

	// 上流へのコネクションプール設定
	maxIdleConns        = 100
	maxIdleConnsPerHost = 8
	idleConnTimeout     = 90 * time.Second
)

// Repository は net/http ベースの PageFetcher 実装. リダイレクトは自動で
// 追従し, トランスポートエラーはエラー形の Page として返す.
type Repository struct {
	client    *http.Client
	userAgent string
}

// Verify interface implementation
var _ domain.PageFetcher = (*Repository)(nil)

// New は新しいRepositoryインスタンスを作成
func New() *Repository {
	transport := &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	}
	return NewWithClient(&http.Client{
		Timeout:   fetchTimeout,
		Transport: transport,
	})
}

// NewWithClient は指定の http.Client を使うRepositoryを作成
func NewWithClient(client *http.Client) *Repository {
	return &Repository{
		client:    client,
		userAgent: domain.DefaultUserAgent,
	}
}

// Fetch は指定フォーマットでリモートページを取得する. info フォーマット
// または HEAD メソッドはヘッダーのみのプローブになる.
func (r *Repository) Fetch(
	ctx context.Context, url, method, format, charset string,
) *domain.Page {
	switch {
	case format == domain.FormatInfo || method == http.MethodHead:
		return r.fetchInfo(ctx, url)
	case format == domain.FormatRaw:
		return r.fetchRaw(ctx, url, method, charset)
	default:
		return r.fetchContents(ctx, url, method, charset)
	}
}

// fetchInfo は本文を取得せずにページのメタデータを取得
func (r *Repository) fetchInfo(ctx context.Context, url string) *domain.Page {
	resp, err := r.do(ctx, http.MethodHead, url)
	if err != nil {
		return &domain.Page{Err: err.Error()}
	}
	defer resp.Body.Close()

	return &domain.Page{
		Info: &domain.PageInfo{
			URL:           url,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: parseContentLength(resp.Header.Get("Content-Length")),
			HTTPCode:      resp.StatusCode,
		},
	}
}

// fetchRaw はページの生の内容を取得. UTF-8 以外の charset が指定された
// 場合は UTF-8 への変換を試み, 失敗したら元のバイト列をそのまま使う.
func (r *Repository) fetchRaw(
	ctx context.Context, url, method, charset string,
) *domain.Page {
	resp, err := r.do(ctx, method, url)
	if err != nil {
		return &domain.Page{Err: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.Page{Err: err.Error()}
	}

	content := body
	if charset != "" && !strings.EqualFold(charset, "utf-8") {
		if transcoded, err := transcodeToUTF8(body, charset); err == nil {
			content = transcoded
		}
	}

	return &domain.Page{
		Content:       content,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: int64(len(content)),
	}
}

// fetchContents はデコード済みの本文とメタデータを取得. デコード失敗時は
// 不正なシーケンスを置換文字にした UTF-8 にフォールバックする.
func (r *Repository) fetchContents(
	ctx context.Context, url, method, charset string,
) *domain.Page {
	resp, err := r.do(ctx, method, url)
	if err != nil {
		return &domain.Page{Status: &domain.PageStatus{Err: err.Error()}}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.Page{Status: &domain.PageStatus{Err: err.Error()}}
	}

	var text string
	if charset != "" {
		decoded, err := decodeCharset(body, charset)
		if err != nil {
			text = decodeUTF8Replace(body)
		} else {
			text = decoded
		}
	} else {
		text = decodeUTF8Replace(body)
	}

	return &domain.Page{
		Contents: &text,
		Status: &domain.PageStatus{
			URL:           url,
			ContentType:   resp.Header.Get("Content-Type"),
			ContentLength: int64(len(body)),
			HTTPCode:      resp.StatusCode,
		},
	}
}

func (r *Repository) do(
	ctx context.Context, method, url string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.userAgent)
	return r.client.Do(req)
}

// parseContentLength はContent-Lengthヘッダーを解釈. 欠落または解釈不能な
// 場合は -1 を返す.
func parseContentLength(value string) int64 {
	if value == "" {
		return -1
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return -1
	}
	return n
}
