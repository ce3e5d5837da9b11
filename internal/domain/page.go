package domain

import "fmt"

// バージョンとプロキシの既定値
const (
	Version = "1.0.0"

	DefaultCacheTime = 60 * 60 // 60分
	MinCacheTime     = 5 * 60  // 5分

	DefaultUserAgent = "Mozilla/5.0 (compatible; Pyroxy-py/" + Version + "; +http://pyroxy.ai/)"
)

// 応答フォーマット
const (
	FormatGet  = "get"
	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatInfo = "info"
)

// ValidFormat はパスセグメントが有効なフォーマットか確認
func ValidFormat(format string) bool {
	switch format {
	case FormatGet, FormatRaw, FormatJSON, FormatInfo:
		return true
	}
	return false
}

// PageInfo はリモートページのメタデータを表す.
// ContentLength はヘッダーが欠落または解釈不能な場合 -1 になる.
type PageInfo struct {
	URL           string
	ContentType   string
	ContentLength int64
	HTTPCode      int
}

// PageStatus は既定フォーマットの status サブオブジェクトを表す.
// Err が設定されている場合は他のフィールドは使用されない.
type PageStatus struct {
	URL           string
	ContentType   string
	ContentLength int64
	HTTPCode      int
	Err           string
}

// Page はリモートページの取得結果を表す. フォーマットにより使用する
// フィールドが異なる. 一度構築されたら変更されない（キャッシュに値として
// 保存されるため）.
type Page struct {
	// info (またはHEADプローブ) の結果
	Info *PageInfo

	// raw フォーマットの結果
	Content       []byte
	ContentType   string
	ContentLength int64

	// 既定フォーマット (get/json) の結果. Contents が nil の場合は
	// JSON 上で null になる.
	Contents *string
	Status   *PageStatus

	// info/raw のトランスポートエラー
	Err string
}

// ErrorMessage はフォーマットを問わずエラーメッセージを返す. エラーが
// ない場合は空文字列.
func (p *Page) ErrorMessage() string {
	if p.Status != nil && p.Status.Err != "" {
		return p.Status.Err
	}
	return p.Err
}

// FetchedBytes は上流から取得した本文のバイト数を返す.
func (p *Page) FetchedBytes() int64 {
	if p.Status != nil {
		return p.Status.ContentLength
	}
	return p.ContentLength
}

// RequestParams は検証済みのリクエストパラメータを表す.
type RequestParams struct {
	URL          string
	Format       string
	Method       string
	Charset      string
	DisableCache bool
	CacheMaxAge  int
	Callback     string
	Origin       string
	RequestID    string
}

// CacheKey はキャッシュキーを構築する. 4要素のいずれかが異なれば
// 衝突しない.
func (p *RequestParams) CacheKey() string {
	return fmt.Sprintf("%s:%s:%s:%s", p.Method, p.URL, p.Format, p.Charset)
}

// CacheableMethod はキャッシュ対象のメソッドか確認
func (p *RequestParams) CacheableMethod() bool {
	return p.Method == "GET" || p.Method == "HEAD"
}

// TTLSeconds は下限適用後のキャッシュ保持秒数を返す. 下限を下回る指定は
// 黙って MinCacheTime に引き上げられる. 上限はない.
func (p *RequestParams) TTLSeconds() int {
	if p.CacheMaxAge < MinCacheTime {
		return MinCacheTime
	}
	return p.CacheMaxAge
}
