package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pyroxy/internal/domain"
)

// 書き出し用の封筒型. response_time はトップレベル, または status
// サブオブジェクトがある場合はその中に注入される.
type errorEnvelope struct {
	Error        string  `json:"error"`
	ResponseTime float64 `json:"response_time"`
}

type infoEnvelope struct {
	URL           string  `json:"url"`
	ContentType   string  `json:"content_type"`
	ContentLength int64   `json:"content_length"`
	HTTPCode      int     `json:"http_code"`
	ResponseTime  float64 `json:"response_time"`
}

type statusEnvelope struct {
	URL           string  `json:"url,omitempty"`
	ContentType   string  `json:"content_type,omitempty"`
	ContentLength *int64  `json:"content_length,omitempty"`
	HTTPCode      int     `json:"http_code,omitempty"`
	Error         string  `json:"error,omitempty"`
	ResponseTime  float64 `json:"response_time"`
}

type contentsEnvelope struct {
	Contents *string        `json:"contents"`
	Status   statusEnvelope `json:"status"`
}

// writeResponse は取得結果をフォーマットに応じてエンコードして書き出す.
// raw の成功結果はバイト列をそのまま返し, それ以外は JSON (callback 指定
// 時は JSONP) に包む.
func writeResponse(
	w http.ResponseWriter, page *domain.Page, params *domain.RequestParams,
	start time.Time,
) {
	header := w.Header()
	header.Set("Via", "pyroxy-py v"+domain.Version)

	if params.CacheableMethod() {
		maxAge := 0
		if !params.DisableCache {
			maxAge = params.TTLSeconds()
		}
		header.Set("Cache-Control",
			fmt.Sprintf("public, max-age=%d, stale-if-error=600", maxAge))
	}

	if params.Format == domain.FormatRaw && page.ErrorMessage() == "" {
		contentType := page.ContentType
		if contentType == "" {
			contentType = "text/plain"
		}
		header.Set("Content-Type", contentType)
		header.Set("Content-Length", strconv.FormatInt(page.ContentLength, 10))
		w.Write(page.Content)
		return
	}

	body, err := json.Marshal(envelope(page, time.Since(start).Seconds()))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	charset := params.Charset
	if charset == "" {
		charset = "utf-8"
	}

	// JSONP: <callback>(<json>); をスクリプトとして返す
	if params.Callback != "" {
		header.Set("Content-Type", "application/javascript; charset="+charset)
		fmt.Fprintf(w, "%s(%s);", params.Callback, body)
		return
	}

	header.Set("Content-Type", "application/json; charset="+charset)
	w.Write(body)
}

// envelope は response_time を注入した書き出し用オブジェクトを組み立てる.
// キャッシュされた Page には触れない.
func envelope(page *domain.Page, elapsed float64) interface{} {
	switch {
	case page.Status != nil:
		status := statusEnvelope{ResponseTime: elapsed}
		if page.Status.Err != "" {
			status.Error = page.Status.Err
		} else {
			length := page.Status.ContentLength
			status.URL = page.Status.URL
			status.ContentType = page.Status.ContentType
			status.ContentLength = &length
			status.HTTPCode = page.Status.HTTPCode
		}
		return contentsEnvelope{Contents: page.Contents, Status: status}

	case page.Err != "":
		return errorEnvelope{Error: page.Err, ResponseTime: elapsed}

	case page.Info != nil:
		return infoEnvelope{
			URL:           page.Info.URL,
			ContentType:   page.Info.ContentType,
			ContentLength: page.Info.ContentLength,
			HTTPCode:      page.Info.HTTPCode,
			ResponseTime:  elapsed,
		}

	default:
		// raw の成功結果は上の専用パスで処理済み
		return map[string]interface{}{"response_time": elapsed}
	}
}
