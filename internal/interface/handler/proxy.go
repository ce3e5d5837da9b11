package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pyroxy/internal/domain"
	"pyroxy/internal/usecase"
)

const (
	errNoURL         = "No URL provided. Please add a url parameter."
	errInvalidFormat = "Invalid format. Use one of: get, raw, json, info"
)

// ProxyHandler はプロキシへのHTTPリクエストを処理
type ProxyHandler struct {
	proxyUseCase *usecase.ProxyUseCase
	logger       domain.Logger
}

// NewProxyHandler は新しいProxyHandlerインスタンスを作成
func NewProxyHandler(
	proxyUseCase *usecase.ProxyUseCase, logger domain.Logger,
) *ProxyHandler {
	return &ProxyHandler{
		proxyUseCase: proxyUseCase,
		logger:       logger,
	}
}

func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// CORSヘッダーは成功・失敗を問わず全レスポンスに付与する
	writeCORSHeaders(w, r)

	format, ok := formatFromPath(r.URL.Path)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, errInvalidFormat)
		return
	}

	// CORS プリフライトは空の成功レスポンスで短絡する
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	params := parseParams(r, format)
	if params.URL == "" {
		writeJSONError(w, http.StatusBadRequest, errNoURL)
		return
	}

	page, err := h.proxyUseCase.ProcessRequest(r.Context(), params)
	if err != nil {
		var blocked *domain.ErrBlockedHost
		if errors.As(err, &blocked) {
			writeJSONError(w, http.StatusForbidden,
				fmt.Sprintf("Access to %s is blocked", blocked.Host))
			return
		}
		h.logger.Error("Pipeline failed", err, map[string]interface{}{
			"url":        params.URL,
			"request_id": params.RequestID,
		})
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeResponse(w, page, params, start)
	h.proxyUseCase.LogRequest(params, page, time.Since(start))
}

// formatFromPath はパスからフォーマットセグメントを取り出す. 単一
// セグメント以外や未知のフォーマットは拒否される.
func formatFromPath(path string) (string, bool) {
	segment := strings.Trim(path, "/")
	if segment == "" || strings.Contains(segment, "/") {
		return "", false
	}
	if !domain.ValidFormat(segment) {
		return "", false
	}
	return segment, true
}

// parseParams はクエリパラメータを検証済みの構造体に正規化する.
// disableCache はリテラル "true" のみが有効 ("TRUE" や "1" はキャッシュ
// 有効のまま). cacheMaxAge は解釈不能なら既定値に落とす.
func parseParams(r *http.Request, format string) *domain.RequestParams {
	query := r.URL.Query()

	maxAge := domain.DefaultCacheTime
	if v := query.Get("cacheMaxAge"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			maxAge = n
		}
	}

	return &domain.RequestParams{
		URL:          query.Get("url"),
		Format:       format,
		Method:       r.Method,
		Charset:      query.Get("charset"),
		DisableCache: query.Get("disableCache") == "true",
		CacheMaxAge:  maxAge,
		Callback:     query.Get("callback"),
		Origin:       r.Header.Get("Origin"),
		RequestID:    uuid.NewString(),
	}
}

// writeCORSHeaders はリクエストのOriginをそのまま反映したCORSヘッダーを
// 付与する. Origin がない場合は "*".
func writeCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}

	header := w.Header()
	header.Set("Access-Control-Allow-Origin", origin)
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Allow-Headers",
		"Origin, X-Requested-With, Content-Type, Content-Encoding, Accept")
	header.Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PATCH, PUT, DELETE")
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
