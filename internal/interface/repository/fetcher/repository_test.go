package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyroxy/internal/domain"
)

func TestFetch_Info(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Length", "42")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatInfo, "")

	assert.Equal(t, http.MethodHead, gotMethod)
	require.NotNil(t, page.Info)
	assert.Equal(t, srv.URL, page.Info.URL)
	assert.Equal(t, "text/html", page.Info.ContentType)
	assert.Equal(t, int64(42), page.Info.ContentLength)
	assert.Equal(t, http.StatusOK, page.Info.HTTPCode)
	assert.Empty(t, page.Err)
}

func TestFetch_HeadMethodIsProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// format=get でも HEAD メソッドならプローブになり本文はデコードされない
	page := New().Fetch(context.Background(), srv.URL, http.MethodHead, domain.FormatGet, "")

	require.NotNil(t, page.Info)
	assert.Nil(t, page.Contents)
	assert.Nil(t, page.Content)
}

func TestFetch_InfoMissingContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatInfo, "")

	require.NotNil(t, page.Info)
	assert.Equal(t, int64(-1), page.Info.ContentLength)
}

func TestFetch_Raw(t *testing.T) {
	body := []byte("hello raw")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write(body)
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatRaw, "")

	assert.Equal(t, body, page.Content)
	assert.Equal(t, int64(len(body)), page.ContentLength)
	assert.Equal(t, "text/plain", page.ContentType)
}

func TestFetch_RawTranscodesCharset(t *testing.T) {
	// "é" を latin-1 で返す
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte{0xE9})
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatRaw, "iso-8859-1")

	assert.Equal(t, []byte("é"), page.Content)
	assert.Equal(t, int64(2), page.ContentLength)
}

func TestFetch_RawUnknownCharsetFallsBack(t *testing.T) {
	body := []byte{0xE9, 0x01, 0x02}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatRaw, "no-such-charset")

	// デコード失敗は黙って元のバイト列のまま
	assert.Equal(t, body, page.Content)
	assert.Equal(t, int64(len(body)), page.ContentLength)
	assert.Empty(t, page.Err)
}

func TestFetch_Contents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatGet, "")

	require.NotNil(t, page.Contents)
	assert.Equal(t, "<html>ok</html>", *page.Contents)
	require.NotNil(t, page.Status)
	assert.Equal(t, srv.URL, page.Status.URL)
	assert.Equal(t, int64(15), page.Status.ContentLength)
	assert.Equal(t, http.StatusOK, page.Status.HTTPCode)
}

func TestFetch_ContentsCharsetDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte{0xE9})
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatGet, "iso-8859-1")

	require.NotNil(t, page.Contents)
	assert.Equal(t, "é", *page.Contents)
	// content_length は元のバイト数のまま
	assert.Equal(t, int64(1), page.Status.ContentLength)
}

func TestFetch_ContentsInvalidUTF8Replaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte{0xFF, 'o', 'k'})
	}))
	defer srv.Close()

	page := New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatGet, "")

	require.NotNil(t, page.Contents)
	assert.Equal(t, "�ok", *page.Contents)
}

func TestFetch_TransportError(t *testing.T) {
	// 閉じたサーバーへの接続は失敗する
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	repo := New()

	infoPage := repo.Fetch(context.Background(), url, http.MethodGet, domain.FormatInfo, "")
	assert.NotEmpty(t, infoPage.Err)
	assert.Nil(t, infoPage.Info)

	rawPage := repo.Fetch(context.Background(), url, http.MethodGet, domain.FormatRaw, "")
	assert.NotEmpty(t, rawPage.Err)

	contentsPage := repo.Fetch(context.Background(), url, http.MethodGet, domain.FormatGet, "")
	require.NotNil(t, contentsPage.Status)
	assert.NotEmpty(t, contentsPage.Status.Err)
	assert.Nil(t, contentsPage.Contents)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("final"))
	}))
	defer target.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	page := New().Fetch(context.Background(), redirecting.URL, http.MethodGet, domain.FormatGet, "")

	require.NotNil(t, page.Contents)
	assert.Equal(t, "final", *page.Contents)
	assert.Equal(t, http.StatusOK, page.Status.HTTPCode)
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	New().Fetch(context.Background(), srv.URL, http.MethodGet, domain.FormatGet, "")

	assert.Equal(t, domain.DefaultUserAgent, gotUA)
}
