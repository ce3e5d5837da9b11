package fetcher

import (
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decodeCharset は指定文字セットのバイト列を UTF-8 文字列にデコードする.
// 未知の文字セット名や変換エラーの場合は error を返す.
func decodeCharset(data []byte, charset string) (string, error) {
	decoded, err := transcodeToUTF8(data, charset)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// transcodeToUTF8 は指定文字セットのバイト列を UTF-8 に変換する.
func transcodeToUTF8(data []byte, charset string) ([]byte, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	converted, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return converted, nil
}

// decodeUTF8Replace は不正なシーケンスを U+FFFD に置き換えて UTF-8 として
// デコードする.
func decodeUTF8Replace(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}
