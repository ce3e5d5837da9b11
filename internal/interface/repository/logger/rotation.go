package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RotationConfig はログローテーションの設定を表す.
type RotationConfig struct {
	MaxSize int64         // バイト単位の最大サイズ
	MaxAge  time.Duration // ログファイルの最大保持期間
}

// DefaultRotationConfig はデフォルトのログローテーション設定を返す.
func DefaultRotationConfig() *RotationConfig {
	return &RotationConfig{
		MaxSize: 100 * 1024 * 1024,  // 100MB
		MaxAge:  7 * 24 * time.Hour, // 7日
	}
}

// rotatingWriter はサイズ上限に達するとファイルをローテーションする
// io.Writer 実装.
type rotatingWriter struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	maxSize int64
	size    int64
}

func newRotatingWriter(path string, maxSize int64) (*rotatingWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	var size int64
	if info, err := file.Stat(); err == nil {
		size = info.Size()
	}

	return &rotatingWriter{
		path:    path,
		file:    file,
		maxSize: maxSize,
		size:    size,
	}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate は現在のファイルをタイムスタンプ付きの名前に退避して開き直す.
func (w *rotatingWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}

	rotated := fmt.Sprintf("%s.%s", w.path, time.Now().Format("20060102150405"))
	if err := os.Rename(w.path, rotated); err != nil {
		return err
	}

	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	w.file = file
	w.size = 0
	return nil
}

func (w *rotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// cleanOldLogs は保持期間を過ぎたローテーション済みログを削除.
func cleanOldLogs(directory string, maxAge time.Duration) error {
	files, err := filepath.Glob(filepath.Join(directory, "*.log.*"))
	if err != nil {
		return err
	}

	now := time.Now()
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge {
			os.Remove(f)
		}
	}

	return nil
}
