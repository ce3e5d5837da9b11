package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"pyroxy/internal/domain"
)

// Config はロガーの設定.
type Config struct {
	Level    string // debug, info, warn, error
	Format   string // console または json
	Dir      string // 空の場合はファイル出力なし
	Filename string
	Rotation *RotationConfig
}

// Repository は zerolog ベースのロガー実装. ファイル出力時は
// サイズベースのローテーションを行う.
type Repository struct {
	log  zerolog.Logger
	file *rotatingWriter
}

// Verify interface implementation.
var _ domain.Logger = (*Repository)(nil)

// New は新しいRepositoryインスタンスを作成.
func New(cfg Config) (*Repository, error) {
	writers := []io.Writer{consoleWriter(cfg.Format)}

	var file *rotatingWriter
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, err
		}

		rotation := cfg.Rotation
		if rotation == nil {
			rotation = DefaultRotationConfig()
		}

		w, err := newRotatingWriter(filepath.Join(cfg.Dir, cfg.Filename), rotation.MaxSize)
		if err != nil {
			return nil, err
		}
		file = w
		writers = append(writers, w)

		go periodicCleanup(cfg.Dir, rotation.MaxAge)
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()

	return &Repository{log: log, file: file}, nil
}

func consoleWriter(format string) io.Writer {
	if format == "json" {
		return os.Stderr
	}
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug はDEBUGレベルのログを記録.
func (r *Repository) Debug(msg string, fields map[string]interface{}) {
	r.log.Debug().Fields(fields).Msg(msg)
}

// Info はINFOレベルのログを記録.
func (r *Repository) Info(msg string, fields map[string]interface{}) {
	r.log.Info().Fields(fields).Msg(msg)
}

// Warn はWARNレベルのログを記録.
func (r *Repository) Warn(msg string, fields map[string]interface{}) {
	r.log.Warn().Fields(fields).Msg(msg)
}

// Error はERRORレベルのログを記録.
func (r *Repository) Error(msg string, err error, fields map[string]interface{}) {
	r.log.Error().Err(err).Fields(fields).Msg(msg)
}

// periodicCleanup は定期的に古いログファイルを削除.
func periodicCleanup(dir string, maxAge time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		cleanOldLogs(dir, maxAge)
	}
}

// Close はロガーのリソースを解放.
func (r *Repository) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
