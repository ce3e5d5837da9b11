package usecase

import (
	"time"

	"pyroxy/internal/domain"
)

// MetricsUseCase はメトリクス関連のユースケースを実装
type MetricsUseCase struct {
	metrics      domain.MetricsCollector
	logger       domain.Logger
	saveInterval time.Duration
	done         chan struct{}
}

// MetricsConfig はメトリクスの設定を表す
type MetricsConfig struct {
	SaveInterval time.Duration
}

// NewMetricsUseCase は新しいMetricsUseCaseインスタンスを作成
func NewMetricsUseCase(
	metrics domain.MetricsCollector, logger domain.Logger, config MetricsConfig,
) *MetricsUseCase {
	if config.SaveInterval == 0 {
		config.SaveInterval = 1 * time.Minute
	}

	uc := &MetricsUseCase{
		metrics:      metrics,
		logger:       logger,
		saveInterval: config.SaveInterval,
		done:         make(chan struct{}),
	}

	go uc.startPeriodicSave()
	return uc
}

// Stop はメトリクス収集を停止
func (uc *MetricsUseCase) Stop() {
	close(uc.done)
}

// startPeriodicSave は定期的なメトリクス保存を開始
func (uc *MetricsUseCase) startPeriodicSave() {
	ticker := time.NewTicker(uc.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := uc.saveMetrics(); err != nil {
				uc.logger.Error("Failed to save metrics", err, nil)
			}
		case <-uc.done:
			uc.logger.Info("Stopping periodic metrics save", nil)
			return
		}
	}
}

// saveMetrics は現在のメトリクスを保存
func (uc *MetricsUseCase) saveMetrics() error {
	// メトリクスの保存処理をリポジトリに委譲
	if saver, ok := uc.metrics.(interface {
		SaveMetrics(*domain.MetricsSnapshot) error
	}); ok {
		return saver.SaveMetrics(uc.metrics.Snapshot())
	}

	return nil
}

// GetMetricsSnapshot は現在のメトリクスのスナップショットを取得
func (uc *MetricsUseCase) GetMetricsSnapshot() *domain.MetricsSnapshot {
	return uc.metrics.Snapshot()
}

// GetPrometheusMetrics はPrometheus形式のメトリクスを取得
func (uc *MetricsUseCase) GetPrometheusMetrics() string {
	return uc.metrics.Snapshot().ToPrometheusFormat()
}
