package metrics

import (
	"encoding/json"
	"os"

	"pyroxy/internal/domain"
)

// SaveMetrics はスナップショットをファイルに保存. 一時ファイル経由で
// アトミックに置き換える.
func (r *Repository) SaveMetrics(snapshot *domain.MetricsSnapshot) error {
	if r.metricsFile == "" {
		return nil
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tempFile := r.metricsFile + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tempFile, r.metricsFile)
}
