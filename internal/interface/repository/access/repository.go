package access

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"pyroxy/internal/domain"
)

// Repository は宛先ホストのブロックリストによるアクセス制御実装.
// 設定ファイルの変更は fsnotify で検出して自動リロードする.
type Repository struct {
	mu             sync.RWMutex
	configFile     string
	blockedDomains map[string]bool
	logger         domain.Logger
}

var _ domain.AccessController = (*Repository)(nil)

// New は新しいRepositoryインスタンスを作成
func New(configFile string, logger domain.Logger) domain.AccessController {
	r := &Repository{
		configFile:     configFile,
		blockedDomains: make(map[string]bool),
		logger:         logger,
	}

	if err := r.loadConfig(); err != nil {
		logger.Error("Failed to load initial blocklist", err, map[string]interface{}{
			"file": configFile,
		})
	}

	go r.watchConfig()

	return r
}

// IsAllowed は宛先ホストがアクセスを許可されているか確認
func (r *Repository) IsAllowed(host string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	host = strings.ToLower(host)
	if r.blockedDomains[host] {
		return false, nil
	}

	// ワイルドカードドメインのチェック
	parts := strings.Split(host, ".")
	for i := 0; i < len(parts)-1; i++ {
		wildcard := "*." + strings.Join(parts[i+1:], ".")
		if r.blockedDomains[wildcard] {
			return false, nil
		}
	}

	return true, nil
}

// Reload は設定を再読み込み
func (r *Repository) Reload() error {
	return r.loadConfig()
}

// loadConfig は設定ファイルからブロックリストを読み込む
func (r *Repository) loadConfig() error {
	config, err := loadConfigFile(r.configFile)
	if err != nil {
		return err
	}

	domains := config.prepare()

	r.mu.Lock()
	r.blockedDomains = domains
	r.mu.Unlock()

	r.logger.Info("Blocklist loaded", map[string]interface{}{
		"blocked_domains": len(domains),
	})
	return nil
}

// watchConfig は設定ファイルの変更を監視して自動リロードする.
// エディタの rename-replace を拾うためディレクトリを監視対象にする.
func (r *Repository) watchConfig() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		r.logger.Error("Failed to start blocklist watcher", err, nil)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.configFile)); err != nil {
		r.logger.Error("Failed to watch blocklist directory", err, nil)
		return
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != r.configFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.loadConfig(); err != nil {
				r.logger.Error("Failed to reload blocklist", err, nil)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("Blocklist watcher error", err, nil)
		}
	}
}
