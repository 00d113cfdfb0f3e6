package configwatcher

import (
	"context"
	"path/filepath"
	"survey_backend/internal/config"
	"survey_backend/pkg/logger"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Reloader func(cfg *config.Config)

// Watcher 监听配置文件写入，防抖后重新加载并回调
type Watcher struct {
	path     string
	debounce time.Duration
	reload   Reloader
	load     func(dir string) (*config.Config, error)
}

func New(configPath string, reload Reloader) *Watcher {
	return &Watcher{
		path:     configPath,
		debounce: time.Second,
		reload:   reload,
		load:     config.LoadConfig,
	}
}

// Run 阻塞直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	// 监听目录，编辑器原子替换文件时仍能收到事件
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(w.debounce)
			}
		case <-timer.C:
			newCfg, err := w.load(filepath.Dir(absPath))
			if err != nil {
				logger.Log.Error("Failed to reload config", zap.Error(err))
				continue
			}
			logger.Log.Info("config reloaded", zap.String("path", absPath))
			w.reload(newCfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Error("Config watcher error", zap.Error(err))
		}
	}
}
