package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loads the config file and reloads it on changes.
type Loader struct {
	path string

	mu       sync.RWMutex
	config   *Config
	onChange []func(*Config)

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	errCh   chan error

	Debounce time.Duration
}

func NewLoader(path string) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		path:     path,
		ctx:      ctx,
		cancel:   cancel,
		errCh:    make(chan error, 1),
		Debounce: 100 * time.Millisecond,
	}
}

// An empty path or a missing file gives the defaults.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

func (l *Loader) read() (*Config, error) {
	cfg := DefaultConfig()
	if l.path != "" {
		if err := decodeFile(l.path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return errors.Wrap(err, "decode toml")
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "decode yaml")
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(err, "decode json")
		}
	default:
		return errors.Errorf("unsupported config format: %q", ext)
	}
	return nil
}

//----------

// Registers a callback for successful reloads. Called from the watcher
// goroutine.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload errors. The config in use is kept when a reload fails.
func (l *Loader) Errors() <-chan error {
	return l.errCh
}

// Watches the directory of the config file (editors replace files).
func (l *Loader) Watch() error {
	if l.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "watch config dir")
	}
	l.watcher = w
	go l.watchLoop()
	return nil
}

func (l *Loader) watchLoop() {
	var timer *time.Timer
	for {
		select {
		case <-l.ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != filepath.Base(l.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(l.Debounce, l.reload)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.sendErr(err)
		}
	}
}

func (l *Loader) reload() {
	if l.ctx.Err() != nil {
		return
	}
	cfg, err := l.read()
	if err != nil {
		l.sendErr(errors.Wrap(err, "reload config"))
		return
	}
	l.mu.Lock()
	l.config = cfg
	cbs := append([]func(*Config){}, l.onChange...)
	l.mu.Unlock()
	for _, fn := range cbs {
		fn(cfg)
	}
}

func (l *Loader) sendErr(err error) {
	select {
	case l.errCh <- err:
	default:
	}
}

func (l *Loader) Close() error {
	l.cancel()
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
