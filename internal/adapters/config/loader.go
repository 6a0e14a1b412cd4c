// Package config loads workspace settings.
package config

import (
	"context"
	"path/filepath"
	"sync"

	"go.trai.ch/intellitip/internal/adapters/definition"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.SettingsLoader = (*Loader)(nil)

// Loader implements ports.SettingsLoader.
// Host settings come from intellitip.yaml at the workspace root; a project config
// under .intellitip overrides them. Project configs are cached until their file changes.
type Loader struct {
	fs      ports.FileSystem
	defs    ports.DefinitionLoader
	watcher ports.Watcher
	logger  ports.Logger

	mu      sync.Mutex
	project map[string]*domain.Object
	subs    map[string]ports.Subscription
}

// New creates a settings loader.
func New(fs ports.FileSystem, defs ports.DefinitionLoader, watcher ports.Watcher, logger ports.Logger) *Loader {
	return &Loader{
		fs:      fs,
		defs:    defs,
		watcher: watcher,
		logger:  logger,
		project: make(map[string]*domain.Object),
		subs:    make(map[string]ports.Subscription),
	}
}

// Load resolves the settings of the workspace at root.
// A relative settingsFile is resolved against root. An explicit settingsFile must exist;
// the default intellitip.yaml is optional. Invalid entries are logged and skipped.
func (l *Loader) Load(root, settingsFile string) (*domain.Settings, error) {
	host, err := l.loadHost(root, settingsFile)
	if err != nil {
		return nil, err
	}

	configFile := domain.DefaultProjectConfigPath()
	if v, ok := host.String(keyConfigFile); ok && v != "" {
		configFile = v
	}

	raw := host
	if project, ok := l.loadProject(l.resolve(root, configFile)); ok {
		raw = Merge(host, project)
	}

	settings, problems := ToSettings(raw)
	for _, p := range problems {
		l.logger.Warn("config: entry ignored: " + p.Error())
	}
	return settings, nil
}

func (l *Loader) loadHost(root, settingsFile string) (*domain.Object, error) {
	path := filepath.Join(root, domain.SettingsFileName)
	if settingsFile != "" {
		path = l.resolve(root, settingsFile)
	}

	if !l.fs.Exists(path) {
		if settingsFile != "" {
			return nil, zerr.With(domain.ErrConfigReadFailed, "path", path)
		}
		return domain.NewObject(), nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	if len(node.Content) == 0 {
		return domain.NewObject(), nil
	}

	decoded, err := definition.DecodeYAMLNode(&node)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	obj, ok := decoded.(*domain.Object)
	if !ok {
		return nil, zerr.With(domain.ErrConfigParseFailed, "path", path)
	}
	return obj, nil
}

// loadProject returns the cached project config at path, loading and watching it on a miss.
// Failures are logged and leave the host settings in effect.
func (l *Loader) loadProject(path string) (*domain.Object, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if obj, ok := l.project[path]; ok {
		return obj, true
	}
	if !l.fs.Exists(path) {
		return nil, false
	}

	value, err := l.defs.Load(context.Background(), path)
	if err != nil {
		l.logger.Warn("project config ignored: " + path)
		l.logger.Debug("config: " + zerr.Wrap(err, domain.ErrProjectConfigFailed.Error()).Error())
		return nil, false
	}
	obj, ok := value.(*domain.Object)
	if !ok {
		l.logger.Warn("project config ignored: " + path)
		l.logger.Debug("config: " + domain.ErrNotAnObject.Error() + ": " + path)
		return nil, false
	}

	if _, watched := l.subs[path]; !watched {
		sub, err := l.watcher.Watch(path, l.onChange)
		if err != nil {
			l.logger.Debug("config: project config not watched: " + err.Error())
			return obj, true
		}
		l.subs[path] = sub
	}
	l.project[path] = obj
	return obj, true
}

func (l *Loader) onChange(event ports.WatchEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.project, event.Path)
	delete(l.subs, event.Path)
	l.logger.Debug("config: dropped project config " + event.Path + " after " + event.Operation.String())
}

// Close releases every project config subscription.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for path, sub := range l.subs {
		if err := sub.Close(); err != nil {
			l.logger.Debug("config: failed to release subscription for " + path + ": " + err.Error())
		}
	}
	l.subs = make(map[string]ports.Subscription)
	l.project = make(map[string]*domain.Object)
	return nil
}

func (l *Loader) resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
