// Package store persists the pipeline state document as TOML.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	configName      = "muse"
	configType      = "toml"
	statePathKey    = "state.path"
	userConfigDir   = "muse"
	tempFilePattern = ".state-*.toml.tmp"
)

// Store implements ports.StateStore on a single TOML file. Writes go
// through a temp file and rename so a crash never leaves a half-written
// document behind.
type Store struct {
	statePath  string
	overridden bool
	mu         *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.StateStore = (*Store)(nil)

// NewStore creates a state store. The path defaults to .muse/state.toml
// under the current directory; a user-level muse.toml (in the OS config
// dir) may pin it somewhere else via the state.path key, in which case
// the pipeline configuration cannot move it.
func NewStore(cfg *viper.Viper) (*Store, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	defaultPath, err := filepath.Abs(domain.DefaultStatePath())
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve default state path")
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	if configDir, dirErr := os.UserConfigDir(); dirErr == nil {
		cfg.AddConfigPath(filepath.Join(configDir, userConfigDir))
	}
	cfg.SetDefault(statePathKey, defaultPath)

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, zerr.Wrap(err, "failed to read user config")
		}
	}

	statePath, err := normalizePath(cfg.GetString(statePathKey))
	if err != nil {
		return nil, err
	}

	return &Store{
		statePath:  statePath,
		overridden: cfg.InConfig(statePathKey),
		mu:         lockForPath(statePath),
	}, nil
}

// SetPath points the store at the pipeline's configured state path.
// A user-level override wins and keeps the store where it is. Called
// once during startup, before the engine runs.
func (s *Store) SetPath(path string) error {
	if s.overridden || path == "" {
		return nil
	}
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}
	s.statePath = normalized
	s.mu = lockForPath(normalized)
	return nil
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.statePath
}

// Load reads the persisted state document.
// Returns nil, nil if no document exists yet.
func (s *Store) Load() (*domain.StateDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStateReadFailed.Error()),
			"path", s.statePath)
	}

	var doc domain.StateDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStateDecodeFailed.Error()),
			"path", s.statePath)
	}
	if doc.Version > domain.StateVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrStateDecodeFailed, "document from a newer version"),
			"version", doc.Version)
	}
	return &doc, nil
}

// Save writes the state document atomically.
func (s *Store) Save(doc domain.StateDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.Version = domain.StateVersion

	if err := os.MkdirAll(filepath.Dir(s.statePath), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create state directory")
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStateEncodeFailed.Error())
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.statePath), tempFilePattern)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	if err := tempFile.Chmod(domain.PrivateFilePerm); err != nil {
		_ = tempFile.Close()
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	if err := tempFile.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStateWriteFailed.Error())
	}

	if err := os.Rename(tempName, s.statePath); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStateWriteFailed.Error()),
			"path", s.statePath)
	}

	cleanup = false
	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve state path"), "path", path)
	}
	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
