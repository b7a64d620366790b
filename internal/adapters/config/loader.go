// Package config provides the configuration loader for muse.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

var validWatchNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// Load reads the configuration file at path and returns the validated
// pipeline with defaults applied. Relative watch directories resolve
// against the pipeline root, which itself resolves against the config
// file's directory.
func (l *Loader) Load(path string) (*domain.Pipeline, error) {
	var musefile Musefile
	if err := readAndUnmarshalYAML(path, &musefile); err != nil {
		return nil, err
	}

	if musefile.Version != "" && musefile.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unknown config version %q, proceeding as version 1", musefile.Version))
	}

	root := resolveRoot(path, musefile.Root)

	pipeline := &domain.Pipeline{
		Root:         root,
		StatePath:    resolveStatePath(root, musefile.StatePath),
		InboxSize:    musefile.InboxSize,
		SessionQuota: musefile.Pool.SessionQuota,
		TotalQuota:   musefile.Pool.TotalQuota,
	}

	var err error
	pipeline.AutolinkWindow, err = parseDuration(musefile.AutolinkWindow, "autolinkWindow", domain.DefaultAutolinkWindow)
	if err != nil {
		return nil, err
	}
	pipeline.ScanInterval, err = parseDuration(musefile.ScanInterval, "scanInterval", domain.DefaultScanInterval)
	if err != nil {
		return nil, err
	}

	if pipeline.InboxSize == 0 {
		pipeline.InboxSize = domain.DefaultInboxSize
	}
	if pipeline.SessionQuota == 0 {
		pipeline.SessionQuota = domain.DefaultSessionQuota
	}
	if pipeline.TotalQuota == 0 {
		pipeline.TotalQuota = domain.DefaultTotalQuota
	}

	for _, dto := range musefile.Watches {
		spec, buildErr := buildWatchSpec(root, dto)
		if buildErr != nil {
			return nil, buildErr
		}
		pipeline.Watches = append(pipeline.Watches, spec)
	}

	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// Discover walks up from cwd looking for muse.yaml.
func (l *Loader) Discover(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func buildWatchSpec(root string, dto WatchDTO) (domain.WatchSpec, error) {
	if dto.Name != "" && !validWatchNameRegex.MatchString(dto.Name) {
		return domain.WatchSpec{}, zerr.With(zerr.Wrap(domain.ErrConfigInvalid,
			"watch name contains invalid characters"), "name", dto.Name)
	}

	kind, err := domain.ParseAssetKind(dto.Kind)
	if err != nil {
		return domain.WatchSpec{}, zerr.With(err, "watch", dto.Name)
	}

	dir := dto.Dir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	return domain.WatchSpec{
		Name:     dto.Name,
		Dir:      filepath.Clean(dir),
		Patterns: dto.Patterns,
		Kind:     kind,
	}, nil
}

func parseDuration(raw, field string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "bad duration"),
			"field", field),
			"value", raw)
	}
	if d < 0 {
		return 0, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "negative duration"),
			"field", field),
			"value", raw)
	}
	return d, nil
}

// resolveRoot resolves the pipeline root relative to the config file's directory.
func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func resolveStatePath(root, configured string) string {
	if configured == "" {
		return filepath.Join(root, domain.DefaultStatePath())
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(root, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
