// Package scan enumerates and fingerprints pipeline assets on disk.
package scan

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/muse/internal/core/domain"
	"go.trai.ch/muse/internal/core/ports"
	"go.trai.ch/zerr"
)

// Scanner implements ports.Scanner with direct directory reads and
// XXHash content fingerprints.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

var _ ports.Scanner = (*Scanner)(nil)

// Scan enumerates the files directly under the watch directory that match
// the watch patterns. Watch directories are flat; subdirectories are not
// descended into. A directory that does not exist yet yields an empty
// result, matching the watcher's lazy treatment of missing directories.
func (s *Scanner) Scan(ctx context.Context, spec domain.WatchSpec) ([]domain.Asset, error) {
	entries, err := os.ReadDir(spec.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrScanFailed.Error()), "dir", spec.Dir)
	}

	var assets []domain.Asset
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !spec.Match(entry.Name()) {
			continue
		}

		asset, err := s.Inspect(filepath.Join(spec.Dir, entry.Name()), spec.Kind)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Vanished between the listing and the stat.
				continue
			}
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// Inspect stats and fingerprints a single file.
func (s *Scanner) Inspect(path string, kind domain.AssetKind) (domain.Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Asset{}, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	if info.IsDir() {
		return domain.Asset{}, zerr.With(zerr.Wrap(domain.ErrScanFailed, "path is a directory"), "path", path)
	}

	fingerprint, err := fingerprintFile(path)
	if err != nil {
		return domain.Asset{}, err
	}

	return domain.Asset{
		Path:        path,
		Kind:        kind,
		ModifiedAt:  info.ModTime(),
		Fingerprint: fingerprint,
	}, nil
}

// Exists reports whether path exists and is a regular file.
func (s *Scanner) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// fingerprintFile computes the XXHash of a file's content.
func fingerprintFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path comes from a configured watch
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}
