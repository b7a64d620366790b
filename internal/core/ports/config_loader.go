package ports

import "go.trai.ch/muse/internal/core/domain"

// ConfigLoader defines the interface for loading the pipeline configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads and validates the configuration file at path and
	// returns the pipeline with defaults applied.
	Load(path string) (*domain.Pipeline, error)

	// Discover walks up from cwd to find the configuration file.
	// Returns the path of the nearest muse.yaml.
	Discover(cwd string) (string, error)
}
