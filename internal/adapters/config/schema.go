package config

// Musefile represents the structure of the muse.yaml configuration file.
type Musefile struct {
	Version        string     `yaml:"version"`
	Root           string     `yaml:"root"`
	StatePath      string     `yaml:"statePath"`
	AutolinkWindow string     `yaml:"autolinkWindow"`
	ScanInterval   string     `yaml:"scanInterval"`
	InboxSize      int        `yaml:"inboxSize"`
	Pool           PoolDTO    `yaml:"pool"`
	Watches        []WatchDTO `yaml:"watches"`
}

// PoolDTO represents the resource pool quotas in the configuration.
type PoolDTO struct {
	SessionQuota int `yaml:"sessionQuota"`
	TotalQuota   int `yaml:"totalQuota"`
}

// WatchDTO represents a watched directory in the configuration.
type WatchDTO struct {
	Name     string   `yaml:"name"`
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
	Kind     string   `yaml:"kind"`
}
