package domain

import "path/filepath"

const (
	// MuseDirName is the name of the internal workspace directory.
	MuseDirName = ".muse"

	// StateFileName is the name of the persisted pipeline state document.
	StateFileName = "state.toml"

	// ConfigFileName is the name of the pipeline configuration file.
	ConfigFileName = "muse.yaml"

	// DebugLogFile is the name of the debug log file.
	DebugLogFile = "debug.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultMusePath returns the default root directory for muse metadata.
func DefaultMusePath() string {
	return MuseDirName
}

// DefaultStatePath returns the default path for the persisted state document.
// It joins .muse and state.toml.
func DefaultStatePath() string {
	return filepath.Join(MuseDirName, StateFileName)
}

// DefaultDebugLogPath returns the default path for the debug log.
// It joins .muse and debug.log.
func DefaultDebugLogPath() string {
	return filepath.Join(MuseDirName, DebugLogFile)
}
