package domain

import "go.trai.ch/zerr"

var (
	// ErrAssetNotFound is returned when an operation references a path the registry has never discovered.
	ErrAssetNotFound = zerr.New("asset not found")

	// ErrUnknownAssetKind is returned when a configuration value is not a valid asset kind.
	ErrUnknownAssetKind = zerr.New("unknown asset kind")

	// ErrSessionResetOutOfOrder is returned when a session reset would move the boundary backwards.
	ErrSessionResetOutOfOrder = zerr.New("session reset out of order")

	// ErrPoolExhausted is returned when the resource pool cannot admit a request.
	ErrPoolExhausted = zerr.New("resource pool exhausted")

	// ErrHandleNotFound is returned when releasing a handle the pool does not hold.
	ErrHandleNotFound = zerr.New("resource handle not found")

	// ErrInvalidQuota is returned when pool quotas are not positive or the session quota exceeds the total.
	ErrInvalidQuota = zerr.New("invalid resource pool quota")

	// ErrViewNotFound is returned when activating or invalidating a view name that was never registered.
	ErrViewNotFound = zerr.New("view not found")

	// ErrSelfLink is returned when an association would link a path to itself.
	ErrSelfLink = zerr.New("cannot associate a path with itself")

	// ErrInvalidLink is returned when an association would not pair an image with a model.
	ErrInvalidLink = zerr.New("link must pair an image with a model")

	// ErrEngineClosed is returned when an operation is submitted after the engine loop has stopped.
	ErrEngineClosed = zerr.New("engine closed")

	// ErrEngineAlreadyStarted is returned when Start is called on a running engine.
	ErrEngineAlreadyStarted = zerr.New("engine already started")

	// ErrConfigNotFound is returned when no muse.yaml exists in cwd or any parent.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrConfigReadFailed is returned when the pipeline config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the pipeline config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the pipeline config fails validation.
	ErrConfigInvalid = zerr.New("invalid pipeline config")

	// ErrDuplicateWatch is returned when two watch registrations share a name.
	ErrDuplicateWatch = zerr.New("duplicate watch name")

	// ErrStateReadFailed is returned when the state document cannot be read.
	ErrStateReadFailed = zerr.New("failed to read state document")

	// ErrStateDecodeFailed is returned when the state document cannot be decoded.
	ErrStateDecodeFailed = zerr.New("failed to decode state document")

	// ErrStateEncodeFailed is returned when the state document cannot be encoded.
	ErrStateEncodeFailed = zerr.New("failed to encode state document")

	// ErrStateWriteFailed is returned when the state document cannot be written.
	ErrStateWriteFailed = zerr.New("failed to write state document")

	// ErrScanFailed is returned when a full directory enumeration fails.
	ErrScanFailed = zerr.New("directory scan failed")

	// ErrWatcherSetupFailed is returned when the OS watcher cannot be created.
	ErrWatcherSetupFailed = zerr.New("failed to set up file watcher")
)
