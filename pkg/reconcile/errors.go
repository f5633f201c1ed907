package reconcile

import "errors"

var (
	// ErrNoValidSource indicates that no source produced a valid quote this pass.
	ErrNoValidSource = errors.New("no valid source")
	// ErrNoSourcesConfigured indicates that the reconciler has no sources.
	ErrNoSourcesConfigured = errors.New("no sources configured")
)
