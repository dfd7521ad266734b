package pano

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports a graph wired incorrectly: dangling hotspot
	// targets, degenerate directions, changes after activation.
	ErrConfiguration = errors.New("pano: configuration error")

	// ErrInvalidState reports API misuse such as activating twice.
	ErrInvalidState = errors.New("pano: invalid state")

	// ErrAssetLoad is matched by every *AssetLoadError.
	ErrAssetLoad = errors.New("pano: asset load failed")
)

// AssetLoadError is returned when a node's panorama cannot be loaded. The
// scene is left as it was before the call.
type AssetLoadError struct {
	Node string
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("pano: loading panorama %q for node %q: %v", e.Path, e.Node, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAssetLoad) true.
func (e *AssetLoadError) Is(target error) bool {
	return target == ErrAssetLoad
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func stateErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
