//go:build !opencv

package detection

import "fmt"

// newHaar returns an error when built without the opencv tag.
func newHaar(cfg Config) (Detector, error) {
	return nil, fmt.Errorf("%w: haar backend requires a build with -tags opencv", ErrUnavailable)
}

// newYuNet returns an error when built without the opencv tag.
func newYuNet(cfg Config) (Detector, error) {
	return nil, fmt.Errorf("%w: yunet backend requires a build with -tags opencv", ErrUnavailable)
}
