//go:build !linux

package sockio

// Default returns the platform control channel. Only Linux has one; use a
// SimChannel elsewhere.
func Default() (Channel, error) {
	return nil, ErrUnsupported
}
