//go:build !linux

package gpio

// RealChip is not available on non-Linux platforms.
type RealChip struct{}

// NewRealChip returns ErrUnsupported on non-Linux platforms.
func NewRealChip(name string) (*RealChip, error) {
	return nil, ErrUnsupported
}

func (c *RealChip) InstallEdgeHandler(h EdgeHandler) {}

func (c *RealChip) RequestInput(offset int, pull Pull) (Line, error) {
	return nil, ErrUnsupported
}

func (c *RealChip) RequestOutput(offset int, initial int) (Line, error) {
	return nil, ErrUnsupported
}

func (c *RealChip) Close() error {
	return nil
}
