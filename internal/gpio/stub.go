//go:build !linux

package gpio

// ChipBank is not available on non-Linux platforms.
type ChipBank struct{}

// NewChipBank returns an error on non-Linux platforms.
func NewChipBank(name string) (*ChipBank, error) {
	return nil, ErrNotSupported
}

// Claim is not implemented on non-Linux platforms.
func (b *ChipBank) Claim(offset int) (Pin, error) {
	return nil, ErrNotSupported
}

// Close is not implemented on non-Linux platforms.
func (b *ChipBank) Close() error {
	return nil
}
