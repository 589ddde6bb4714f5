package gpio

import "errors"

var (
	ErrInvalidPin     = errors.New("invalid pin")
	ErrPinClaimed     = errors.New("pin already claimed")
	ErrUnknownBackend = errors.New("unknown gpio backend")
	ErrBankClosed     = errors.New("gpio bank closed")
)

// Hardware errors
var (
	ErrChipOpen     = errors.New("failed to open gpio chip")
	ErrPeriphInit   = errors.New("failed to initialize periph.io")
	ErrPinNotFound  = errors.New("failed to find pin")
	ErrNotSupported = errors.New("gpio: not supported on this platform (requires Linux)")
	ErrLineRequest  = errors.New("failed to request gpio line")
)
