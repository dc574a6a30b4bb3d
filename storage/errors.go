package storage

import "fmt"

// InvalidSize - Custom error to inform that a buffer of a non-positive size was requested
type InvalidSize struct {
	Size int
}

// Error - Used to notify that the requested size can not be allocated
func (E *InvalidSize) Error() string {
	return fmt.Sprintf("buffer size must be a positive value higher than 0 (zero), got %d", E.Size)
}

// FactoryClosed - Custom error to inform that a factory has been closed and can not create more buffers
type FactoryClosed struct {
	msg string
}

// Error - Used to notify that the factory is closed
func (E FactoryClosed) Error() string {
	if E.msg == "" {
		return "buffer factory closed"
	}
	return E.msg
}
