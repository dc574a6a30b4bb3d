package storage

// BufferFactory - Interface for any allocator of backing buffers for a slab hash map.
// A returned buffer must be exactly size bytes long, read as all zeros before anything is written to it and stay
// valid for as long as the hash map using it lives. Releasing the buffers is up to the factory, not the hash map.
type BufferFactory interface {
	Create(size int) (buf []byte, err error)
}

// InMemoryFactory - Allocates buffers on the Go heap, they are released by the garbage collector
// once the hash map is no longer referenced.
type InMemoryFactory struct{}

// NewInMemoryFactory - Returns a new InMemoryFactory
func NewInMemoryFactory() InMemoryFactory {
	return InMemoryFactory{}
}

// Create - Returns a zeroed buffer of size bytes
func (InMemoryFactory) Create(size int) (buf []byte, err error) {
	if size <= 0 {
		err = &InvalidSize{Size: size}
		return
	}

	buf = make([]byte, size)
	return
}

var _ BufferFactory = InMemoryFactory{}
