package arena

import (
	"fmt"
	"github.com/gostonefire/slabhashmap/internal/conf"
	"github.com/gostonefire/slabhashmap/storage"
)

// Arena - Append only list of buffers holding fixed size slabs.
// Slab id i lives in buffer i / slabsPerBuffer at offset (i % slabsPerBuffer) * slabSize.
// Slabs are never freed and buffers are never removed.
type Arena struct {
	factory        storage.BufferFactory
	buffers        [][]byte
	slabSize       int
	slabsPerBuffer int
	slabsCounter   int64
}

// NewArena - Returns a pointer to a new Arena with slab 0 allocated.
//   - factory is used for every buffer, including the first one
//   - slabSize is the size of one slab in bytes
//   - slabsPerBuffer is how many slabs one buffer holds, it must be at least 1
func NewArena(factory storage.BufferFactory, slabSize, slabsPerBuffer int) (arena *Arena, err error) {
	if slabSize <= 0 || slabsPerBuffer <= 0 {
		err = fmt.Errorf("slab size (%d) and slabs per buffer (%d) must be positive", slabSize, slabsPerBuffer)
		return
	}

	a := &Arena{
		factory:        factory,
		slabSize:       slabSize,
		slabsPerBuffer: slabsPerBuffer,
	}

	err = a.addBuffer()
	if err != nil {
		return
	}
	a.slabsCounter = 1

	arena = a
	return
}

// AddressOf - Returns where slab id lives
func (A *Arena) AddressOf(slabID int64) (bufferIndex int, byteOffset int) {
	bufferIndex = int(slabID / int64(A.slabsPerBuffer))
	byteOffset = int(slabID%int64(A.slabsPerBuffer)) * A.slabSize
	return
}

// Slab - Returns the bytes of an allocated slab, the slice aliases the owning buffer
func (A *Arena) Slab(slabID int64) (slab []byte, err error) {
	if slabID < 0 || slabID >= A.slabsCounter {
		err = fmt.Errorf("slab %d not allocated, total slabs %d", slabID, A.slabsCounter)
		return
	}

	bufferIndex, byteOffset := A.AddressOf(slabID)
	slab = A.buffers[bufferIndex][byteOffset : byteOffset+A.slabSize : byteOffset+A.slabSize]

	return
}

// Reserve - Allocates count consecutive slab ids. Buffers are requested from the factory only for slabs
// falling outside the buffers already held. Either every slab is allocated or nothing is changed, buffers
// obtained before a failing request are dropped again.
//
// It returns:
//   - firstID is the id of the first new, empty slab, the others follow it
//   - newBuffers is the number of buffers added to hold them
//   - err is a standard error if the factory failed or the id space is exhausted
func (A *Arena) Reserve(count int) (firstID int64, newBuffers int, err error) {
	if count <= 0 {
		err = fmt.Errorf("number of slabs to reserve must be positive, got %d", count)
		return
	}

	firstID = A.slabsCounter
	lastID := firstID + int64(count) - 1
	if lastID > conf.MaxSlabID {
		err = fmt.Errorf("slab id space exhausted at %d slabs", lastID)
		return
	}

	held := len(A.buffers)
	lastBuffer, _ := A.AddressOf(lastID)
	for len(A.buffers) <= lastBuffer {
		err = A.addBuffer()
		if err != nil {
			clear(A.buffers[held:])
			A.buffers = A.buffers[:held]
			return
		}
	}

	newBuffers = len(A.buffers) - held
	A.slabsCounter += int64(count)

	return
}

// SlabsCounter - Returns the number of allocated slabs, which is also the next slab id
func (A *Arena) SlabsCounter() int64 {
	return A.slabsCounter
}

// Buffers - Returns the number of buffers held
func (A *Arena) Buffers() int {
	return len(A.buffers)
}

// BufferSize - Returns the size in bytes of every buffer
func (A *Arena) BufferSize() int {
	return A.slabSize * A.slabsPerBuffer
}

// addBuffer - Requests one more buffer from the factory and checks what came back
func (A *Arena) addBuffer() (err error) {
	size := A.BufferSize()
	buf, err := A.factory.Create(size)
	if err != nil {
		return
	}
	if len(buf) != size {
		err = fmt.Errorf("buffer factory returned %d bytes, expected %d", len(buf), size)
		return
	}

	A.buffers = append(A.buffers, buf)

	return
}
