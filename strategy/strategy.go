package strategy

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HashStrategy - Interface for encoding keys and values of fixed width into records and decoding them back.
// The sizes must stay the same for the lifetime of a hash map since the whole record layout depends on them.
// Every buf handed to the Into and From functions is exactly KeySize or ValueSize bytes long and is a window
// directly over storage.
type HashStrategy[K, V any] interface {
	// KeySize - Returns the encoded length of a key
	KeySize() int
	// ValueSize - Returns the encoded length of a value
	ValueSize() int
	// KeyInto - Encodes key into buf
	KeyInto(buf []byte, key K)
	// ValueInto - Encodes value into buf
	ValueInto(buf []byte, value V)
	// KeyFrom - Decodes a key from buf
	KeyFrom(buf []byte) K
	// ValueFrom - Decodes a value from buf. A value type that references buf instead of copying it gives
	// callers a view that writes straight through to storage.
	ValueFrom(buf []byte) V
	// KeyCompare - Compares two keys, only 0 (zero) meaning equal is relied upon
	KeyCompare(a, b K) int
}

// Validate - Checks that the sizes reported by s can be used to build a record layout
func Validate[K, V any](s HashStrategy[K, V]) (err error) {
	if s.KeySize() <= 0 {
		err = fmt.Errorf("key size must be a positive value higher than 0 (zero)")
		return
	}
	if s.ValueSize() < 0 {
		err = fmt.Errorf("value size can not be negative")
		return
	}

	return
}

// Bytes - Strategy for fixed length byte slice keys and values.
// ValueFrom returns a slice over the record itself so changes to it are written through to storage.
type Bytes struct {
	keyLength   int
	valueLength int
}

// NewBytes - Returns a Bytes strategy for keys of keyLength and values of valueLength bytes
func NewBytes(keyLength, valueLength int) Bytes {
	return Bytes{keyLength: keyLength, valueLength: valueLength}
}

// KeySize - Returns the key length
func (B Bytes) KeySize() int { return B.keyLength }

// ValueSize - Returns the value length
func (B Bytes) ValueSize() int { return B.valueLength }

// KeyInto - Copies key into buf, a key of wrong length is truncated or zero padded
func (B Bytes) KeyInto(buf []byte, key []byte) {
	clear(buf[copy(buf, key):])
}

// ValueInto - Copies value into buf, a value of wrong length is truncated or zero padded
func (B Bytes) ValueInto(buf []byte, value []byte) {
	clear(buf[copy(buf, value):])
}

// KeyFrom - Returns a copy of the key in buf
func (B Bytes) KeyFrom(buf []byte) []byte {
	key := make([]byte, len(buf))
	_ = copy(key, buf)
	return key
}

// ValueFrom - Returns buf itself
func (B Bytes) ValueFrom(buf []byte) []byte {
	return buf
}

// KeyCompare - Lexicographic comparison of the keys as KeyInto stores them, so a key of wrong length
// compares equal to its truncated or zero padded form
func (B Bytes) KeyCompare(a, b []byte) int {
	return bytes.Compare(B.fitKey(a), B.fitKey(b))
}

// fitKey - Returns key truncated or zero padded to the key length
func (B Bytes) fitKey(key []byte) []byte {
	if len(key) == B.keyLength {
		return key
	}
	fitted := make([]byte, B.keyLength)
	_ = copy(fitted, key)
	return fitted
}

// Int32 - Strategy for int32 keys and int32 values, both big endian
type Int32 struct{}

// KeySize - 4 bytes
func (Int32) KeySize() int { return 4 }

// ValueSize - 4 bytes
func (Int32) ValueSize() int { return 4 }

// KeyInto - Writes key big endian
func (Int32) KeyInto(buf []byte, key int32) {
	binary.BigEndian.PutUint32(buf, uint32(key))
}

// ValueInto - Writes value big endian
func (Int32) ValueInto(buf []byte, value int32) {
	binary.BigEndian.PutUint32(buf, uint32(value))
}

// KeyFrom - Reads a big endian key
func (Int32) KeyFrom(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf))
}

// ValueFrom - Reads a big endian value
func (Int32) ValueFrom(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf))
}

// KeyCompare - Numeric comparison
func (Int32) KeyCompare(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Float32View - Fixed length vector of float32 values backed directly by a record's value bytes
type Float32View struct {
	buf []byte
}

// Len - Number of elements
func (F Float32View) Len() int {
	return len(F.buf) / 4
}

// Get - Returns element i
func (F Float32View) Get(i int) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(F.buf[i*4:]))
}

// Set - Sets element i, the change is visible to later lookups of the same key
func (F Float32View) Set(i int, v float32) {
	binary.BigEndian.PutUint32(F.buf[i*4:], math.Float32bits(v))
}

// Values - Returns a copy of all elements
func (F Float32View) Values() []float32 {
	values := make([]float32, F.Len())
	for i := range values {
		values[i] = F.Get(i)
	}
	return values
}

// CopyFrom - Sets elements from values, extra values are ignored
func (F Float32View) CopyFrom(values []float32) {
	for i := 0; i < F.Len() && i < len(values); i++ {
		F.Set(i, values[i])
	}
}

// Float32Values - Returns a Float32View backed by its own memory holding values
func Float32Values(values ...float32) Float32View {
	view := Float32View{buf: make([]byte, 4*len(values))}
	view.CopyFrom(values)
	return view
}

// Float32Vector - Strategy for int32 keys mapping to vectors of float32 values of a fixed dimension.
// Values read back are views over storage.
type Float32Vector struct {
	dimension int
}

// NewFloat32Vector - Returns a Float32Vector strategy for vectors of dimension elements
func NewFloat32Vector(dimension int) Float32Vector {
	return Float32Vector{dimension: dimension}
}

// KeySize - 4 bytes
func (Float32Vector) KeySize() int { return 4 }

// ValueSize - 4 bytes per element
func (F Float32Vector) ValueSize() int { return 4 * F.dimension }

// KeyInto - Writes key big endian
func (Float32Vector) KeyInto(buf []byte, key int32) {
	Int32{}.KeyInto(buf, key)
}

// ValueInto - Writes the elements of value, missing elements are written as zero
func (F Float32Vector) ValueInto(buf []byte, value Float32View) {
	clear(buf[copy(buf, value.buf):])
}

// KeyFrom - Reads a big endian key
func (Float32Vector) KeyFrom(buf []byte) int32 {
	return Int32{}.KeyFrom(buf)
}

// ValueFrom - Returns a view over buf
func (Float32Vector) ValueFrom(buf []byte) Float32View {
	return Float32View{buf: buf}
}

// KeyCompare - Numeric comparison
func (Float32Vector) KeyCompare(a, b int32) int {
	return Int32{}.KeyCompare(a, b)
}

var (
	_ HashStrategy[[]byte, []byte]     = Bytes{}
	_ HashStrategy[int32, int32]       = Int32{}
	_ HashStrategy[int32, Float32View] = Float32Vector{}
)
