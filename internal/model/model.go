package model

import (
	"encoding/binary"
	"github.com/gostonefire/slabhashmap/internal/conf"
)

// RecordEmpty - State indicating a record that has never been in use
const RecordEmpty uint8 = 0

// RecordOccupied - State indicating a record holding a key and a value
const RecordOccupied uint8 = 1

// RecordForward - State indicating a record that redirects to another slab
const RecordForward uint8 = 2

// RecordSize - Returns the size of one record given key and value lengths.
// The payload is never smaller than what a forward pointer needs.
func RecordSize(keyLength, valueLength int) int {
	return max(keyLength+valueLength, conf.MinPayloadLength) + conf.TagLength
}

// Record - Represents one record as a window over the underlying storage, nothing is copied
type Record struct {
	buf         []byte
	keyLength   int
	valueLength int
}

// NewRecord - Returns a Record viewing buf, buf must be exactly one record long
func NewRecord(buf []byte, keyLength, valueLength int) Record {
	return Record{buf: buf, keyLength: keyLength, valueLength: valueLength}
}

// Tag - Returns the state byte of the record
func (R Record) Tag() uint8 {
	return R.buf[0]
}

// Key - Returns the key window of an occupied record
func (R Record) Key() []byte {
	start := conf.TagLength
	return R.buf[start : start+R.keyLength : start+R.keyLength]
}

// Value - Returns the value window of an occupied record
func (R Record) Value() []byte {
	start := conf.TagLength + R.keyLength
	return R.buf[start : start+R.valueLength : start+R.valueLength]
}

// SetOccupied - Marks the record as occupied, key and value are written by the caller through Key and Value
func (R Record) SetOccupied() {
	R.buf[0] = RecordOccupied
}

// SetForward - Turns the record into a forward record pointing at slabID.
// Whatever key and value the record held are overwritten.
func (R Record) SetForward(slabID uint32) {
	R.buf[0] = RecordForward
	binary.BigEndian.PutUint32(R.buf[conf.TagLength:], slabID)
}

// ForwardSlab - Returns the slab id of a forward record
func (R Record) ForwardSlab() uint32 {
	return binary.BigEndian.Uint32(R.buf[conf.TagLength:])
}

// Copy - Returns copies of the key and value bytes of the record
func (R Record) Copy() (key, value []byte) {
	key = make([]byte, R.keyLength)
	value = make([]byte, R.valueLength)
	_ = copy(key, R.Key())
	_ = copy(value, R.Value())

	return
}
