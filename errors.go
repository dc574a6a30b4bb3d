package slabhashmap

import "fmt"

// NoRecordFound - Custom error to inform that no record was found
type NoRecordFound struct {
	msg string
}

// Error - Used to notify that no record was found
func (E NoRecordFound) Error() string {
	if E.msg == "" {
		return "no record found"
	}
	return E.msg
}

// RegionTooSmall - Custom error to inform that the target region size can not hold even one slab
type RegionTooSmall struct {
	TargetRegionSize int
	MinimumSize      int
}

// Error - Used to notify that the target region size is too small, along with the size needed
func (E RegionTooSmall) Error() string {
	return fmt.Sprintf("target region size %d too small, need at least %d", E.TargetRegionSize, E.MinimumSize)
}

// CorruptSlab - Custom error to inform that a forward record points at a slab that was never allocated
type CorruptSlab struct {
	SlabID       uint32
	SlabsCounter int64
}

// Error - Used to notify a corrupt forward pointer
func (E CorruptSlab) Error() string {
	return fmt.Sprintf("corrupt slabs, slab %d referenced but total slabs is %d", E.SlabID, E.SlabsCounter)
}

// UnknownRecordTag - Custom error to inform that a record carries a state byte that is not known
type UnknownRecordTag struct {
	Tag uint8
}

// Error - Used to notify an unknown record state
func (E UnknownRecordTag) Error() string {
	return fmt.Sprintf("unknown record tag %d", E.Tag)
}

// ChainTooDeep - Custom error to inform that two keys sharing a bucket would still share one after as many
// forward hops as the MaxForwardDepth and MaxMaterialLength options permit.
// It is detected before anything is written, the record being set is not stored and the hash map is unchanged.
type ChainTooDeep struct {
	Depth int
}

// Error - Used to notify that the forward chain is too deep
func (E ChainTooDeep) Error() string {
	return fmt.Sprintf("keys still share a bucket at forward depth %d, limit reached and nothing written", E.Depth)
}

// GrowthFailed - Custom error to inform that a new buffer could not be allocated.
// Nothing has been changed in the hash map when this is returned.
type GrowthFailed struct {
	err error
}

// Error - Used to notify that the hash map could not grow
func (E GrowthFailed) Error() string {
	return fmt.Sprintf("failed to allocate buffer for new slab: %s", E.err)
}

// Unwrap - Returns the error from the buffer factory
func (E GrowthFailed) Unwrap() error {
	return E.err
}
