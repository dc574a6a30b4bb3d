package slabhashmap

import (
	"github.com/gostonefire/slabhashmap/internal/conf"
	"go.uber.org/zap"
)

// CollisionPolicy - What happens to the record occupying a bucket when a different key lands on it
type CollisionPolicy uint8

const (
	// RelocateOccupant - The occupant is moved into the newly allocated slab before the insert continues,
	// no record is ever lost
	RelocateOccupant CollisionPolicy = iota
	// DiscardOccupant - The occupant is overwritten by the forward record and can no longer be found.
	// Kept for compatibility with tables built by earlier versions of the algorithm.
	DiscardOccupant
)

// String - Returns the name of the policy
func (C CollisionPolicy) String() string {
	switch C {
	case RelocateOccupant:
		return "relocate"
	case DiscardOccupant:
		return "discard"
	default:
		return "unknown"
	}
}

// Options - Construction parameters of a slab hash map
//   - Name is used in logs and as label when reporting stats
//   - NumHashBuckets is the number of records in each slab
//   - TargetRegionSize is the size in bytes each buffer aims for, buffers hold as many whole slabs as fit
//   - CollisionPolicy decides the fate of an occupant when another key collides with it
//   - MaxForwardDepth limits how many forward hops a chain may have
//   - MaxMaterialLength limits the size in bytes of the key material hashed along a chain, it grows by one
//     digest per hop and doubles per hop with the identity hash
//   - Logger is the zap logger to use, zap.L() if nil
type Options struct {
	Name              string
	NumHashBuckets    int
	TargetRegionSize  int
	CollisionPolicy   CollisionPolicy
	MaxForwardDepth   int
	MaxMaterialLength int
	Logger            *zap.Logger
}

// DefaultOptions - Returns options with 4096 buckets per slab and 16MB buffers
func DefaultOptions() Options {
	return Options{
		Name:              "",
		NumHashBuckets:    4096,
		TargetRegionSize:  1 << 24,
		CollisionPolicy:   RelocateOccupant,
		MaxForwardDepth:   conf.DefaultMaxForwardDepth,
		MaxMaterialLength: conf.DefaultMaxMaterialLength,
		Logger:            nil,
	}
}

// WithName - Sets the name used in logs and stats labels
func (o Options) WithName(name string) Options {
	o.Name = name
	return o
}

// WithNumHashBuckets - Sets the number of records in each slab
func (o Options) WithNumHashBuckets(n int) Options {
	o.NumHashBuckets = n
	return o
}

// WithTargetRegionSize - Sets the size in bytes each buffer aims for
func (o Options) WithTargetRegionSize(size int) Options {
	o.TargetRegionSize = size
	return o
}

// WithCollisionPolicy - Sets what happens to an occupant when another key collides with it
func (o Options) WithCollisionPolicy(policy CollisionPolicy) Options {
	o.CollisionPolicy = policy
	return o
}

// WithMaxForwardDepth - Sets the limit on forward hops in a chain
func (o Options) WithMaxForwardDepth(depth int) Options {
	o.MaxForwardDepth = depth
	return o
}

// WithLogger - Sets the zap logger, zap.L() is used if nil
func (o Options) WithLogger(logger *zap.Logger) Options {
	o.Logger = logger
	return o
}

// WithMaxMaterialLength - Sets the cap on key material hashed along a chain
func (o Options) WithMaxMaterialLength(length int) Options {
	o.MaxMaterialLength = length
	return o
}
