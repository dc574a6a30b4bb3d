package slabhashmap

import (
	"errors"
	"github.com/gostonefire/slabhashmap/internal/hash"
	"github.com/gostonefire/slabhashmap/internal/model"
	"github.com/gostonefire/slabhashmap/internal/overflow"
	"go.uber.org/zap"
)

// Get - Gets the value stored for key.
// The search stops at the first bucket that is empty or holds another key, only forward records are followed.
//   - key is the key to look for
//
// It returns:
//   - value is the value of the matching record if found. Depending on the hash strategy it may be a view
//     directly over storage, changes made through it are seen by later calls to Get without any Set.
//     Such a view must not be used after the buffers of the hash map are released.
//   - err is of type NoRecordFound if there is no record for key, CorruptSlab or UnknownRecordTag if the
//     structure is damaged
func (S *SlabHashMap[K, V]) Get(key K) (value V, err error) {
	S.stats.Gets.Inc()

	chain := overflow.NewChain(S.encodeKey(key))

	var digest []byte
	var record model.Record
	var slabID uint32
	for {
		digest, record, err = S.locate(chain)
		if err != nil {
			return
		}

		switch record.Tag() {
		case model.RecordEmpty:
			S.stats.Misses.Inc()
			err = NoRecordFound{}
			return

		case model.RecordOccupied:
			if S.strategy.KeyCompare(key, S.strategy.KeyFrom(record.Key())) != 0 {
				S.stats.Misses.Inc()
				err = NoRecordFound{}
				return
			}
			S.stats.Hits.Inc()
			value = S.strategy.ValueFrom(record.Value())
			return

		case model.RecordForward:
			slabID, err = S.forwardTarget(record, chain)
			if err != nil {
				return
			}
			S.stats.ForwardHops.Inc()
			chain.Forward(slabID, digest)

		default:
			err = S.unknownTag(record, chain)
			return
		}
	}
}

// Contains - Returns true if there is a record for key
func (S *SlabHashMap[K, V]) Contains(key K) (found bool, err error) {
	_, err = S.Get(key)
	if errors.Is(err, NoRecordFound{}) {
		err = nil
		return
	}
	found = err == nil

	return
}

// Set - Updates an existing record with a new value or adds it if no record exists for key.
// A key landing on a bucket held by a different key turns that bucket into a forward record pointing at a new
// slab, what happens to the previous occupant is decided by the CollisionPolicy of the hash map.
// With RelocateOccupant as many slabs are chained as it takes for the two keys to land in different buckets.
//   - key is the key of the record
//   - value is the value to store
//
// It returns:
//   - err is nil on success, GrowthFailed or ChainTooDeep if new slabs were needed but could not be made,
//     both are returned before anything is written so the hash map is unchanged. CorruptSlab or
//     UnknownRecordTag if the structure is damaged
func (S *SlabHashMap[K, V]) Set(key K, value V) (err error) {
	S.stats.Sets.Inc()

	keyBytes := S.encodeKey(key)
	valueBytes := make([]byte, S.valueLength)
	S.strategy.ValueInto(valueBytes, value)

	inserted, err := S.set(key, keyBytes, valueBytes, overflow.NewChain(keyBytes))
	if err != nil {
		return
	}

	if inserted {
		S.stats.Inserts.Inc()
	} else {
		S.stats.Updates.Inc()
	}

	return
}

// set - Walks chain until key can be written, forwarding to new slabs on collisions.
// It returns inserted as true if a new record was written, false if an existing one was updated.
func (S *SlabHashMap[K, V]) set(key K, keyBytes, valueBytes []byte, chain *overflow.Chain) (inserted bool, err error) {
	var digest []byte
	var record model.Record
	var slabID uint32
	for {
		digest, record, err = S.locate(chain)
		if err != nil {
			return
		}

		switch record.Tag() {
		case model.RecordEmpty:
			record.SetOccupied()
			_ = copy(record.Key(), keyBytes)
			_ = copy(record.Value(), valueBytes)
			inserted = true
			return

		case model.RecordOccupied:
			if S.strategy.KeyCompare(key, S.strategy.KeyFrom(record.Key())) == 0 {
				_ = copy(record.Value(), valueBytes)
				return
			}
			if S.collisionPolicy != DiscardOccupant {
				err = S.relocateOccupant(record, chain, digest, keyBytes, valueBytes)
				inserted = err == nil
				return
			}
			slabID, err = S.discardOccupant(record, chain, digest)
			if err != nil {
				return
			}
			chain.Forward(slabID, digest)

		case model.RecordForward:
			slabID, err = S.forwardTarget(record, chain)
			if err != nil {
				return
			}
			S.stats.ForwardHops.Inc()
			chain.Forward(slabID, digest)

		default:
			err = S.unknownTag(record, chain)
			return
		}
	}
}

// discardOccupant - Allocates a new slab and turns the occupied record into a forward record pointing at it,
// the occupant is lost. The key being set continues into the new slab where its bucket is empty.
func (S *SlabHashMap[K, V]) discardOccupant(record model.Record, chain *overflow.Chain, digest []byte) (slabID uint32, err error) {
	if chain.Depth() >= S.maxForwardDepth || len(chain.Material())+len(digest) > S.maxMaterial {
		err = ChainTooDeep{Depth: chain.Depth()}
		return
	}

	firstSlab, err := S.reserveSlabs(1)
	if err != nil {
		return
	}

	slabID = uint32(firstSlab)
	record.SetForward(slabID)
	S.stats.DiscardedOccupants.Inc()

	return
}

// relocateOccupant - Moves the occupant of record out of the way of the key being set and stores both.
// The number of slabs needed for the two keys to land in different buckets is worked out first, and they are
// all allocated before anything is written, so a failure leaves the hash map as it was.
// Each new slab but the last gets a forward record in the shared bucket, the last one gets both records.
func (S *SlabHashMap[K, V]) relocateOccupant(record model.Record, chain *overflow.Chain, digest, keyBytes, valueBytes []byte) (err error) {
	occupantKey, occupantValue := record.Copy()

	// The occupant reached this bucket along its own chain, so its material at this depth follows from its key
	occupantMaterial, occupantDigest := overflow.MaterialAt(occupantKey, chain.Depth(), S.hashFunction)

	levels, ok := overflow.SeparationLevels(
		chain.Material(), digest,
		occupantMaterial, occupantDigest,
		S.numHashBuckets, S.maxForwardDepth-chain.Depth(), S.maxMaterial,
		S.hashFunction,
	)
	if !ok {
		err = ChainTooDeep{Depth: chain.Depth() + levels}
		return
	}

	firstSlab, err := S.reserveSlabs(levels)
	if err != nil {
		return
	}

	occupant := overflow.ResumeChain(chain.SlabID(), occupantMaterial, chain.Depth())
	target, occupantTarget := record, record
	for i := 0; i < levels; i++ {
		slabID := uint32(firstSlab + int64(i))
		target.SetForward(slabID)
		chain.Forward(slabID, digest)
		occupant.Forward(slabID, occupantDigest)

		digest, target, err = S.locate(chain)
		if err != nil {
			return
		}
		occupantDigest, occupantTarget, err = S.locate(occupant)
		if err != nil {
			return
		}
	}

	occupantTarget.SetOccupied()
	_ = copy(occupantTarget.Key(), occupantKey)
	_ = copy(occupantTarget.Value(), occupantValue)

	target.SetOccupied()
	_ = copy(target.Key(), keyBytes)
	_ = copy(target.Value(), valueBytes)

	S.stats.Relocations.Inc()
	S.logger.Debug("relocated occupant",
		zap.Uint32("slab", chain.SlabID()),
		zap.Int("depth", chain.Depth()),
		zap.Int("new_slabs", levels),
	)

	return
}

// reserveSlabs - Allocates count new slabs, logging and counting any buffers added
func (S *SlabHashMap[K, V]) reserveSlabs(count int) (firstSlab int64, err error) {
	firstSlab, newBuffers, err := S.arena.Reserve(count)
	if err != nil {
		S.logger.Error("failed to grow slab hash map",
			zap.Int64("slabs", S.arena.SlabsCounter()),
			zap.Int("buffers", S.arena.Buffers()),
			zap.Int("requested_slabs", count),
			zap.Error(err),
		)
		err = GrowthFailed{err: err}
		return
	}

	S.stats.SlabAllocations.Add(uint64(count))
	if newBuffers > 0 {
		S.stats.BufferAllocations.Add(uint64(newBuffers))
		S.logger.Info("added buffers",
			zap.Int("new_buffers", newBuffers),
			zap.Int("buffers", S.arena.Buffers()),
			zap.Int64("slabs", S.arena.SlabsCounter()),
			zap.Int("buffer_size", S.arena.BufferSize()),
		)
	}

	return
}

// locate - Hashes the chain's material and returns the digest along with the record it selects in the chain's slab
func (S *SlabHashMap[K, V]) locate(chain *overflow.Chain) (digest []byte, record model.Record, err error) {
	slab, err := S.arena.Slab(int64(chain.SlabID()))
	if err != nil {
		return
	}

	digest = S.hashFunction.Hash(chain.Material())
	start := hash.BucketIndex(digest, S.numHashBuckets) * S.recordSize
	end := start + S.recordSize
	record = model.NewRecord(slab[start:end:end], S.keyLength, S.valueLength)

	return
}

// forwardTarget - Returns the slab a forward record points at, checking that it has been allocated
func (S *SlabHashMap[K, V]) forwardTarget(record model.Record, chain *overflow.Chain) (slabID uint32, err error) {
	slabID = record.ForwardSlab()
	if int64(slabID) >= S.arena.SlabsCounter() {
		err = CorruptSlab{SlabID: slabID, SlabsCounter: S.arena.SlabsCounter()}
		S.logger.Error("forward record points past allocated slabs",
			zap.Uint32("slab", chain.SlabID()),
			zap.Int("depth", chain.Depth()),
			zap.Error(err),
		)
	}

	return
}

// unknownTag - Returns and logs an UnknownRecordTag error for record
func (S *SlabHashMap[K, V]) unknownTag(record model.Record, chain *overflow.Chain) (err error) {
	err = UnknownRecordTag{Tag: record.Tag()}
	S.logger.Error("record with unknown tag",
		zap.Uint32("slab", chain.SlabID()),
		zap.Int("depth", chain.Depth()),
		zap.Error(err),
	)

	return
}

// encodeKey - Returns the encoded key, it is the material hashed in slab 0
func (S *SlabHashMap[K, V]) encodeKey(key K) (keyBytes []byte) {
	keyBytes = make([]byte, S.keyLength)
	S.strategy.KeyInto(keyBytes, key)

	return
}
