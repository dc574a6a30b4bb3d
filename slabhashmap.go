package slabhashmap

import (
	"context"
	"fmt"
	"github.com/gostonefire/slabhashmap/hashfunc"
	"github.com/gostonefire/slabhashmap/internal/arena"
	"github.com/gostonefire/slabhashmap/internal/model"
	"github.com/gostonefire/slabhashmap/internal/stats"
	"github.com/gostonefire/slabhashmap/storage"
	"github.com/gostonefire/slabhashmap/strategy"
	"go.uber.org/zap"
	"time"
)

// HashMapInfo - Information structure describing the layout of a slab hash map
//   - RecordSize is the size of one record, tag byte included
//   - SlabSize is NumHashBuckets * RecordSize
//   - SlabsPerBuffer is the number of slabs held by each buffer
//   - BufferSize is the size of each buffer requested from the buffer factory
//   - Slabs is the number of slabs allocated so far
//   - Buffers is the number of buffers allocated so far
type HashMapInfo struct {
	Name            string
	NumHashBuckets  int
	KeyLength       int
	ValueLength     int
	RecordSize      int
	SlabSize        int
	SlabsPerBuffer  int
	BufferSize      int
	Slabs           int64
	Buffers         int
	CollisionPolicy CollisionPolicy
}

// HashMapStat - Counters on the usage of a slab hash map
type HashMapStat = stats.Snapshot

// SlabHashMap - The main implementation struct.
// It is not safe for concurrent use, callers sharing a SlabHashMap between goroutines must serialize access.
type SlabHashMap[K, V any] struct {
	name            string
	strategy        strategy.HashStrategy[K, V]
	hashFunction    hashfunc.HashFunction
	arena           *arena.Arena
	numHashBuckets  int
	keyLength       int
	valueLength     int
	recordSize      int
	slabSize        int
	slabsPerBuffer  int
	collisionPolicy CollisionPolicy
	maxForwardDepth int
	maxMaterial     int
	logger          *zap.Logger
	stats           *stats.Stats
}

// NewSlabHashMap - Returns a new slab hash map with its first buffer, holding slab 0, already allocated.
//   - opts carries bucket count, target region size and collision policy, see DefaultOptions
//   - factory allocates the buffers, it decides whether the hash map lives on the heap or in mapped files
//   - hashStrategy encodes and decodes keys and values of fixed width
//   - hashFunction produces the digests used to select buckets
//
// It returns:
//   - slabHashMap is a pointer to a SlabHashMap struct
//   - hashMapInfo is a HashMapInfo struct describing the layout of the hash map created.
//   - err is of type RegionTooSmall if opts.TargetRegionSize can not hold one slab, otherwise a standard error
func NewSlabHashMap[K, V any](
	opts Options,
	factory storage.BufferFactory,
	hashStrategy strategy.HashStrategy[K, V],
	hashFunction hashfunc.HashFunction,
) (
	slabHashMap *SlabHashMap[K, V],
	hashMapInfo HashMapInfo,
	err error,
) {
	// Check collaborators
	if factory == nil || hashStrategy == nil || hashFunction == nil {
		err = fmt.Errorf("buffer factory, hash strategy and hash function must all be given")
		return
	}

	// Check if numHashBuckets is valid
	if opts.NumHashBuckets <= 0 {
		err = fmt.Errorf("number of hash buckets must be a positive value higher than 0 (zero)")
		return
	}

	// Check key and value sizes
	err = strategy.Validate(hashStrategy)
	if err != nil {
		return
	}

	keyLength := hashStrategy.KeySize()
	valueLength := hashStrategy.ValueSize()
	recordSize := model.RecordSize(keyLength, valueLength)
	slabSize := opts.NumHashBuckets * recordSize
	slabsPerBuffer := opts.TargetRegionSize / slabSize
	if slabsPerBuffer < 1 {
		err = RegionTooSmall{TargetRegionSize: opts.TargetRegionSize, MinimumSize: slabSize}
		return
	}

	maxForwardDepth := opts.MaxForwardDepth
	if maxForwardDepth <= 0 {
		maxForwardDepth = DefaultOptions().MaxForwardDepth
	}

	maxMaterial := opts.MaxMaterialLength
	if maxMaterial <= 0 {
		maxMaterial = DefaultOptions().MaxMaterialLength
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.With(zap.String("hashmap", opts.Name))

	a, err := arena.NewArena(factory, slabSize, slabsPerBuffer)
	if err != nil {
		err = fmt.Errorf("error while allocating first buffer: %w", err)
		return
	}

	slabHashMap = &SlabHashMap[K, V]{
		name:            opts.Name,
		strategy:        hashStrategy,
		hashFunction:    hashFunction,
		arena:           a,
		numHashBuckets:  opts.NumHashBuckets,
		keyLength:       keyLength,
		valueLength:     valueLength,
		recordSize:      recordSize,
		slabSize:        slabSize,
		slabsPerBuffer:  slabsPerBuffer,
		collisionPolicy: opts.CollisionPolicy,
		maxForwardDepth: maxForwardDepth,
		maxMaterial:     maxMaterial,
		logger:          logger,
		stats:           &stats.Stats{},
	}
	slabHashMap.stats.SlabAllocations.Inc()
	slabHashMap.stats.BufferAllocations.Inc()

	hashMapInfo = slabHashMap.Info()

	logger.Info("created slab hash map",
		zap.Int("num_hash_buckets", hashMapInfo.NumHashBuckets),
		zap.Int("record_size", hashMapInfo.RecordSize),
		zap.Int("slabs_per_buffer", hashMapInfo.SlabsPerBuffer),
		zap.Int("buffer_size", hashMapInfo.BufferSize),
		zap.Stringer("collision_policy", hashMapInfo.CollisionPolicy),
	)

	return
}

// Info - Returns the layout of the hash map and how many slabs and buffers it has allocated
func (S *SlabHashMap[K, V]) Info() (hashMapInfo HashMapInfo) {
	hashMapInfo = HashMapInfo{
		Name:            S.name,
		NumHashBuckets:  S.numHashBuckets,
		KeyLength:       S.keyLength,
		ValueLength:     S.valueLength,
		RecordSize:      S.recordSize,
		SlabSize:        S.slabSize,
		SlabsPerBuffer:  S.slabsPerBuffer,
		BufferSize:      S.arena.BufferSize(),
		Slabs:           S.arena.SlabsCounter(),
		Buffers:         S.arena.Buffers(),
		CollisionPolicy: S.collisionPolicy,
	}

	return
}

// Stat - Returns a snapshot of the usage counters
func (S *SlabHashMap[K, V]) Stat() HashMapStat {
	return S.stats.Snapshot()
}

// RunStatsReporter - Publishes the usage counters to prometheus every interval until ctx is done.
// It blocks, so run it in its own goroutine. It only reads atomic counters and may run alongside the owner
// of the hash map.
func (S *SlabHashMap[K, V]) RunStatsReporter(ctx context.Context, interval time.Duration) {
	S.stats.RunReporter(ctx, S.name, interval)
}
