package overflow

import (
	"github.com/gostonefire/slabhashmap/hashfunc"
	"github.com/gostonefire/slabhashmap/internal/hash"
)

// Chain - Is used to follow forward records from slab to slab.
// It starts in slab 0 with the encoded key as material, and every hop appends the digest that
// resolved the previous bucket so that keys sharing a bucket diverge further down.
type Chain struct {
	slabID   uint32
	material []byte
	depth    int
}

// NewChain - Returns a pointer to a new Chain positioned at slab 0
func NewChain(keyMaterial []byte) *Chain {
	return &Chain{material: keyMaterial}
}

// ResumeChain - Returns a pointer to a Chain positioned at slabID with the given material and depth
func ResumeChain(slabID uint32, material []byte, depth int) *Chain {
	return &Chain{slabID: slabID, material: material, depth: depth}
}

// SlabID - Returns the slab the chain currently points at
func (C *Chain) SlabID() uint32 {
	return C.slabID
}

// Material - Returns the key material to hash in the current slab
func (C *Chain) Material() []byte {
	return C.material
}

// Depth - Returns the number of forward hops taken so far
func (C *Chain) Depth() int {
	return C.depth
}

// Forward - Moves the chain to slabID.
//   - slabID is the slab a forward record pointed at
//   - digest is the digest that selected the forward record
func (C *Chain) Forward(slabID uint32, digest []byte) {
	C.slabID = slabID
	C.material = hash.ExtendMaterial(C.material, digest)
	C.depth++
}

// MaterialAt - Recomputes the material a key hashes with after depth hops, along with the digest of that material.
// Forwarding only depends on the key's own material, so this is the material the key would have reached
// while walking the chain itself.
func MaterialAt(keyMaterial []byte, depth int, fn hashfunc.HashFunction) (material, digest []byte) {
	material = keyMaterial
	digest = fn.Hash(material)
	for i := 0; i < depth; i++ {
		material = hash.ExtendMaterial(material, digest)
		digest = fn.Hash(material)
	}

	return
}

// SeparationLevels - Finds how many forward hops it takes before two keys sharing a bucket land in different
// buckets, without touching any storage. Both walks start from the level where they collide.
//   - material and digest belong to one key at the level of the collision, otherMaterial and otherDigest to the other
//   - maxLevels is the number of hops that may be added
//   - maxMaterialLength caps the material either key may reach, the walk gives up rather than exceed it
//
// It returns:
//   - levels is the number of hops needed if ok, otherwise the number of hops tried
//   - ok is false if the keys still share a bucket when either limit is reached
func SeparationLevels(
	material, digest, otherMaterial, otherDigest []byte,
	numBuckets, maxLevels, maxMaterialLength int,
	fn hashfunc.HashFunction,
) (levels int, ok bool) {
	for levels < maxLevels {
		if len(material)+len(digest) > maxMaterialLength || len(otherMaterial)+len(otherDigest) > maxMaterialLength {
			return
		}

		material = hash.ExtendMaterial(material, digest)
		otherMaterial = hash.ExtendMaterial(otherMaterial, otherDigest)
		digest = fn.Hash(material)
		otherDigest = fn.Hash(otherMaterial)
		levels++

		if hash.BucketIndex(digest, numBuckets) != hash.BucketIndex(otherDigest, numBuckets) {
			ok = true
			return
		}
	}

	return
}
