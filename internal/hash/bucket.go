package hash

import (
	"encoding/binary"
	"math/big"
)

// BucketIndex - Reduces a digest to a bucket index between 0 and numBuckets - 1.
// The digest is read as an unsigned big endian integer of whatever width the hash function produced,
// so wide digests (cryptographic hashes) are reduced without truncation. Digests of at most 8 bytes
// take a machine word path that yields the same index.
//   - digest is the output of a hash function
//   - numBuckets is the number of buckets in a slab, it must be higher than 0 (zero)
func BucketIndex(digest []byte, numBuckets int) int {
	if len(digest) <= 8 {
		var word [8]byte
		copy(word[8-len(digest):], digest)
		return int(binary.BigEndian.Uint64(word[:]) % uint64(numBuckets))
	}

	d := new(big.Int).SetBytes(digest)
	return int(d.Mod(d, big.NewInt(int64(numBuckets))).Int64())
}

// ExtendMaterial - Returns a new slice holding material followed by digest.
// The result never shares memory with either argument.
func ExtendMaterial(material, digest []byte) []byte {
	extended := make([]byte, 0, len(material)+len(digest))
	extended = append(extended, material...)
	return append(extended, digest...)
}
