package hashfunc

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/fasthash/fnv1a"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashFunction - Interface that permits an implementation using the SlabHashMap to supply the hash function
// used for bucket selection. The digest may be of any width, it is reduced to a bucket index as an unsigned
// big endian integer of full precision.
type HashFunction interface {
	// Hash - Returns the digest of material. It must be deterministic, the same material must always
	// give the same digest, or records already stored will not be found again.
	// The returned slice is owned by the caller.
	Hash(material []byte) []byte
}

// Func - Adapter to allow the use of ordinary functions as HashFunction
type Func func(material []byte) []byte

// Hash - Calls f(material)
func (f Func) Hash(material []byte) []byte {
	return f(material)
}

// Identity - Digest is a copy of the material. Only sensible for tests and for keys that are already uniformly spread.
var Identity HashFunction = Func(func(material []byte) []byte {
	digest := make([]byte, len(material))
	_ = copy(digest, material)
	return digest
})

// MD5 - 16 byte MD5 digest
var MD5 HashFunction = Func(func(material []byte) []byte {
	sum := md5.Sum(material)
	return sum[:]
})

// SHA256 - 32 byte SHA-256 digest
var SHA256 HashFunction = Func(func(material []byte) []byte {
	sum := sha256.Sum256(material)
	return sum[:]
})

// Blake2b256 - 32 byte BLAKE2b digest
var Blake2b256 HashFunction = Func(func(material []byte) []byte {
	sum := blake2b.Sum256(material)
	return sum[:]
})

// SHA3 - 32 byte SHA3-256 digest
var SHA3 HashFunction = Func(func(material []byte) []byte {
	sum := sha3.Sum256(material)
	return sum[:]
})

// XXHash64 - 8 byte xxHash digest in big endian order
var XXHash64 HashFunction = Func(func(material []byte) []byte {
	digest := make([]byte, 8)
	binary.BigEndian.PutUint64(digest, xxhash.Sum64(material))
	return digest
})

// FNV1a64 - 8 byte FNV-1a digest in big endian order
var FNV1a64 HashFunction = Func(func(material []byte) []byte {
	digest := make([]byte, 8)
	binary.BigEndian.PutUint64(digest, fnv1a.HashBytes64(material))
	return digest
})

// ByName - Returns one of the provided hash functions by its name, ok is false for unknown names
func ByName(name string) (fn HashFunction, ok bool) {
	fn, ok = byName[name]
	return
}

var byName = map[string]HashFunction{
	"identity": Identity,
	"md5":      MD5,
	"sha256":   SHA256,
	"blake2b":  Blake2b256,
	"sha3":     SHA3,
	"xxhash":   XXHash64,
	"fnv1a":    FNV1a64,
}
