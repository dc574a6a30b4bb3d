package conf

// TagLength - Number of bytes used to indicate the state of a record, it is the first byte of every record
const TagLength int = 1

// ForwardPointerLength - Length of the slab id stored in a forward record - 4 bytes
const ForwardPointerLength int = 4

// MinPayloadLength - Minimum payload of a record, it must always be able to hold a forward pointer
const MinPayloadLength int = ForwardPointerLength

// MaxSlabID - Highest slab id that fits in a forward pointer
const MaxSlabID int64 = 1<<32 - 1

// DefaultMaxForwardDepth - Default limit of forward hops a relocating insert may create
const DefaultMaxForwardDepth int = 64

// BufferFilePattern - Pattern used to name files created by the memory mapped buffer factory
const BufferFilePattern string = "base-%d.file"

// DefaultMaxMaterialLength - Default cap in bytes on the key material a forward chain may hash
const DefaultMaxMaterialLength int = 1 << 16
