package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// StreamSeed derives a 128-bit PCG seed pair from a base seed and a stream
// name. Equal inputs always give equal seeds; distinct names give
// independent streams.
func StreamSeed(baseSeed uint64, name string) (uint64, uint64) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d/%s", baseSeed, name)))
	return binary.LittleEndian.Uint64(sum[0:8]), binary.LittleEndian.Uint64(sum[8:16])
}
