package mst

import (
	"encoding/binary"

	"lukechampine.com/blake3"
)


//============================================= Canonical Hashing


// Hash is the fixed-width content digest used throughout the tree: BLAKE3-256.
type Hash [32]byte

// zeroHash is the digest of the empty tree (see Tree.RootHash).
var zeroHash Hash

// level returns the number of leading zero base-16 (nibble) digits of
// BLAKE3(key), capped at 32. All implementations reading the same file
// must agree on this derivation — see SPEC_FULL.md §5.2.
func level(key []byte) uint32 {
	digest := blake3.Sum256(key)

	var nibbles uint32
	for _, b := range digest {
		hi := b >> 4
		lo := b & 0x0f

		if hi != 0 {
			return nibbles
		}
		nibbles++

		if lo != 0 {
			return nibbles
		}
		nibbles++

		if nibbles >= 32 {
			return 32
		}
	}

	return 32
}

// putUvarint appends the LEB128 unsigned varint encoding of v to buf.
func putUvarint(buf []byte, v uint64) []byte {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], v)
	return append(buf, scratch[:n]...)
}

// putLengthPrefixed appends a varint length followed by b to buf.
func putLengthPrefixed(buf []byte, b []byte) []byte {
	buf = putUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

// contentHash computes the canonical digest of a node per spec.md §4.3:
// H(encode(level) || encode(keys) || encode(values) || encode(child_hashes)).
// childHashes must already reflect each child link's current hash (the
// Loaded node's recursive content hash, or the OnDisk stored hash).
func contentHash(lvl uint32, keys, values [][]byte, childHashes []Hash) Hash {
	buf := make([]byte, 0, 64+32*len(childHashes))

	buf = putUvarint(buf, uint64(lvl))

	buf = putUvarint(buf, uint64(len(keys)))
	for _, k := range keys {
		buf = putLengthPrefixed(buf, k)
	}

	buf = putUvarint(buf, uint64(len(values)))
	for _, v := range values {
		buf = putLengthPrefixed(buf, v)
	}

	buf = putUvarint(buf, uint64(len(childHashes)))
	for _, h := range childHashes {
		buf = append(buf, h[:]...)
	}

	return blake3.Sum256(buf)
}
