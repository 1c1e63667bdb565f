package mst

import "encoding/binary"


//============================================= Node Wire Encoding


// serializeNode encodes n per spec.md §6: level (varint u32), keys
// (varint count, each varint-length-prefixed), values (same), children
// (varint count; each entry offset u64 LE + hash 32 bytes). Every
// child link must already be OnDisk — commit.go enforces this by
// construction, serializing children before their parent. buf is an
// empty, reusable scratch buffer (see bufferPool in nodepool.go).
func serializeNode(n *Node, buf []byte) ([]byte, error) {
	buf = putUvarint(buf, uint64(n.level))

	buf = putUvarint(buf, uint64(len(n.keys)))
	for _, k := range n.keys {
		buf = putLengthPrefixed(buf, k)
	}

	buf = putUvarint(buf, uint64(len(n.values)))
	for _, v := range n.values {
		buf = putLengthPrefixed(buf, v)
	}

	buf = putUvarint(buf, uint64(len(n.children)))
	for _, c := range n.children {
		if c.kind == linkLoaded {
			return nil, &SerializationError{Reason: "attempted to serialize a node with an uncommitted child"}
		}

		var offsetBytes [8]byte
		var hash Hash
		if c.kind == linkOnDisk {
			binary.LittleEndian.PutUint64(offsetBytes[:], c.offset)
			hash = c.hash
		}
		// linkEmpty: offset stays 0, hash stays the zero value — the
		// wire-format sentinel for an empty child slot (see DESIGN.md,
		// Open Question 4; page 0 is the header page and can never be a
		// genuine node offset).
		buf = append(buf, offsetBytes[:]...)
		buf = append(buf, hash[:]...)
	}

	return buf, nil
}

// deserializeNode decodes the wire format produced by serializeNode and
// recomputes the node's content hash, without verifying it against any
// expected hash (that check is the page store's job on read).
func deserializeNode(b []byte) (*Node, error) {
	r := &byteReader{b: b}

	lvl, err := r.uvarint()
	if err != nil {
		return nil, err
	}

	keyCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, keyCount)
	for i := range keys {
		keys[i], err = r.lengthPrefixed()
		if err != nil {
			return nil, err
		}
	}

	valueCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	if valueCount != keyCount {
		return nil, &SerializationError{Reason: "keys/values length mismatch on deserialize"}
	}
	values := make([][]byte, valueCount)
	for i := range values {
		values[i], err = r.lengthPrefixed()
		if err != nil {
			return nil, err
		}
	}

	childCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	var children []Link
	if childCount != 0 {
		children = make([]Link, childCount)
		for i := range children {
			offsetBytes, rerr := r.fixed(8)
			if rerr != nil {
				return nil, rerr
			}
			hashBytes, rerr := r.fixed(32)
			if rerr != nil {
				return nil, rerr
			}

			offset := binary.LittleEndian.Uint64(offsetBytes)
			var h Hash
			copy(h[:], hashBytes)
			children[i] = onDiskLink(offset, h)
		}
	}

	if !r.exhausted() {
		return nil, &SerializationError{Reason: "trailing bytes after node record"}
	}

	node, buildErr := newNode(uint32(lvl), keys, values, children)
	if buildErr != nil {
		return nil, buildErr
	}
	return node, nil
}

// byteReader is a minimal cursor over a decode buffer, used only by
// deserializeNode to keep its bounds-checking in one place.
type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.b[r.pos:])
	if n <= 0 {
		return 0, &SerializationError{Reason: "malformed varint"}
	}
	r.pos += n
	return v, nil
}

func (r *byteReader) fixed(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, &SerializationError{Reason: "truncated record"}
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *byteReader) lengthPrefixed() ([]byte, error) {
	length, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	return r.fixed(int(length))
}

func (r *byteReader) exhausted() bool { return r.pos == len(r.b) }
