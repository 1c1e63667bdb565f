package mst

import "bytes"


//============================================= Node


// Node is an immutable-by-convention tree node: a level, a sorted
// parallel array of keys and values, and a vector of child links one
// longer than keys unless the node is a leaf. See spec.md §3.
type Node struct {
	level    uint32
	keys     [][]byte
	values   [][]byte
	children []Link

	hash Hash
}

// emptyNode is the shared empty-root sentinel: level 0, no keys, no
// children. Its hash is the zero hash (spec.md §6, root_hash table).
var emptyNode = &Node{level: 0}

// normalizeChildren canonicalizes a children slice so that a node whose
// slots are all empty is always represented as nil rather than a
// materialized all-empty slice. Two different mutation histories that
// converge on the same logical content must hash identically (Law 1);
// this collapses the one representational degree of freedom spec.md
// leaves open. See DESIGN.md, Open Question 3.
func normalizeChildren(children []Link) []Link {
	if len(children) == 0 {
		return nil
	}
	for _, c := range children {
		if !c.isEmpty() {
			return children
		}
	}
	return nil
}

// newNode constructs a node, enforcing the invariants of spec.md §3 and
// computing its cached content hash. It is the single path through
// which Node values are built, so normalizeChildren and the hash
// computation apply uniformly everywhere a node is constructed.
func newNode(lvl uint32, keys, values [][]byte, children []Link) (*Node, error) {
	if len(keys) != len(values) {
		return nil, &SerializationError{Reason: "keys/values length mismatch"}
	}
	if len(children) != 0 && len(children) != len(keys)+1 {
		return nil, &SerializationError{Reason: "children length must be 0 or len(keys)+1"}
	}
	children = normalizeChildren(children)

	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i-1], keys[i]) >= 0 {
			return nil, &SerializationError{Reason: "keys not strictly ascending"}
		}
	}

	n := &Node{level: lvl, keys: keys, values: values, children: children}
	n.hash = n.computeHash()
	return n, nil
}

// wrapNode wraps a freshly-constructed node as a Loaded Link, collapsing
// a nil/empty node to the shared empty link. Every construction call
// site in insert.go/remove.go goes through this rather than loadedLink
// directly, so the empty representation stays canonical end to end.
func wrapNode(n *Node) Link {
	if n == nil {
		return emptyLink
	}
	if len(n.keys) == 0 && len(n.children) == 0 {
		return emptyLink
	}
	return loadedLink(n)
}

// computeHash derives the node's canonical content hash per spec.md §4.3.
func (n *Node) computeHash() Hash {
	if n == nil || (len(n.keys) == 0 && len(n.children) == 0) {
		return zeroHash
	}

	childHashes := make([]Hash, len(n.children))
	for i, c := range n.children {
		childHashes[i] = c.linkHash()
	}
	return contentHash(n.level, n.keys, n.values, childHashes)
}

// contentHash returns the node's cached hash, treating a nil node (the
// conceptual empty child) as the zero hash.
func (n *Node) contentHash() Hash {
	if n == nil {
		return zeroHash
	}
	return n.hash
}

// isLeaf reports whether n carries no children vector at all.
func (n *Node) isLeaf() bool {
	return n == nil || len(n.children) == 0
}

// virtualChildren returns n's children normalized to the full
// len(keys)+1 slots a non-leaf node would have, treating a leaf (or nil
// node) as len(keys)+1 empty links. merge and split need this to safely
// index "last child" / "first child" across a leaf/non-leaf boundary at
// the same level, which spec.md's recursive definitions assume can
// happen but does not spell out how to index safely.
func virtualChildren(n *Node) []Link {
	if n == nil {
		return []Link{emptyLink}
	}
	if len(n.children) != 0 {
		return n.children
	}
	out := make([]Link, len(n.keys)+1)
	for i := range out {
		out[i] = emptyLink
	}
	return out
}

// childAt resolves virtualChildren(n)[i] through the page store.
func childAt(n *Node, i int, store *pageStore) (*Node, error) {
	vc := virtualChildren(n)
	return vc[i].resolve(store)
}

// findKey performs a binary search for key among n.keys, returning the
// index at which key was found (ok=true) or the gap index at which it
// would be inserted (ok=false).
func findKey(n *Node, key []byte) (idx int, ok bool) {
	lo, hi := 0, len(n.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		switch bytes.Compare(n.keys[mid], key) {
		case 0:
			return mid, true
		case -1:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}
