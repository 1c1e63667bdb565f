package mst


//============================================= Link


// linkKind tags which variant of Link is populated.
type linkKind uint8

const (
	linkEmpty linkKind = iota
	linkLoaded
	linkOnDisk
)

// Link is the tagged union referenced from a parent Node to a child:
// either a shared handle to an in-memory node (possibly dirty), or a
// pointer into the page store (offset + expected content hash), or the
// empty sentinel. See spec.md §3.
type Link struct {
	kind   linkKind
	node   *Node
	offset uint64
	hash   Hash
}

// emptyLink is the shared empty sentinel link.
var emptyLink = Link{kind: linkEmpty}

// loadedLink wraps an in-memory node as a Loaded link. Prefer wrapNode
// over calling this directly — wrapNode additionally collapses an empty
// node (no keys, no children) to the shared empty link.
func loadedLink(n *Node) Link {
	if n == nil {
		return emptyLink
	}
	return Link{kind: linkLoaded, node: n}
}

// onDiskLink constructs an unresolved on-disk reference.
func onDiskLink(offset uint64, hash Hash) Link {
	if offset == 0 {
		return emptyLink
	}
	return Link{kind: linkOnDisk, offset: offset, hash: hash}
}

func (l Link) isEmpty() bool { return l.kind == linkEmpty }

// linkHash returns the hash to fold into a parent's content hash for
// this link, without requiring the link to be resolved: Loaded links
// use the node's own (possibly freshly computed) content hash, OnDisk
// links use their stored expected hash, and the empty link hashes to
// the zero hash. An empty slot in a non-leaf node's children is hashed
// as that zero hash; a node whose slots are all empty has no children
// at all after node.go's canonicalization.
func (l Link) linkHash() Hash {
	switch l.kind {
	case linkLoaded:
		return l.node.contentHash()
	case linkOnDisk:
		return l.hash
	default:
		return zeroHash
	}
}

// resolve returns the Node a link refers to, reading and verifying it
// from the page store on first access to an OnDisk link. Resolution
// never mutates the parent's link — see spec.md §4.2.
func (l Link) resolve(store *pageStore) (*Node, error) {
	switch l.kind {
	case linkEmpty:
		return nil, nil
	case linkLoaded:
		return l.node, nil
	case linkOnDisk:
		return store.read(l.offset, l.hash)
	default:
		return nil, &SerializationError{Reason: "unknown link kind"}
	}
}
