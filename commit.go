package mst

//============================================= Commit


// commitNode performs the post-order traversal described in spec.md
// §4.7: each Loaded child is committed first (recursively), its link
// rewritten to OnDisk, and only then is this node serialized and
// appended. OnDisk links are left untouched — they are already
// durable. Returns the offset and content hash this node (or its
// already-committed on-disk form) should be referenced by.
func commitNode(n *Node, store *pageStore, pool *bufferPool) (offset uint64, hash Hash, err error) {
	if n == nil {
		return 0, zeroHash, nil
	}

	committedChildren := make([]Link, len(n.children))
	changed := false
	for i, c := range n.children {
		switch c.kind {
		case linkOnDisk, linkEmpty:
			committedChildren[i] = c
		case linkLoaded:
			childOffset, childHash, commitErr := commitNode(c.node, store, pool)
			if commitErr != nil {
				return 0, Hash{}, commitErr
			}
			committedChildren[i] = onDiskLink(childOffset, childHash)
			changed = true
		}
	}

	committed := n
	if changed {
		committed, err = newNode(n.level, n.keys, n.values, committedChildren)
		if err != nil {
			return 0, Hash{}, err
		}
	}

	buf := pool.get()
	encoded, encErr := serializeNode(committed, buf)
	if encErr != nil {
		return 0, Hash{}, encErr
	}

	off, appendErr := store.append(encoded)
	pool.put(encoded)
	if appendErr != nil {
		return 0, Hash{}, appendErr
	}

	return off, committed.hash, nil
}
