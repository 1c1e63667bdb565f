package mst


//============================================= Insertion (spec.md §4.4)


// insertInto implements the recursive insert_into procedure of spec.md
// §4.4. store resolves OnDisk links encountered along the path.
func insertInto(n *Node, key, value []byte, lvl uint32, store *pageStore) (*Node, error) {
	if n == nil || n.level < lvl {
		left, right, err := split(n, key, store)
		if err != nil {
			return nil, err
		}
		return newNode(lvl, [][]byte{key}, [][]byte{value}, []Link{wrapNode(left), wrapNode(right)})
	}

	if n.level == lvl {
		i, ok := findKey(n, key)
		if ok {
			values := cloneLinks1D(n.values)
			values[i] = value
			return newNode(n.level, n.keys, values, n.children)
		}

		child, resolveErr := childAt(n, i, store)
		if resolveErr != nil {
			return nil, resolveErr
		}
		left, right, splitErr := split(child, key, store)
		if splitErr != nil {
			return nil, splitErr
		}

		newKeys := insertAt(n.keys, i, key)
		newValues := insertAt(n.values, i, value)
		newChildren := replaceWithPair(virtualChildren(n), i, wrapNode(left), wrapNode(right))

		return newNode(n.level, newKeys, newValues, newChildren)
	}

	// n.level > lvl: descend to the unique straddling child.
	i := childIndexFor(n, key)
	child, err := childAt(n, i, store)
	if err != nil {
		return nil, err
	}
	newChild, err := insertInto(child, key, value, lvl, store)
	if err != nil {
		return nil, err
	}

	newChildren := cloneLinks(virtualChildren(n))
	newChildren[i] = wrapNode(newChild)
	return newNode(n.level, n.keys, n.values, newChildren)
}

// split partitions node's subtree into all keys < key and all keys >
// key, preserving MST invariants (spec.md §4.4.1). The precondition
// (enforced by every caller) is that key never equals an existing key
// in node's subtree.
//
// spec.md §4.4.1 describes this as two cases (node.level < level(key)
// vs node.level >= level(key)), but both reduce to the same procedure:
// find the single gap index key falls into among node's own keys —
// i==0 and i==len(keys) correctly cover "key is less/greater than all
// of node's keys" — and recurse into exactly that straddling child.
//
// At the i==0 or i==len(keys) boundary, node contributes none of its
// own keys to that side, so the recursive split result of the
// straddling child *is* that side's subtree — it must be returned
// directly rather than wrapped in a new 0-key parent. A wrapper node
// there would be a structural artifact a different insertion order
// reaching the same key/value set would not produce, breaking the
// determinism law (spec.md §8 Law 1); remove.go's collapse-on-0-keys
// rule in removeFrom exists for the same reason on the delete path.
func split(n *Node, key []byte, store *pageStore) (left, right *Node, err error) {
	if n == nil {
		return nil, nil, nil
	}
	if len(n.keys) == 0 {
		// keys-empty node with no separators to compare against;
		// only reachable transiently (spec.md §3).
		return nil, n, nil
	}

	i := childIndexFor(n, key)

	vc := virtualChildren(n)
	straddling, resolveErr := childAt(n, i, store)
	if resolveErr != nil {
		return nil, nil, resolveErr
	}
	subLeft, subRight, splitErr := split(straddling, key, store)
	if splitErr != nil {
		return nil, nil, splitErr
	}

	if i == 0 {
		left = subLeft
	} else {
		leftChildren := cloneLinks(vc[:i+1])
		leftChildren[i] = wrapNode(subLeft)
		left, err = newNode(n.level, n.keys[:i], n.values[:i], leftChildren)
		if err != nil {
			return nil, nil, err
		}
	}

	if i == len(n.keys) {
		right = subRight
	} else {
		rightChildren := cloneLinks(vc[i:])
		rightChildren[0] = wrapNode(subRight)
		right, err = newNode(n.level, n.keys[i:], n.values[i:], rightChildren)
		if err != nil {
			return nil, nil, err
		}
	}

	return left, right, nil
}

// childIndexFor returns the unique i such that keys[i-1] < key < keys[i]
// (with -inf/+inf boundaries), i.e. the gap index for key in n.keys.
func childIndexFor(n *Node, key []byte) int {
	i, _ := findKey(n, key)
	return i
}

func cloneLinks(in []Link) []Link {
	out := make([]Link, len(in))
	copy(out, in)
	return out
}

func cloneLinks1D(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	copy(out, in)
	return out
}

func insertAt(in [][]byte, i int, v []byte) [][]byte {
	out := make([][]byte, 0, len(in)+1)
	out = append(out, in[:i]...)
	out = append(out, v)
	out = append(out, in[i:]...)
	return out
}

// replaceWithPair replaces children[i] with the two links left, right,
// growing the slice by one, per spec.md §4.4 step 2.
func replaceWithPair(children []Link, i int, left, right Link) []Link {
	out := make([]Link, 0, len(children)+1)
	out = append(out, children[:i]...)
	out = append(out, left, right)
	out = append(out, children[i+1:]...)
	return out
}
