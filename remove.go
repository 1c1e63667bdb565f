package mst

//============================================= Deletion (spec.md §4.5)


// removeFrom implements the recursive remove_from procedure of
// spec.md §4.5.
func removeFrom(n *Node, key []byte, store *pageStore) (*Node, error) {
	if n == nil {
		return nil, nil
	}

	i, ok := findKey(n, key)
	if !ok {
		child, err := childAt(n, i, store)
		if err != nil {
			return nil, err
		}
		newChild, err := removeFrom(child, key, store)
		if err != nil {
			return nil, err
		}

		newChildren := cloneLinks(virtualChildren(n))
		newChildren[i] = wrapNode(newChild)
		return newNode(n.level, n.keys, n.values, newChildren)
	}

	// Hit: drop keys[i]/values[i] and merge the two adjacent children.
	vc := virtualChildren(n)
	leftChild, err := vc[i].resolve(store)
	if err != nil {
		return nil, err
	}
	rightChild, err := vc[i+1].resolve(store)
	if err != nil {
		return nil, err
	}

	merged, err := merge(leftChild, rightChild, store)
	if err != nil {
		return nil, err
	}

	newKeys := removeAt(n.keys, i)
	newValues := removeAt(n.values, i)
	newChildren := collapsePair(vc, i, wrapNode(merged))

	result, err := newNode(n.level, newKeys, newValues, newChildren)
	if err != nil {
		return nil, err
	}

	// Collapse: if the result has 0 keys and at most 1 child, the node
	// itself is redundant — return that single child (or empty).
	if len(result.keys) == 0 {
		if len(result.children) == 0 {
			return nil, nil
		}
		return result.children[0].resolve(store)
	}
	return result, nil
}

// merge combines two subtrees whose key ranges are strictly ordered
// (spec.md §4.5.1).
func merge(left, right *Node, store *pageStore) (*Node, error) {
	if left == nil {
		return right, nil
	}
	if right == nil {
		return left, nil
	}

	if left.level == right.level {
		keys := append(append([][]byte{}, left.keys...), right.keys...)
		values := append(append([][]byte{}, left.values...), right.values...)

		lc := virtualChildren(left)
		rc := virtualChildren(right)

		lastLeft, err := lc[len(lc)-1].resolve(store)
		if err != nil {
			return nil, err
		}
		firstRight, err := rc[0].resolve(store)
		if err != nil {
			return nil, err
		}
		mergedMiddle, err := merge(lastLeft, firstRight, store)
		if err != nil {
			return nil, err
		}

		children := make([]Link, 0, len(lc)-1+len(rc))
		children = append(children, lc[:len(lc)-1]...)
		children = append(children, wrapNode(mergedMiddle))
		children = append(children, rc[1:]...)

		return newNode(left.level, keys, values, children)
	}

	if left.level > right.level {
		lc := cloneLinks(virtualChildren(left))
		last, err := lc[len(lc)-1].resolve(store)
		if err != nil {
			return nil, err
		}
		mergedLast, err := merge(last, right, store)
		if err != nil {
			return nil, err
		}
		lc[len(lc)-1] = wrapNode(mergedLast)
		return newNode(left.level, left.keys, left.values, lc)
	}

	// right.level > left.level
	rc := cloneLinks(virtualChildren(right))
	first, err := rc[0].resolve(store)
	if err != nil {
		return nil, err
	}
	mergedFirst, err := merge(left, first, store)
	if err != nil {
		return nil, err
	}
	rc[0] = wrapNode(mergedFirst)
	return newNode(right.level, right.keys, right.values, rc)
}

func removeAt(in [][]byte, i int) [][]byte {
	out := make([][]byte, 0, len(in)-1)
	out = append(out, in[:i]...)
	out = append(out, in[i+1:]...)
	return out
}

// collapsePair replaces children[i] and children[i+1] with a single
// merged link, shrinking the slice by one.
func collapsePair(children []Link, i int, merged Link) []Link {
	out := make([]Link, 0, len(children)-1)
	out = append(out, children[:i]...)
	out = append(out, merged)
	out = append(out, children[i+2:]...)
	return out
}
