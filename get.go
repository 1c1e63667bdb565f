package mst

//============================================= Lookup (spec.md §4.6)


// getFrom walks from n searching for key, resolving links via store as
// needed. Returns (value, found).
func getFrom(n *Node, key []byte, store *pageStore) ([]byte, bool, error) {
	for n != nil {
		i, ok := findKey(n, key)
		if ok {
			return n.values[i], true, nil
		}

		child, err := childAt(n, i, store)
		if err != nil {
			return nil, false, err
		}
		n = child
	}
	return nil, false, nil
}
