package mst

import (
	"os"
	"sync"
)


//============================================= Tree


// Tree is the external handle: a persistent, authenticated key-value
// map backed by a single append-only file (spec.md §1, §6).
type Tree struct {
	mu sync.Mutex

	store *pageStore
	pool  *bufferPool

	root Link

	path      string
	temporary bool
}

// Open creates the file at opts.Path if missing and reads its header if
// present, seeding the in-memory root from the recorded (root_offset,
// root_hash) pair.
func Open(opts Options) (*Tree, error) {
	store, rootOffset, rootHash, err := openPageStore(opts.Path, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Tree{
		store: store,
		pool:  newBufferPool(opts.NodePoolSize),
		root:  onDiskLink(rootOffset, rootHash),
		path:  opts.Path,
	}, nil
}

// NewTemporary opens a tree backed by a file in the system temp
// directory. Close removes the backing file — this module's idiomatic
// substitute for spec.md's "file auto-removed on drop" (Go has no
// destructors to hook that behavior into).
func NewTemporary(opts Options) (*Tree, error) {
	f, err := os.CreateTemp("", "mst-*.tree")
	if err != nil {
		return nil, &IOError{Op: "createtemp", Err: err}
	}
	path := f.Name()
	if closeErr := f.Close(); closeErr != nil {
		return nil, &IOError{Op: "close temp", Err: closeErr}
	}

	opts.Path = path
	tree, openErr := Open(opts)
	if openErr != nil {
		os.Remove(path)
		return nil, openErr
	}
	tree.temporary = true
	return tree, nil
}

// LoadFromRoot opens the file at opts.Path and forces the in-memory
// root to the given (offset, hash) pair, ignoring whatever the file's
// header records. The root link stays OnDisk until the first mutation
// resolves it.
func LoadFromRoot(opts Options, offset uint64, hash Hash) (*Tree, error) {
	store, _, _, err := openPageStore(opts.Path, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Tree{
		store: store,
		pool:  newBufferPool(opts.NodePoolSize),
		root:  onDiskLink(offset, hash),
		path:  opts.Path,
	}, nil
}

// Insert inserts or updates key with value, returning the prior value
// if the key was replaced.
func (t *Tree) Insert(key, value []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.root.resolve(t.store)
	if err != nil {
		return nil, err
	}

	prior, _, err := getFrom(root, key, t.store)
	if err != nil {
		return nil, err
	}

	newRoot, err := insertInto(root, key, value, level(key), t.store)
	if err != nil {
		return nil, err
	}

	t.root = wrapNode(newRoot)
	return prior, nil
}

// Remove deletes key, returning its prior value if present.
func (t *Tree) Remove(key []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.root.resolve(t.store)
	if err != nil {
		return nil, err
	}

	prior, found, err := getFrom(root, key, t.store)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	newRoot, err := removeFrom(root, key, t.store)
	if err != nil {
		return nil, err
	}

	t.root = wrapNode(newRoot)
	return prior, nil
}

// Get returns key's value and whether it was present.
func (t *Tree) Get(key []byte) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.root.resolve(t.store)
	if err != nil {
		return nil, false, err
	}
	return getFrom(root, key, t.store)
}

// Contains reports whether key is present.
func (t *Tree) Contains(key []byte) (bool, error) {
	_, found, err := t.Get(key)
	return found, err
}

// RootHash returns the current root's content hash: the zero hash when
// the tree is empty (spec.md §6).
func (t *Tree) RootHash() (Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root.isEmpty() {
		return zeroHash, nil
	}
	if t.root.kind == linkOnDisk {
		return t.root.hash, nil
	}

	root, err := t.root.resolve(t.store)
	if err != nil {
		return Hash{}, err
	}
	return root.contentHash(), nil
}

// Commit walks the dirty subtree, serializing new nodes through the
// page store, then writes the header with the resulting
// (root_offset, root_hash) pair and flushes (spec.md §4.7).
func (t *Tree) Commit() (uint64, Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.root.isEmpty() {
		if err := t.store.writeHeader(0, zeroHash); err != nil {
			return 0, Hash{}, err
		}
		return 0, zeroHash, nil
	}

	if t.root.kind == linkOnDisk {
		// Nothing dirty since the last commit: re-write the header for
		// idempotence but don't re-serialize anything.
		if err := t.store.writeHeader(t.root.offset, t.root.hash); err != nil {
			return 0, Hash{}, err
		}
		return t.root.offset, t.root.hash, nil
	}

	offset, hash, err := commitNode(t.root.node, t.store, t.pool)
	if err != nil {
		return 0, Hash{}, err
	}

	if err := t.store.writeHeader(offset, hash); err != nil {
		return 0, Hash{}, err
	}

	t.root = onDiskLink(offset, hash)
	return offset, hash, nil
}

// Close releases the underlying file handle. For a temporary tree
// (NewTemporary), it also removes the backing file.
func (t *Tree) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	closeErr := t.store.close()
	if t.temporary {
		if rmErr := os.Remove(t.path); rmErr != nil && closeErr == nil {
			return &IOError{Op: "remove temp", Err: rmErr}
		}
	}
	return closeErr
}
