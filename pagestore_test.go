package mst

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)


func openTestStore(t *testing.T) (*pageStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.store")
	store, _, _, err := openPageStore(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.close() })
	return store, path
}

func TestPageStoreFreshFileEmptyHeader(t *testing.T) {
	store, _ := openTestStore(t)

	rootOffset, rootHash, err := store.readHeader()
	require.NoError(t, err)
	require.Equal(t, uint64(0), rootOffset)
	require.Equal(t, Hash{}, rootHash)
}

func TestPageStoreAppendIsPageAligned(t *testing.T) {
	store, _ := openTestStore(t)

	off1, err := store.append([]byte("first record"))
	require.NoError(t, err)
	require.Equal(t, uint64(pageSize), off1)

	off2, err := store.append([]byte("second record"))
	require.NoError(t, err)
	require.Equal(t, uint64(2*pageSize), off2)
}

func TestPageStoreAppendReadRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)

	leaf, err := newNode(0, [][]byte{[]byte("k")}, [][]byte{[]byte("v")}, nil)
	require.NoError(t, err)

	pool := newBufferPool(0)
	encoded, err := serializeNode(leaf, pool.get())
	require.NoError(t, err)

	offset, err := store.append(encoded)
	require.NoError(t, err)

	roundTripped, err := store.read(offset, leaf.hash)
	require.NoError(t, err)
	require.Equal(t, leaf.hash, roundTripped.hash)
	require.Equal(t, leaf.keys, roundTripped.keys)
	require.Equal(t, leaf.values, roundTripped.values)
}

func TestPageStoreReadDetectsHashMismatch(t *testing.T) {
	store, _ := openTestStore(t)

	leaf, err := newNode(0, [][]byte{[]byte("k")}, [][]byte{[]byte("v")}, nil)
	require.NoError(t, err)

	pool := newBufferPool(0)
	encoded, err := serializeNode(leaf, pool.get())
	require.NoError(t, err)

	offset, err := store.append(encoded)
	require.NoError(t, err)

	wrongHash := leaf.hash
	wrongHash[0] ^= 0xff

	_, err = store.read(offset, wrongHash)
	require.Error(t, err)
	var corruptErr *CorruptionError
	require.ErrorAs(t, err, &corruptErr)
}

func TestPageStoreReadDetectsFlippedByte(t *testing.T) {
	store, path := openTestStore(t)

	leaf, err := newNode(0, [][]byte{[]byte("k")}, [][]byte{[]byte("v")}, nil)
	require.NoError(t, err)

	pool := newBufferPool(0)
	encoded, err := serializeNode(leaf, pool.get())
	require.NoError(t, err)

	offset, err := store.append(encoded)
	require.NoError(t, err)
	require.NoError(t, store.flush())
	require.NoError(t, store.close())

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0xff}, int64(offset)+4)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, _, _, err := openPageStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.close()

	_, err = reopened.read(offset, leaf.hash)
	require.Error(t, err)
}

func TestPageStoreHeaderRoundTrip(t *testing.T) {
	store, path := openTestStore(t)

	hash := Hash{1, 2, 3}
	require.NoError(t, store.writeHeader(pageSize, hash))

	rootOffset, rootHash, err := store.readHeader()
	require.NoError(t, err)
	require.Equal(t, uint64(pageSize), rootOffset)
	require.Equal(t, hash, rootHash)

	reopened, rootOffset2, rootHash2, err := openPageStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.close()
	require.Equal(t, uint64(pageSize), rootOffset2)
	require.Equal(t, hash, rootHash2)
}
