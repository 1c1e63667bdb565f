package mst

import (
	"crypto/rand"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)


//============================================= Shared Fixtures


func tempTreePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), fmt.Sprintf("mst-%s.tree", t.Name()))
}

func openTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := Open(Options{Path: tempTreePath(t)})
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func mustInsert(t *testing.T, tree *Tree, key, value []byte) {
	t.Helper()
	_, err := tree.Insert(key, value)
	require.NoError(t, err)
}

func requireGet(t *testing.T, tree *Tree, key, want []byte) {
	t.Helper()
	got, found, err := tree.Get(key)
	require.NoError(t, err)
	require.True(t, found, "expected key %q to be present", key)
	require.Equal(t, want, got)
}
