package mst

import (
	"testing"

	"github.com/stretchr/testify/require"
)


func TestNewNodeRejectsKeyValueMismatch(t *testing.T) {
	_, err := newNode(0, [][]byte{[]byte("a")}, nil, nil)
	require.Error(t, err)
}

func TestNewNodeRejectsUnsortedKeys(t *testing.T) {
	keys := [][]byte{[]byte("b"), []byte("a")}
	values := [][]byte{[]byte("1"), []byte("2")}
	_, err := newNode(0, keys, values, nil)
	require.Error(t, err)
}

func TestNewNodeRejectsWrongChildrenLength(t *testing.T) {
	keys := [][]byte{[]byte("a")}
	values := [][]byte{[]byte("1")}
	_, err := newNode(0, keys, values, []Link{emptyLink})
	require.Error(t, err)
}

func TestNormalizeChildrenCollapsesAllEmpty(t *testing.T) {
	keys := [][]byte{[]byte("a")}
	values := [][]byte{[]byte("1")}
	n, err := newNode(0, keys, values, []Link{emptyLink, emptyLink})
	require.NoError(t, err)
	require.Nil(t, n.children)
	require.True(t, n.isLeaf())
}

func TestNormalizeChildrenKeepsNonEmpty(t *testing.T) {
	leaf, err := newNode(0, [][]byte{[]byte("x")}, [][]byte{[]byte("1")}, nil)
	require.NoError(t, err)

	keys := [][]byte{[]byte("a")}
	values := [][]byte{[]byte("1")}
	n, err := newNode(1, keys, values, []Link{wrapNode(leaf), emptyLink})
	require.NoError(t, err)
	require.Len(t, n.children, 2)
}

func TestWrapNodeCollapsesEmptyToEmptyLink(t *testing.T) {
	require.True(t, wrapNode(nil).isEmpty())
	require.True(t, wrapNode(emptyNode).isEmpty())
}

func TestVirtualChildrenOnLeaf(t *testing.T) {
	leaf, err := newNode(0, [][]byte{[]byte("a"), []byte("b")}, [][]byte{[]byte("1"), []byte("2")}, nil)
	require.NoError(t, err)

	vc := virtualChildren(leaf)
	require.Len(t, vc, 3)
	for _, c := range vc {
		require.True(t, c.isEmpty())
	}
}

func TestFindKeyHitAndMiss(t *testing.T) {
	n, err := newNode(0, [][]byte{[]byte("b"), []byte("d")}, [][]byte{[]byte("1"), []byte("2")}, nil)
	require.NoError(t, err)

	idx, ok := findKey(n, []byte("d"))
	require.True(t, ok)
	require.Equal(t, 1, idx)

	idx, ok = findKey(n, []byte("c"))
	require.False(t, ok)
	require.Equal(t, 1, idx)

	idx, ok = findKey(n, []byte("a"))
	require.False(t, ok)
	require.Equal(t, 0, idx)
}
