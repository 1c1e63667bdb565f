package mst

import (
	"testing"

	"github.com/stretchr/testify/require"
)


func TestLevelIsDeterministic(t *testing.T) {
	key := []byte("some-key")
	require.Equal(t, level(key), level(key))
}

func TestLevelCappedAt32(t *testing.T) {
	// an all-zero digest would have 64 leading zero nibbles and no known
	// key produces one, so this only checks that an ordinary key's level
	// stays within the cap of 32.
	l := level([]byte{})
	require.LessOrEqual(t, l, uint32(32))
}

func TestContentHashDeterministic(t *testing.T) {
	keys := [][]byte{[]byte("a"), []byte("b")}
	values := [][]byte{[]byte("1"), []byte("2")}
	children := []Hash{{1}, {2}, {3}}

	h1 := contentHash(3, keys, values, children)
	h2 := contentHash(3, keys, values, children)
	require.Equal(t, h1, h2)
}

func TestContentHashSensitiveToValue(t *testing.T) {
	keys := [][]byte{[]byte("a")}
	h1 := contentHash(1, keys, [][]byte{[]byte("1")}, nil)
	h2 := contentHash(1, keys, [][]byte{[]byte("2")}, nil)
	require.NotEqual(t, h1, h2)
}

func TestContentHashSensitiveToLevel(t *testing.T) {
	keys := [][]byte{[]byte("a")}
	values := [][]byte{[]byte("1")}
	require.NotEqual(t, contentHash(1, keys, values, nil), contentHash(2, keys, values, nil))
}
