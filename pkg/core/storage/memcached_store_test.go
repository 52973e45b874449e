package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemCachedPersist(t *testing.T) {
	ps := NewMemoryStore()
	ts := NewMemCachedStore(ps)

	// Persisting nothing should do nothing.
	c, err := ts.Persist()
	require.NoError(t, err)
	require.Equal(t, 0, c)

	ts.Put([]byte("key"), []byte("value"))
	ts.Put([]byte("gone"), []byte("soon"))
	ts.Delete([]byte("gone"))
	require.Equal(t, 2, ts.Len())

	// Not yet visible in the lower store.
	_, err = ps.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	c, err = ts.Persist()
	require.NoError(t, err)
	require.Equal(t, 2, c)
	require.Equal(t, 0, ts.Len())

	v, err := ps.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
	_, err = ps.Get([]byte("gone"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemCachedDeleteShadowsLower(t *testing.T) {
	ps := NewMemoryStore()
	require.NoError(t, ps.PutChangeSet(map[string][]byte{"a1": {1}, "a2": {2}}))
	ts := NewMemCachedStore(ps)
	ts.Delete([]byte("a1"))
	ts.Put([]byte("a3"), []byte{3})

	_, err := ts.Get([]byte("a1"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	var keys []string
	ts.Seek([]byte("a"), func(k, _ []byte) bool {
		keys = append(keys, string(k))
		return true
	})
	require.Equal(t, []string{"a2", "a3"}, keys)

	// Dropping the layer leaves the lower store intact.
	v, err := ps.Get([]byte("a1"))
	require.NoError(t, err)
	require.Equal(t, []byte{1}, v)
}

func TestMemCachedNested(t *testing.T) {
	ps := NewMemoryStore()
	outer := NewMemCachedStore(ps)
	inner := NewMemCachedStore(outer)

	inner.Put([]byte("k"), []byte("v"))
	_, err := outer.Get([]byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	_, err = inner.Persist()
	require.NoError(t, err)
	v, err := outer.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
	_, err = ps.Get([]byte("k"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemCachedDiscard(t *testing.T) {
	ps := NewMemoryStore()
	require.NoError(t, ps.PutChangeSet(map[string][]byte{"old": []byte("value")}))
	ts := NewMemCachedStore(ps)

	ts.Put([]byte("new"), []byte("value"))
	ts.Delete([]byte("old"))
	ts.Discard()
	require.Equal(t, 0, ts.Len())

	_, err := ts.Get([]byte("new"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	v, err := ts.Get([]byte("old"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
}
