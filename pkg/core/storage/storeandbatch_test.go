package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/ticketsim/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(testing.TB) Store
}

type dbTestFunction func(*testing.T, Store)

func newBoltStoreForTesting(t testing.TB) Store {
	d := t.TempDir()
	boltDBStore, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: filepath.Join(d, "test_bolt_db")})
	require.NoError(t, err)
	return boltDBStore
}

func newLevelDBForTesting(t testing.TB) Store {
	newLevelStore, err := NewLevelDBStore(dbconfig.LevelDBOptions{DataDirectoryPath: t.TempDir()})
	require.NoError(t, err, "NewLevelDBStore error")
	return newLevelStore
}

func newMemCachedStoreForTesting(t testing.TB) Store {
	return NewMemCachedStore(NewMemoryStore())
}

func testStoreGetNonExistent(t *testing.T, s Store) {
	_, err := s.Get([]byte("sparse"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func testStorePutGetDelete(t *testing.T, s Store) {
	key, value := []byte("sparse"), []byte("rocks")

	require.NoError(t, s.PutChangeSet(map[string][]byte{string(key): value}))
	v, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, v)

	require.NoError(t, s.PutChangeSet(map[string][]byte{string(key): nil}))
	_, err = s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func testStoreSeek(t *testing.T, s Store) {
	kvs := map[string][]byte{
		"10": []byte("bar"),
		"11": []byte("bara"),
		"20": []byte("barb"),
		"21": []byte("barc"),
		"22": []byte("bard"),
		"30": []byte("bare"),
	}
	require.NoError(t, s.PutChangeSet(kvs))

	seek := func(prefix []byte, limit int) []KeyValue {
		var actual []KeyValue
		s.Seek(prefix, func(k, v []byte) bool {
			actual = append(actual, KeyValue{Key: bytes.Clone(k), Value: bytes.Clone(v)})
			return limit <= 0 || len(actual) < limit
		})
		return actual
	}

	t.Run("all with prefix", func(t *testing.T) {
		require.Equal(t, []KeyValue{
			{Key: []byte("20"), Value: []byte("barb")},
			{Key: []byte("21"), Value: []byte("barc")},
			{Key: []byte("22"), Value: []byte("bard")},
		}, seek([]byte("2"), 0))
	})
	t.Run("early stop", func(t *testing.T) {
		require.Equal(t, []KeyValue{
			{Key: []byte("10"), Value: []byte("bar")},
		}, seek([]byte("1"), 1))
	})
	t.Run("missing prefix", func(t *testing.T) {
		require.Empty(t, seek([]byte("4"), 0))
	})
}

func TestAllDBs(t *testing.T) {
	var DBs = []dbSetup{
		{"BoltDB", newBoltStoreForTesting},
		{"LevelDB", newLevelDBForTesting},
		{"MemCached", newMemCachedStoreForTesting},
		{"Memory", func(testing.TB) Store { return NewMemoryStore() }},
	}
	var tests = []dbTestFunction{testStoreGetNonExistent, testStorePutGetDelete,
		testStoreSeek}
	for _, db := range DBs {
		for _, test := range tests {
			s := db.create(t)
			t.Run(db.name, func(t *testing.T) {
				test(t, s)
			})
			require.NoError(t, s.Close())
		}
	}
}

func TestNewStore(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		s, err := NewStore(dbconfig.DBConfiguration{})
		require.NoError(t, err)
		require.IsType(t, (*MemoryStore)(nil), s)
	})
	t.Run("boltdb", func(t *testing.T) {
		s, err := NewStore(dbconfig.DBConfiguration{
			Type:          dbconfig.BoltDB,
			BoltDBOptions: dbconfig.BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "chain.bolt")},
		})
		require.NoError(t, err)
		require.IsType(t, (*BoltDBStore)(nil), s)
		require.NoError(t, s.Close())
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := NewStore(dbconfig.DBConfiguration{Type: "redis"})
		require.Error(t, err)
	})
}
