package blobstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("layout.json", []byte(`{"tabs":[]}`)))
	data, err := s.Load("layout.json")
	require.NoError(t, err)
	assert.Equal(t, `{"tabs":[]}`, string(data))

	require.NoError(t, s.Save("layout.json", []byte(`{"tabs":[1]}`)))
	data, err = s.Load("layout.json")
	require.NoError(t, err)
	assert.Equal(t, `{"tabs":[1]}`, string(data))
}

func TestStore_LoadMissing(t *testing.T) {
	s := openTestStore(t)

	data, err := s.Load("missing")
	assert.Nil(t, data)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_InvalidName(t *testing.T) {
	s := openTestStore(t)

	assert.ErrorIs(t, s.Save("", []byte("x")), ErrInvalidName)
	_, err := s.Load("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStore_DeleteAndList(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Save("b", []byte("2")))
	require.NoError(t, s.Save("a", []byte("1")))
	require.NoError(t, s.Save("c", []byte("3")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.NoError(t, s.Delete("b"))
	require.NoError(t, s.Delete("never-existed"))

	names, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("prefs.json", []byte("dark")))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Load("prefs.json")
	require.NoError(t, err)
	assert.Equal(t, "dark", string(data))
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("blob0"), prefixEnd([]byte("blob/")))
	assert.Equal(t, []byte{0x02}, prefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff}))
}
