package blobstore

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_PutGetDelete(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	id := NewID()
	n, err := s.Put(id, strings.NewReader("some media bytes"))
	require.NoError(t, err)
	require.Equal(t, int64(16), n)

	r, size, err := s.Get(id)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, int64(16), size)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "some media bytes", string(data))

	require.NoError(t, s.Delete(id))

	_, _, err = s.Get(id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetAbsent(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Get("local_nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteAbsentIsNoop(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Delete("local_nope"))
}

func TestStore_PutReplaces(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	id := NewID()
	_, err = s.Put(id, strings.NewReader("first"))
	require.NoError(t, err)
	_, err = s.Put(id, strings.NewReader("second"))
	require.NoError(t, err)

	r, _, err := s.Get(id)
	require.NoError(t, err)
	defer r.Close()
	data, _ := io.ReadAll(r)
	require.Equal(t, "second", string(data))
}

func TestStore_PutTooLarge(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	big := bytes.NewReader(make([]byte, MaxBlobSize+1))
	_, err = s.Put(NewID(), big)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestStore_RejectsBadIDs(t *testing.T) {
	s, err := OpenAt(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		_, perr := s.Put(id, strings.NewReader("x"))
		require.Error(t, perr, "id %q", id)
	}
}

func TestNewID_HasLocalPrefix(t *testing.T) {
	id := NewID()
	require.True(t, strings.HasPrefix(id, "local_"))
	require.NotEqual(t, id, NewID())
}
