package filestore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(afero.NewMemMapFs(), "/cfg", zap.NewNop())
	s.RegisterHeader("test.config", "Test table\nkey=value")
	return s
}

func writeFile(t *testing.T, s *Store, name, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(s.Fs(), s.Path(name), []byte(content), 0o644))
}

func readFile(t *testing.T, s *Store, name string) string {
	t.Helper()
	data, err := afero.ReadFile(s.Fs(), s.Path(name))
	require.NoError(t, err)
	return string(data)
}

func TestReadEntries(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "test.config", "  # comment\n\nfoo=true\nbar = 1,2,3\nbroken line\n=novalue\nurl=a=b\n")

	entries, err := s.ReadEntries("test.config")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Key: "foo", Value: "true", Line: 3}, entries[0])
	assert.Equal(t, Entry{Key: "bar", Value: "1,2,3", Line: 4}, entries[1])
	assert.Equal(t, Entry{Key: "url", Value: "a=b", Line: 7}, entries[2])
}

func TestReadEntries_Missing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ReadEntries("absent.config")
	assert.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func TestContainsKey(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.ContainsKey("test.config", "foo")
	require.NoError(t, err)
	assert.False(t, ok)

	writeFile(t, s, "test.config", "foo=1\n")
	ok, err = s.ContainsKey("test.config", "foo")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ContainsKey("test.config", "fo")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendEntry(t *testing.T) {
	t.Run("CreatesWithHeader", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.AppendEntry("test.config", "m:a", "true"))
		assert.Equal(t, "# Test table\n# key=value\nm:a=true\n", readFile(t, s, "test.config"))
	})

	t.Run("PreservesExistingLines", func(t *testing.T) {
		s := newTestStore(t)
		writeFile(t, s, "test.config", "# mine\nm:a = false   \n\n# trailing")
		require.NoError(t, s.AppendEntry("test.config", "m:b", "true"))
		assert.Equal(t, "# mine\nm:a = false   \n\n# trailing\nm:b=true\n", readFile(t, s, "test.config"))
	})

	t.Run("Batch", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.AppendEntries("test.config", []Entry{{Key: "a", Value: "1"}, {Key: "b", Value: ""}}))
		entries, err := s.ReadEntries("test.config")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "", entries[1].Value)
	})
}

func TestUpsertEntry(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "test.config", "# keep me\na=1\nb=2\na=3\n")

	require.NoError(t, s.UpsertEntry("test.config", "a", "9"))
	assert.Equal(t, "# keep me\na=9\nb=2\n", readFile(t, s, "test.config"))

	require.NoError(t, s.UpsertEntry("test.config", "c", "4"))
	assert.Equal(t, "# keep me\na=9\nb=2\nc=4\n", readFile(t, s, "test.config"))

	require.NoError(t, s.UpsertEntry("new.config", "x", "y"))
	assert.Equal(t, "# new.config\nx=y\n", readFile(t, s, "new.config"))
}

func TestWritesRejectInvalidEntries(t *testing.T) {
	tests := []struct {
		name       string
		key, value string
	}{
		{"EmptyKey", "", "true"},
		{"PaddedKey", " a", "true"},
		{"CommentKey", "#a", "true"},
		{"EqualsInKey", "a=b", "true"},
		{"NewlineInKey", "a\nb", "true"},
		{"NewlineInValue", "a", "rare\nb=legendary"},
		{"CarriageReturnInValue", "a", "rare\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			writeFile(t, s, "test.config", "a=1\n")

			assert.ErrorIs(t, s.AppendEntry("test.config", tt.key, tt.value), ErrInvalidEntry)
			assert.ErrorIs(t, s.UpsertEntry("test.config", tt.key, tt.value), ErrInvalidEntry)
			assert.ErrorIs(t, s.WriteEntries("test.config", []Entry{{Key: tt.key, Value: tt.value}}), ErrInvalidEntry)
			assert.Equal(t, "a=1\n", readFile(t, s, "test.config"))
		})
	}
}

func TestRemoveEntry(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, "test.config", "# head\na=1\nb=2\na=3\n")

	require.NoError(t, s.RemoveEntry("test.config", "a"))
	assert.Equal(t, "# head\nb=2\n", readFile(t, s, "test.config"))

	require.NoError(t, s.RemoveEntry("test.config", "zzz"))
	assert.Equal(t, "# head\nb=2\n", readFile(t, s, "test.config"))

	assert.NoError(t, s.RemoveEntry("absent.config", "a"))
}

func TestWriteEntries_LeavesNoTempFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteEntries("test.config", []Entry{{Key: "a", Value: "1"}}))

	exists, err := afero.Exists(s.Fs(), s.Path("test.config.tmp"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "# Test table\n# key=value\na=1\n", readFile(t, s, "test.config"))
}

func TestWriteFailureKeepsOriginal(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/cfg/test.config", []byte("a=1\n"), 0o644))

	s := New(afero.NewReadOnlyFs(base), "/cfg", zap.NewNop())
	err := s.UpsertEntry("test.config", "a", "2")
	assert.Error(t, err)

	data, err := afero.ReadFile(base, "/cfg/test.config")
	require.NoError(t, err)
	assert.Equal(t, "a=1\n", string(data))
}
