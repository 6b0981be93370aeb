package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSV_HeaderMapping(t *testing.T) {
	path := writeFixture(t, "category.csv", "id,name,slug\n1,Movies,movie\n2,Books,book\n")

	records, err := readCSV(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Movies", records[0].get("name"))
	assert.Equal(t, "book", records[1].get("slug"))

	id, err := records[1].getInt("id")
	require.NoError(t, err)
	assert.EqualValues(t, 2, id)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	path := writeFixture(t, "empty.csv", "")

	records, err := readCSV(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadCSV_BadInt(t *testing.T) {
	path := writeFixture(t, "bad.csv", "id,name\nnope,Thing\n")

	records, err := readCSV(path)
	require.NoError(t, err)

	_, err = records[0].getInt("id")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParsePubDate(t *testing.T) {
	parsed := parsePubDate("2019-09-24T21:08:21.767Z")
	assert.False(t, parsed.IsZero())
	assert.Equal(t, 2019, parsed.Year())

	// unknown layout degrades to zero time, filled by the store
	assert.True(t, parsePubDate("yesterday").IsZero())
}
