package file

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir, err := ioutil.TempDir("", "file-test")
	require.NoError(t, err)
	path := filepath.Join(dir, "present")
	require.NoError(t, ioutil.WriteFile(path, []byte("x"), 0600))
	require.True(t, Exists(path))
	require.True(t, Exists(dir))
	require.False(t, Exists(filepath.Join(dir, "bogus")))
}
