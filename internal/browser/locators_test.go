package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocators_EmptyPath(t *testing.T) {
	locs, err := LoadLocators("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLocators(), locs)
}

func TestLoadLocators_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locators.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_box: \"#newSearch\"\nstatus: \"#newStatus\"\n"), 0o644))

	locs, err := LoadLocators(path)
	require.NoError(t, err)

	assert.Equal(t, "#newSearch", locs.SearchBox)
	assert.Equal(t, "#newStatus", locs.Status)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultLocators().Username, locs.Username)
	assert.Equal(t, DefaultLocators().Discovery, locs.Discovery)
}

func TestLoadLocators_MissingFile(t *testing.T) {
	_, err := LoadLocators(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadLocators_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locators.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_box: [unclosed"), 0o644))

	_, err := LoadLocators(path)
	assert.Error(t, err)
}
