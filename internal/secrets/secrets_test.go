package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WEATHER_TOKEN=abc123\nOTHER=x\n"), 0o600))

	store, err := Load(path)
	require.NoError(t, err)

	v, err := store.Get("WEATHER_TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "abc123", v)
	assert.True(t, store.Has("OTHER"))
}

func TestLoad_ProcessEnvironmentWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HUTCH_TEST_SECRET=from-file\n"), 0o600))
	t.Setenv("HUTCH_TEST_SECRET", "from-env")

	store, err := Load(path)
	require.NoError(t, err)

	v, err := store.Get("HUTCH_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestGet_MissingSecret(t *testing.T) {
	store := FromMap(map[string]string{"PRESENT": "v"})

	_, err := store.Get("ABSENT")
	require.Error(t, err)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ABSENT", nf.Name)
	assert.False(t, store.Has("ABSENT"))
}

func TestGet_EmptyValueCountsAsMissing(t *testing.T) {
	store := FromMap(map[string]string{"EMPTY": ""})

	_, err := store.Get("EMPTY")
	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
}
