package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "****"},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "1234...6789"},
		{"squ_abcdefghijklmnop", "squ_...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskToken(tt.token))
		})
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "config.yaml"))

	assert.True(t, store.Load().Empty())

	want := StoredConfig{URL: "https://sonar.example.com", Token: "squ_secret"}
	require.NoError(t, store.Save(want))
	assert.Equal(t, want, store.Load())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, store.Remove())
	assert.True(t, store.Load().Empty())
	assert.NoError(t, store.Remove())
}

func TestStoreLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: [unterminated"), 0o600))

	assert.True(t, NewStore(path).Load().Empty())
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, filepath.Join("sonar-cli", "config.yaml"),
		filepath.Join(filepath.Base(filepath.Dir(DefaultStore().Path())), filepath.Base(DefaultStore().Path())))
}
