package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateMasterKey(t *testing.T) {
	t.Run("creates key with restricted permissions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")

		key, err := LoadOrCreateMasterKey(path)
		require.NoError(t, err)
		assert.Len(t, key, MasterKeySize)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("creates the data directory on first boot", func(t *testing.T) {
		// Default config points at data/encryption.key before anything has
		// created data/; provisioning must not depend on that ordering.
		path := filepath.Join(t.TempDir(), "data", "encryption.key")

		key, err := LoadOrCreateMasterKey(path)
		require.NoError(t, err)
		assert.Len(t, key, MasterKeySize)

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("loads the same key on subsequent calls", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")

		first, err := LoadOrCreateMasterKey(path)
		require.NoError(t, err)
		second, err := LoadOrCreateMasterKey(path)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects truncated key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

		_, err := LoadOrCreateMasterKey(path)
		assert.Error(t, err)
	})
}

func TestDeriveKey(t *testing.T) {
	master := make([]byte, MasterKeySize)
	for i := range master {
		master[i] = byte(i)
	}

	t.Run("distinct contexts yield distinct keys", func(t *testing.T) {
		a, err := DeriveKey(master, "aegis/verification")
		require.NoError(t, err)
		b, err := DeriveKey(master, "aegis/consent")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.NotEqual(t, master, a)
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		a, err := DeriveKey(master, "aegis/verification")
		require.NoError(t, err)
		b, err := DeriveKey(master, "aegis/verification")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("rejects short master key", func(t *testing.T) {
		_, err := DeriveKey([]byte("short"), "aegis/consent")
		assert.Error(t, err)
	})
}
