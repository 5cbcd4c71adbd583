package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok := m.Get(KeyCart)
	assert.False(t, ok)

	require.NoError(t, m.Set(KeyCart, `[]`))
	v, ok := m.Get(KeyCart)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)

	require.NoError(t, m.Remove(KeyCart))
	_, ok = m.Get(KeyCart)
	assert.False(t, ok)

	assert.ErrorIs(t, m.Set("", "x"), ErrInvalidKey)
}

func TestFileStore(t *testing.T) {
	root, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	dev, err := root.Device("3f2a9c1e-0000-4000-8000-000000000001")
	require.NoError(t, err)

	t.Run("Set Get Remove", func(t *testing.T) {
		_, ok := dev.Get(KeyWishlist)
		assert.False(t, ok)

		require.NoError(t, dev.Set(KeyWishlist, `[{"productId":"p1"}]`))
		v, ok := dev.Get(KeyWishlist)
		assert.True(t, ok)
		assert.Equal(t, `[{"productId":"p1"}]`, v)

		require.NoError(t, dev.Set(KeyWishlist, `[]`))
		v, _ = dev.Get(KeyWishlist)
		assert.Equal(t, `[]`, v)

		require.NoError(t, dev.Remove(KeyWishlist))
		_, ok = dev.Get(KeyWishlist)
		assert.False(t, ok)

		assert.NoError(t, dev.Remove(KeyWishlist), "removing a missing key is a no-op")
	})

	t.Run("No temp files left behind", func(t *testing.T) {
		require.NoError(t, dev.Set(KeyCart, `[]`))
		matches, err := filepath.Glob(filepath.Join(dev.dir, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("Rejects unsafe names", func(t *testing.T) {
		_, err := root.Device("../escape")
		assert.ErrorIs(t, err, ErrInvalidKey)

		assert.ErrorIs(t, dev.Set("../x", "v"), ErrInvalidKey)
		_, ok := dev.Get("a/b")
		assert.False(t, ok)
	})

	t.Run("Devices are isolated", func(t *testing.T) {
		other, err := root.Device("other-device")
		require.NoError(t, err)
		require.NoError(t, dev.Set(KeyCart, `[1]`))

		_, ok := other.Get(KeyCart)
		assert.False(t, ok)

		_, err = os.Stat(filepath.Join(root.dir, "other-device"))
		assert.NoError(t, err)
	})
}
