package providers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdCompressor_RoundTrip(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	payload := bytes.Repeat([]byte(`{"heart_rate":61,"steps":3},`), 200)
	packed, err := c.Compress(payload)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(payload))

	out, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestZstdCompressor_EmptyInput(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	packed, err := c.Compress(nil)
	require.NoError(t, err)
	out, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestZstdCompressor_RejectsGarbage(t *testing.T) {
	c, err := NewZstdCompressor()
	require.NoError(t, err)

	_, err = c.Decompress([]byte("definitely not a zstd frame"))
	assert.Error(t, err)
}
