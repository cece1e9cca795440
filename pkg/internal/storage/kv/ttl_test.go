package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLWrapper(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	raw, err := encodeWithTTL([]byte("v"), 0, now)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), raw)

	wrapped, err := encodeWithTTL([]byte("v"), time.Minute, now)
	require.NoError(t, err)

	val, expired, err := decodeWithTTL(wrapped, now.Add(30*time.Second))
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, []byte("v"), val)

	_, expired, err = decodeWithTTL(wrapped, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, expired)

	_, _, err = decodeWithTTL([]byte(ttlMagic+"{broken"), now)
	assert.Error(t, err)
}

func TestMatchKey(t *testing.T) {
	assert.True(t, matchKey("", "a"))
	assert.True(t, matchKey("catalog:*", "catalog:list:1"))
	assert.False(t, matchKey("session:*", "catalog:gen"))
}
