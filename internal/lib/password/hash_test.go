package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.NoError(t, CompareHash(hash, "s3cret"))
	assert.Error(t, CompareHash(hash, "wrong"))
}

func TestCompareHash_InvalidHash(t *testing.T) {
	assert.Error(t, CompareHash("not-a-bcrypt-hash", "s3cret"))
}
