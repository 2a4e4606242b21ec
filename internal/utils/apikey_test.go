package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndParseAPIKey(t *testing.T) {
	userID := uuid.New()

	key, err := MintAPIKey(userID, "secret")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	parsed, err := ParseAPIKey(key, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestParseAPIKeyWrongSecret(t *testing.T) {
	key, err := MintAPIKey(uuid.New(), "secret")
	require.NoError(t, err)

	_, err = ParseAPIKey(key, "other-secret")
	require.Error(t, err)
}

func TestParseAPIKeyGarbage(t *testing.T) {
	_, err := ParseAPIKey("not-a-token", "secret")
	require.Error(t, err)
}
