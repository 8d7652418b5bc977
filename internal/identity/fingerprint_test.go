package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderFingerprinterIsDeterministicAndKeyed(t *testing.T) {
	key := NewFingerprintKey("server-secret")

	a, err := NewHeaderFingerprinter(key, "a1b2c3d4e5f6").Fingerprint()
	require.NoError(t, err)
	b, err := NewHeaderFingerprinter(key, "a1b2c3d4e5f6").Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.NotContains(t, a, "a1b2c3d4e5f6")

	other, err := NewHeaderFingerprinter(NewFingerprintKey("another"), "a1b2c3d4e5f6").Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	unkeyed, err := NewHeaderFingerprinter(nil, "a1b2c3d4e5f6").Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, unkeyed)
}

func TestHeaderFingerprinterRejectsBadInput(t *testing.T) {
	for _, visitorID := range []string{"", "short", "has spaces in it", "semi;colon;value"} {
		_, err := NewHeaderFingerprinter(nil, visitorID).Fingerprint()
		assert.Error(t, err, visitorID)
	}
}
