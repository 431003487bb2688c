package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFlag(t *testing.T) {
	assert.Equal(t, "flag{x}", NormalizeFlag("flag{x}"))
	assert.Equal(t, "flag{x}", NormalizeFlag("  FLAG{X} "))
	assert.Equal(t, "flag{x}", NormalizeFlag("\tFlag{x}\n"))
}

func TestHashFlagCaseAndWhitespaceInsensitive(t *testing.T) {
	base := HashFlag("flag{exif_never_forgets}")

	assert.Equal(t, base, HashFlag("  FLAG{EXIF_NEVER_FORGETS} "))
	assert.NotEqual(t, base, HashFlag("flag{exif_never_forget}"))

	// Hex SHA-256, fits the 64-char column.
	assert.Len(t, base, 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, base)
}

func TestHashFlagKnownDigest(t *testing.T) {
	// sha256("abc"), pinned so the digest scheme cannot drift silently.
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		HashFlag("abc"))
}
