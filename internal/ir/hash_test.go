package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceDigestDeterminism(t *testing.T) {
	a := SourceDigest("# A\n# B\n")
	b := SourceDigest("# A\n# B\n")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestSourceDigestChangesWithText(t *testing.T) {
	assert.NotEqual(t, SourceDigest("# A\n"), SourceDigest("# B\n"))
	assert.NotEqual(t, SourceDigest("# A\n"), SourceDigest("# A\r\n"), "digest covers exact bytes")
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	want := sha256.Sum256([]byte(DomainOutline + "\x00" + "# A"))
	assert.Equal(t, hex.EncodeToString(want[:]), SourceDigest("# A"))

	// Moving a byte across the boundary must change the hash.
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}

func TestSourceDigestEmpty(t *testing.T) {
	assert.Equal(t, hashWithDomain(DomainOutline, nil), SourceDigest(""))
}
