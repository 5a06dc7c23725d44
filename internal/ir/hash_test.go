package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	snapshot := IRObject{
		"type":     IRString("CircularQueue"),
		"elements": IRArray{IRInt(1), IRInt(2)},
		"maxSize":  IRInt(9),
	}

	fp1, err := Fingerprint(snapshot)
	require.NoError(t, err)

	fp2, err := Fingerprint(snapshot)
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2, "Fingerprint must be deterministic")
	assert.Len(t, fp1, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintIgnoresSourceFormatting(t *testing.T) {
	a, err := UnmarshalIRValue([]byte(`{"size": 2, "type": "CircularQueue"}`))
	require.NoError(t, err)
	b, err := UnmarshalIRValue([]byte(`{"type":"CircularQueue","size":2}`))
	require.NoError(t, err)

	assert.Equal(t, MustFingerprint(a.(IRObject)), MustFingerprint(b.(IRObject)))
}

func TestFingerprintChangesWithContent(t *testing.T) {
	fp1 := MustFingerprint(IRObject{"size": IRInt(1)})
	fp2 := MustFingerprint(IRObject{"size": IRInt(2)})
	assert.NotEqual(t, fp1, fp2)
}

func TestFingerprintDomainSeparation(t *testing.T) {
	snapshot := IRObject{"size": IRInt(1)}
	canonical, err := MarshalCanonical(snapshot)
	require.NoError(t, err)

	assert.Equal(t, hashWithDomain(DomainSnapshot, canonical), MustFingerprint(snapshot))
	assert.NotEqual(t, hashWithDomain("other/v1", canonical), MustFingerprint(snapshot))
}

func TestFingerprintRejectsNonFinite(t *testing.T) {
	_, err := Fingerprint(IRObject{"x": IRFloat(math.Inf(1))})
	require.Error(t, err)

	assert.Panics(t, func() {
		MustFingerprint(IRObject{"x": IRFloat(math.Inf(1))})
	})
}
