package canonid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var urlSafeBase64 = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestCompute_URLSafeAlphabet(t *testing.T) {
	mask, err := ParseMask(DefaultKeyMasks[0])
	require.NoError(t, err)

	for _, leader := range []string{"a@x", "user@example.com", "", "111", "🙂unicode"} {
		got := Compute(leader, mask)
		require.Regexp(t, urlSafeBase64, got, "leader=%q", leader)
		require.NotEqual(t, byte('='), got[len(got)-1])
		require.Len(t, got, 12, "9 bytes base64-encodes to exactly 12 chars with no padding")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	mask, err := ParseMask(DefaultKeyMasks[1])
	require.NoError(t, err)

	a := Compute("stable@example.com", mask)
	b := Compute("stable@example.com", mask)
	require.Equal(t, a, b)
}

func TestCompute_DifferentNamespaceMaskDiffers(t *testing.T) {
	m1, err := ParseMask(DefaultKeyMasks[0])
	require.NoError(t, err)
	m2, err := ParseMask(DefaultKeyMasks[1])
	require.NoError(t, err)

	id1 := Compute("same-leader", m1)
	id2 := Compute("same-leader", m2)
	require.NotEqual(t, id1, id2, "the same leader id hashed under different namespace masks must differ")
}

func TestParseMask_RejectsWrongLength(t *testing.T) {
	_, err := ParseMask("abc")
	require.Error(t, err)
}

func TestMaskForNamespace_Default(t *testing.T) {
	mask, err := MaskForNamespace(DefaultKeyMasks, 1)
	require.NoError(t, err)
	want, _ := ParseMask(DefaultKeyMasks[0])
	require.Equal(t, want, mask)

	_, err = MaskForNamespace(DefaultKeyMasks, 0)
	require.Error(t, err)
	_, err = MaskForNamespace(DefaultKeyMasks, 11)
	require.Error(t, err)
}
