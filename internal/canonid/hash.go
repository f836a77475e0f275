package canonid

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// Compute implements the canonical_id construction for a single leader
// identifier under the given namespace mask:
//
//  1. H = SHA-256(leaderID) as a 64-hex-char string.
//  2. Split H's first 16 hex chars into two 8-char halves; XOR each as a
//     32-bit unsigned integer with the corresponding half of mask.Low.
//  3. Concatenate the two XORed halves (8 bytes) with the 1-byte mask.High
//     to form a 9-byte value.
//  4. Base64-encode, then apply the URL-safe projection (+→-, /→_, strip
//     trailing =).
//
// The result contains only [A-Za-z0-9_-] and never ends in '=' (9 bytes
// base64-encodes to exactly 12 characters with no padding).
func Compute(leaderID string, mask Mask) string {
	sum := sha256.Sum256([]byte(leaderID))
	hexSum := hex.EncodeToString(sum[:])

	var a, b uint32
	// first16[:8] and first16[8:16] parsed as big-endian 32-bit integers.
	aBytes, _ := hex.DecodeString(hexSum[0:8])
	bBytes, _ := hex.DecodeString(hexSum[8:16])
	a = binary.BigEndian.Uint32(aBytes)
	b = binary.BigEndian.Uint32(bBytes)

	xa := a ^ mask.LowHigh32
	xb := b ^ mask.LowLow32

	buf := make([]byte, 9)
	binary.BigEndian.PutUint32(buf[0:4], xa)
	binary.BigEndian.PutUint32(buf[4:8], xb)
	buf[8] = mask.High

	encoded := base64.StdEncoding.EncodeToString(buf)
	return urlSafe(encoded)
}

func urlSafe(encoded string) string {
	r := strings.NewReplacer("+", "-", "/", "_")
	encoded = r.Replace(encoded)
	return strings.TrimRight(encoded, "=")
}
