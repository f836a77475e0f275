package canonid

import (
	"encoding/hex"
	"fmt"
)

// DefaultKeyMasks holds the per-namespace key_mask constants, indexed by
// namespace-1 (namespace 1's mask is DefaultKeyMasks[0]). Each is an 18-hex-
// character (9-byte) string: the first 16 hex chars are mask_low, the last 2
// are mask_high.
var DefaultKeyMasks = []string{
	"0ffdbcf0c666ce190d", // ns=1, confirmed
	"61a821f2b646a4e890", // ns=2, confirmed
	"acd2206c3f88b3ee27", // ns=3, confirmed
	"e2b8c47f5a94d1e36f", // ns=4, derived pattern
	"7c3f9e8b2d156a0492", // ns=5, derived pattern
	"4f6a1c8e7b359d2841", // ns=6, derived pattern
	"9b2e5f7a4c8d1e6307", // ns=7, derived pattern
	"3a7c9f2e6b8d4e1529", // ns=8, derived pattern
	"8e4f7a1c9b6d2e5083", // ns=9, derived pattern
	"2c6f9e4a7b1d8e3567", // ns=10, derived pattern
}

// ConfirmedMaskCount is how many entries at the front of DefaultKeyMasks are
// confirmed against the source system rather than pattern-derived. See
// DESIGN.md.
const ConfirmedMaskCount = 3

// Mask is the parsed form of one key_mask: mask_low split into two 32-bit
// halves (its first 16 hex chars split into two 8-char halves), plus the
// 1-byte mask_high tail.
type Mask struct {
	LowHigh32 uint32 // first 8 hex chars of mask_low
	LowLow32  uint32 // last 8 hex chars of mask_low
	High      byte
}

// ParseMask parses an 18-hex-character key_mask string.
func ParseMask(raw string) (Mask, error) {
	if len(raw) != 18 {
		return Mask{}, fmt.Errorf("canonid: key_mask must be 18 hex chars, got %d", len(raw))
	}
	maskLow := raw[:16]
	maskHighHex := raw[16:]

	highBytes, err := hex.DecodeString(maskHighHex)
	if err != nil {
		return Mask{}, fmt.Errorf("canonid: invalid mask_high %q: %w", maskHighHex, err)
	}

	var a, b uint32
	if _, err := fmt.Sscanf(maskLow[:8], "%08x", &a); err != nil {
		return Mask{}, fmt.Errorf("canonid: invalid mask_low high half %q: %w", maskLow[:8], err)
	}
	if _, err := fmt.Sscanf(maskLow[8:16], "%08x", &b); err != nil {
		return Mask{}, fmt.Errorf("canonid: invalid mask_low low half %q: %w", maskLow[8:16], err)
	}

	return Mask{LowHigh32: a, LowLow32: b, High: highBytes[0]}, nil
}

// MaskForNamespace returns the parsed mask for a 1-based namespace, drawn
// from masks (typically DefaultKeyMasks, or a config-supplied override for
// namespaces beyond ConfirmedMaskCount).
func MaskForNamespace(masks []string, ns int) (Mask, error) {
	idx := ns - 1
	if idx < 0 || idx >= len(masks) {
		return Mask{}, fmt.Errorf("canonid: no key_mask configured for namespace %d", ns)
	}
	return ParseMask(masks[idx])
}
