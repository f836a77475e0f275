// Package canonid implements the canonical-ID hash construction:
// a per-namespace 9-byte key mask is split into a low 8-byte half
// (XORed against the leader's SHA-256 digest) and a high 1-byte tail
// (appended), then base64/URL-safe encoded.
//
// The base masks for namespaces 1-3 are confirmed production constants;
// the masks for namespaces 4-10 follow a derived pattern and are not
// confirmed, so configurations using more than three merge keys must
// supply their own — see DESIGN.md.
package canonid
