package hashutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// ContentDigest is the blake3 hex digest attached to rendered documents.
func ContentDigest(content string) string {
	hash := blake3.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ETag formats a content digest as a strong HTTP entity tag.
func ETag(digest string) string {
	if len(digest) > 32 {
		digest = digest[:32]
	}
	return `"` + digest + `"`
}
