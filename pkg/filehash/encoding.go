package filehash

import (
	"encoding/hex"
	"hash"
)

// LowerHex returns the lowercase hex digest of everything written to h so
// far. h is left untouched and can keep accepting writes.
func LowerHex(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
