// Package seed derives a deterministic, reproducible integer from a
// character's canonical name, used in portrait generation so the same name
// always yields the same portrait filename and prompt seed token. The image
// provider's pixels are not fixed by it.
package seed

import (
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// FromName returns a 32-bit seed derived from the MD5 digest of the
// lowercased, trimmed name, treated as a big-endian integer modulo 2^32 —
// equivalently, its last 4 bytes. The same name always yields the same seed.
func FromName(name string) uint32 {
	normalized := strings.ToLower(strings.TrimSpace(name))
	sum := md5.Sum([]byte(normalized))
	return binary.BigEndian.Uint32(sum[12:16])
}
