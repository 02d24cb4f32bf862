package players

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a short stable digest of an address key, used wherever the
// raw address should not be logged or stored.
func Fingerprint(addr string) string {
	sum := blake2b.Sum256([]byte(addr))
	return hex.EncodeToString(sum[:6])
}
