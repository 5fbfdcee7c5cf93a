package hash

import "fmt"

const fullRange = 0xFFFFFFFF

// StringHash hashes the string s under the salt
func StringHash(salt uint32, s string) uint32 {
	var h = salt
	for i := 0; i < len(s); i++ {
		h = Hash(h^uint32(s[i]), salt+uint32(i), fullRange)
	}
	return Hash(h, uint32(len(s)), fullRange)
}

// Fingerprint computes a 64-bit fingerprint of s out of two independently salted string hashes
func Fingerprint(s string) uint64 {
	return uint64(StringHash(0x9E3779B9, s))<<32 | uint64(StringHash(0x85EBCA6B, s))
}

// FingerprintHex formats the fingerprint of s as 16 hex digits
func FingerprintHex(s string) string {
	return fmt.Sprintf("%016x", Fingerprint(s))
}
