package crypto

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
)

// Fingerprint is the MD5 digest of a canonical payload. MD5 is used for its
// short, stable output; the code is an identifier, not a secret.
type Fingerprint [md5.Size]byte

// codeBytes is how many digest bytes make up the unique code.
const codeBytes = 8

var codeRe = regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

// Digest hashes payload.
func Digest(payload []byte) Fingerprint {
	return md5.Sum(payload)
}

// Hex returns the full lowercase hex digest.
func (f Fingerprint) Hex() string {
	return hex.EncodeToString(f[:])
}

// FormatCode renders the first 8 bytes of fp as uppercase hex in four
// hyphen-separated groups of four characters.
func FormatCode(fp Fingerprint) string {
	h := strings.ToUpper(hex.EncodeToString(fp[:codeBytes]))
	return h[0:4] + "-" + h[4:8] + "-" + h[8:12] + "-" + h[12:16]
}

// UniqueCode is FormatCode(Digest(payload)).
func UniqueCode(payload []byte) string {
	return FormatCode(Digest(payload))
}

// ValidCode reports whether s is a well-formed unique code.
func ValidCode(s string) bool {
	return codeRe.MatchString(s)
}
