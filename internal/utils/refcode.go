package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// Reference codes are the human-readable handle given to sellers when they
// submit a car ("SUB-XXXXXXXX"). They use the same Crockford alphabet as
// SixID so codes survive being read over the phone.

const refCodePrefix = "SUB"
const refCodeLength = 8

var refCodePattern = regexp.MustCompile(`^SUB-[0-9A-HJKMNP-TV-Z]{8}$`)

// NewRefCode generates a submission reference code of the form SUB-XXXXXXXX.
func NewRefCode() string {
	buf := make([]byte, refCodeLength)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = 0
		}
	}
	code := make([]byte, refCodeLength)
	for i, b := range buf {
		code[i] = crockfordAlphabet[int(b)%len(crockfordAlphabet)]
	}
	return fmt.Sprintf("%s-%s", refCodePrefix, string(code))
}

// ValidRefCode reports whether s looks like a submission reference code.
// Lowercase input is tolerated.
func ValidRefCode(s string) bool {
	return refCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}
