package util

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeIdentifier canonicalizes a login identifier so that visually
// equivalent inputs map to the same account: NFKC normalization, trimmed
// whitespace, lower case.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
