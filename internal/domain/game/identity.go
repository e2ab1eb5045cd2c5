package game

import (
	"regexp"
	"strings"
)

// cpuIdentity is the reserved identity the API reports for the automated
// opponent.
const cpuIdentity = "cpu"

// identityMarkup matches the ^bNN^ color markup some identities carry.
var identityMarkup = regexp.MustCompile(`(?i)\^b\d+\^`)

// NormalizeIdentity strips identity markup, trims and case-folds, producing
// the canonical form used for all membership comparisons.
func NormalizeIdentity(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(identityMarkup.ReplaceAllString(raw, "")))
}

// IsCPU reports whether the raw identity denotes the automated opponent.
func IsCPU(raw string) bool {
	return NormalizeIdentity(raw) == cpuIdentity
}
