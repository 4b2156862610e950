package core

import "strings"

// CredentialFunc derives a default plaintext credential from a record's
// natural key (student ID, college code). Injected so the policy can be
// swapped without touching the import pipeline.
type CredentialFunc func(naturalKey string) string

// DefaultCredentialFunc upper-cases the natural key and appends the configured
// suffix. The result is documented, not secret; delivery of the welcome email
// is what conveys it to the account owner.
func DefaultCredentialFunc(suffix string) CredentialFunc {
	return func(naturalKey string) string {
		return strings.ToUpper(naturalKey) + suffix
	}
}
