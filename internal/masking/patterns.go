// Package masking scrubs PII that users paste into free-text fields (brain
// dump notes, task names) before those values are captured into an audit
// log's entity_data snapshot or published to pub/sub (§3.1's audit log is
// the system of record for incremental sync, so anything written there is
// retained and broadcast).
package masking

import "regexp"

// Pattern is a pre-compiled regex scrub rule.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns mirrors the shape (not the full catalog) of the teacher's
// built-in masking patterns, narrowed to the PII categories plausible in a
// personal planner's free-text fields: emails, phone numbers, and
// credential-shaped strings a user might paste into a brain dump by
// accident.
func builtinPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "email",
			Regex:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`),
			Replacement: "[MASKED_EMAIL]",
		},
		{
			Name:        "phone",
			Regex:       regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
			Replacement: "[MASKED_PHONE]",
		},
		{
			Name:        "api_key",
			Regex:       regexp.MustCompile(`(?i)(?:api[_-]?key|apikey)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{20,})["']?`),
			Replacement: "[MASKED_API_KEY]",
		},
		{
			Name:        "token",
			Regex:       regexp.MustCompile(`(?i)(?:token|bearer|jwt)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-.]{20,})["']?`),
			Replacement: "[MASKED_TOKEN]",
		},
		{
			Name:        "password",
			Regex:       regexp.MustCompile(`(?i)(?:password|pwd|pass)["']?\s*[:=]\s*["']?([^"'\s\n]{6,})["']?`),
			Replacement: "[MASKED_PASSWORD]",
		},
	}
}
