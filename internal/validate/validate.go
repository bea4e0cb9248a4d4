// Package validate runs declarative, table-driven validation over form
// submissions. A rule set is a static list of (field, checks) pairs; every
// rule and every check runs, so a caller always sees the complete error set
// in one pass.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Form is a raw submission, field name to string value.
type Form map[string]string

// FieldError is a single validation failure, scoped to the field it occurred on.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of running a rule set. The error list is always
// non-nil; an empty list means the submission passed.
type Result struct {
	Errors []FieldError `json:"errors"`
}

// Valid reports whether the submission passed all checks.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Check inspects a single field value (with access to the whole form for
// cross-field checks) and returns a human-readable message, or "" if the
// value passes.
type Check func(value string, form Form) string

// Rule binds a field to its chain of checks. Trim controls whether the value
// is whitespace-trimmed before the checks run; password fields keep their raw
// value.
type Rule struct {
	Field  string
	Trim   bool
	Checks []Check
}

// Run evaluates every rule against the form. No rule or check short-circuits:
// a field with three violations contributes three errors.
func Run(form Form, rules []Rule) Result {
	result := Result{Errors: []FieldError{}}
	for _, rule := range rules {
		value := form[rule.Field]
		if rule.Trim {
			value = strings.TrimSpace(value)
		}
		for _, check := range rule.Checks {
			if msg := check(value, form); msg != "" {
				result.Errors = append(result.Errors, FieldError{Field: rule.Field, Message: msg})
			}
		}
	}
	return result
}

// CanonicalEmail normalizes an email address for comparison and storage:
// trimmed and lowercased.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required fails on an empty value.
func Required(msg string) Check {
	return func(value string, _ Form) string {
		if value == "" {
			return msg
		}
		return ""
	}
}

// MinLen fails when the value is shorter than n characters.
func MinLen(n int, msg string) Check {
	return func(value string, _ Form) string {
		if utf8.RuneCountInString(value) < n {
			return msg
		}
		return ""
	}
}

// WellFormedEmail fails when the value does not look like an email address.
func WellFormedEmail(msg string) Check {
	return func(value string, _ Form) string {
		if !emailRE.MatchString(value) {
			return msg
		}
		return ""
	}
}

// Matches fails when the value does not match the pattern.
func Matches(re *regexp.Regexp, msg string) Check {
	return func(value string, _ Form) string {
		if !re.MatchString(value) {
			return msg
		}
		return ""
	}
}

// EqualsField fails when the value differs from another field's raw value.
// Used for password confirmation, where the comparison is exact.
func EqualsField(other, msg string) Check {
	return func(value string, form Form) string {
		if value != form[other] {
			return msg
		}
		return ""
	}
}

// EqualsEmailField fails when the value differs from another field after both
// are normalized to canonical email form.
func EqualsEmailField(other, msg string) Check {
	return func(value string, form Form) string {
		if CanonicalEmail(value) != CanonicalEmail(form[other]) {
			return msg
		}
		return ""
	}
}
