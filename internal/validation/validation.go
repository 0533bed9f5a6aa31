// Package validation holds the stateless field validators and
// sanitizers shared by every entity service. Validators return a plain
// bool; the services translate failures into field errors.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/mkessler/timetrack/internal/constants"
)

var (
	nameCharset  = regexp.MustCompile(`^[A-Za-zÀ-ÿ0-9 _'\-.]+$`)
	emailShape   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	colorCharset = regexp.MustCompile(`^[a-f0-9#]*$`)

	upperClass   = regexp.MustCompile(`[A-Z]`)
	lowerClass   = regexp.MustCompile(`[a-z]`)
	digitClass   = regexp.MustCompile(`[0-9]`)
	nonWordClass = regexp.MustCompile(`[^A-Za-z0-9_]`)

	htmlTag      = regexp.MustCompile(`<[^>]*>`)
	nonHex       = regexp.MustCompile(`[^a-f0-9#]`)
	nonEmailSafe = regexp.MustCompile(`[^a-z0-9@._+\-]`)
)

// Date/time layouts accepted by ParseDateTime, most specific first.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ValidateName checks a display name: 5-180 characters after trimming,
// letters (including Latin-1 accents), digits, space, underscore,
// apostrophe, hyphen and dot.
func ValidateName(value string, allowEmpty bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return allowEmpty
	}
	if len(trimmed) < constants.NameMinLength || len(trimmed) > constants.NameMaxLength {
		return false
	}
	return nameCharset.MatchString(trimmed)
}

// ValidateEmail checks the rough RFC shape and the 5-180 length bound.
func ValidateEmail(value string, allowEmpty bool) bool {
	if value == "" {
		return allowEmpty
	}
	if len(value) < constants.EmailMinLength || len(value) > constants.EmailMaxLength {
		return false
	}
	return emailShape.MatchString(value)
}

// ValidateColor accepts hex-like color strings such as "#2f2f2f", at
// most 7 characters.
func ValidateColor(value string, allowEmpty bool) bool {
	if value == "" {
		return allowEmpty
	}
	if len(value) > constants.ColorMaxLength {
		return false
	}
	return colorCharset.MatchString(value)
}

// ValidateNumber checks an entity reference number, at most 10
// characters.
func ValidateNumber(value string, allowEmpty bool) bool {
	if value == "" {
		return allowEmpty
	}
	return len(value) <= constants.NumberMaxLength
}

// ValidateUsername checks the configured minimum length and the same
// upper bound as names.
func ValidateUsername(value string, minLength int) bool {
	return len(value) >= minLength && len(value) <= constants.NameMaxLength
}

// ValidateMinLength reports whether the value has at least min bytes.
func ValidateMinLength(value string, min int) bool {
	return len(value) >= min
}

// ValidateMaxLength reports whether the value has at most max bytes.
func ValidateMaxLength(value string, max int) bool {
	return len(value) <= max
}

// ValidatePassword requires the configured minimum length plus at least
// one uppercase letter, one lowercase letter, one digit and one
// non-word character.
func ValidatePassword(value string, minLength int) bool {
	if len(value) < minLength {
		return false
	}
	return upperClass.MatchString(value) &&
		lowerClass.MatchString(value) &&
		digitClass.MatchString(value) &&
		nonWordClass.MatchString(value)
}

// ValidateDate reports whether the value parses as a date or datetime.
func ValidateDate(value string) bool {
	_, ok := ParseDateTime(value)
	return ok
}

// ParseDateTime parses the accepted date/time layouts.
func ParseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateRole accepts only the fixed role reference set.
func ValidateRole(roleID uint64) bool {
	return roleID >= 1 && roleID <= 3
}

// Sanitize strips markup and backslashes from a raw form value and
// trims surrounding whitespace.
func Sanitize(value string) string {
	value = htmlTag.ReplaceAllString(value, "")
	value = strings.ReplaceAll(value, `\`, "")
	return strings.TrimSpace(value)
}

// SanitizeColor lower-cases and drops everything outside the hex
// charset.
func SanitizeColor(value string) string {
	return nonHex.ReplaceAllString(strings.ToLower(Sanitize(value)), "")
}

// SanitizeEmail lower-cases and keeps only email-safe characters.
func SanitizeEmail(value string) string {
	return nonEmailSafe.ReplaceAllString(strings.ToLower(Sanitize(value)), "")
}

// SanitizeUsername applies the email character filter to usernames.
// The filter is stricter than the username validator requires, but
// loosening it would reject logins stored under the filtered form.
func SanitizeUsername(value string) string {
	return SanitizeEmail(value)
}
