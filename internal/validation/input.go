package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input limits checked before a request is built.
const (
	MinPhoneDigits   = 7
	MaxPhoneDigits   = 15 // E.164
	MaxMessageLength = 1600
	MaxURLLength     = 2048
)

// ValidatePhone checks that phone is in international format: a leading +
// followed by digits only.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("phone number cannot be empty")
	}
	if !strings.HasPrefix(phone, "+") {
		return fmt.Errorf("invalid phone number %q: must start with + and a country code", phone)
	}
	digits := phone[1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid phone number %q: contains invalid character '%c'", phone, r)
		}
	}
	if n := len(digits); n < MinPhoneDigits || n > MaxPhoneDigits {
		return fmt.Errorf("invalid phone number %q: expected %d-%d digits, got %d", phone, MinPhoneDigits, MaxPhoneDigits, n)
	}
	return nil
}

// ValidatePhoneList checks a comma separated list of phone numbers and
// returns it normalised without spaces.
func ValidatePhoneList(list string) (string, error) {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if err := ValidatePhone(p); err != nil {
			return "", err
		}
		out = append(out, p)
	}
	return strings.Join(out, ","), nil
}

// ValidateMessageContent checks an SMS body. Messages longer than one
// segment are allowed; the provider splits them.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters (got %d)", MaxMessageLength, n)
	}
	return nil
}

// ParseCursorID parses a last received id. Zero is valid.
func ParseCursorID(s string, fieldName string) (int64, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if id < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", fieldName)
	}
	return id, nil
}
