package utils

import (
	"regexp"
	"strings"
)

var e164MaskRe = regexp.MustCompile(`^(\+)(\d{1,3})(\d{3})(\d+)$`)

// MaskPhoneNumber masks a caller number for logs and API responses
// Example: +14155550123 -> +141555•0123
func MaskPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	matches := e164MaskRe.FindStringSubmatch(phone)
	if len(matches) == 5 {
		countryCode := matches[2]
		first3 := matches[3]
		lastDigits := matches[4]

		if len(lastDigits) >= 4 {
			last4 := lastDigits[len(lastDigits)-4:]
			masked := strings.Repeat("•", len(lastDigits)-4)
			return "+" + countryCode + first3 + masked + last4
		}
	}

	if len(phone) > 4 {
		return strings.Repeat("•", len(phone)-4) + phone[len(phone)-4:]
	}

	return strings.Repeat("•", len(phone))
}
