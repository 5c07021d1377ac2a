package validate

import (
	"regexp"
	"strings"
)

var (
	nonDigitRe = regexp.MustCompile(`\D`)

	// Israeli numbering plan: 05X mobiles, 0X landlines, bare international form.
	mobileRe        = regexp.MustCompile(`^05\d{8}$`)
	landlineRe      = regexp.MustCompile(`^0[2-489]\d{7,8}$`)
	internationalRe = regexp.MustCompile(`^972[2-9]\d{7,8}$`)
)

// IsValidIsraeliPhone reports whether phone matches an Israeli mobile,
// landline, or international-form number, ignoring separators.
func IsValidIsraeliPhone(phone string) bool {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	return mobileRe.MatchString(digits) || landlineRe.MatchString(digits) || internationalRe.MatchString(digits)
}

// FormatIsraeliPhone renders a local number with dashes: 050-123-4567 for
// mobiles, 02-123-4567 for landlines. Input that matches neither shape is
// returned unchanged.
func FormatIsraeliPhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "05"):
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	case len(digits) >= 9 && strings.HasPrefix(digits, "0"):
		return digits[:2] + "-" + digits[2:5] + "-" + digits[5:]
	}
	return phone
}
