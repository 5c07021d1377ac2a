// Package masking obscures PII in free text shown to viewers without an
// exposure grant. Detection runs in three ordered passes: email addresses,
// digit runs, then plain words (Latin or Hebrew).
package masking

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)
	digitRe = regexp.MustCompile(`[0-9]+`)
	wordRe  = regexp.MustCompile(`[a-zA-Z\x{0590}-\x{05FF}]{4,}`)
)

// maskWord hides the interior of a word, e.g. "important" -> "i*******t".
// Words of one or two characters are replaced wholesale with "**".
func maskWord(word string) string {
	runes := []rune(word)
	if len(runes) <= 2 {
		return "**"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// maskEmail masks the local part and domain independently, keeping the "@".
// e.g. "test.email@example.com" -> "t********l@e********m".
func maskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return maskWord(local)
	}
	return maskWord(local) + "@" + maskWord(domain)
}

// maskDigits stars the interior of a maximal digit run, keeping the first and
// last digit. Runs of one or two digits pass through unchanged.
func maskDigits(run string) string {
	if len(run) <= 2 {
		return run
	}
	return run[:1] + strings.Repeat("*", len(run)-2) + run[len(run)-1:]
}

// Mask obscures emails, digit runs, and words of four or more letters.
// Emails go first so the word pass never re-masks their output; any word
// already containing '*' or '@' is left alone for the same reason.
func Mask(text string) string {
	if text == "" {
		return text
	}

	masked := emailRe.ReplaceAllStringFunc(text, maskEmail)
	masked = digitRe.ReplaceAllStringFunc(masked, maskDigits)
	masked = wordRe.ReplaceAllStringFunc(masked, func(word string) string {
		if strings.ContainsAny(word, "*@") {
			return word
		}
		return maskWord(word)
	})
	return masked
}
