// Package validate holds the input checks applied before any profile
// mutation: text cleaning, email shape, link URLs, and upload limits.
package validate

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

// MaxUploadSize caps CV and transcript uploads.
const MaxUploadSize = 10 << 20 // 10MB

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Keep Hebrew, Latin, digits and basic punctuation; drop everything else.
	allowedTextRe = regexp.MustCompile(`[^\x{0590}-\x{05FF}a-zA-Z0-9\s\-.,!?()]`)
	spaceRunRe    = regexp.MustCompile(`\s+`)
)

// CleanText trims, collapses whitespace, strips characters outside the
// Hebrew/Latin/punctuation allowlist, and truncates to maxLength runes.
func CleanText(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	cleaned := strings.TrimSpace(text)
	cleaned = spaceRunRe.ReplaceAllString(cleaned, " ")
	cleaned = allowedTextRe.ReplaceAllString(cleaned, "")
	runes := []rune(cleaned)
	if maxLength > 0 && len(runes) > maxLength {
		cleaned = string(runes[:maxLength])
	}
	return cleaned
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidURL reports whether raw is an absolute http(s) URL with a resolvable
// host. IDN hosts (Hebrew domains are common here) are accepted when they
// survive punycode conversion.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	if host == "" {
		return false
	}
	if _, err := idna.Lookup.ToASCII(host); err != nil {
		return false
	}
	return true
}

// ValidateUpload rejects files outside the extension allowlist or over the
// size cap. Extensions are matched case-insensitively without their dot.
func ValidateUpload(filename string, size int64, allowedExts []string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	ok := false
	for _, allowed := range allowedExts {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("invalid file type %q, allowed: %s", ext, strings.Join(allowedExts, ", "))
	}
	if size > MaxUploadSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", size, MaxUploadSize)
	}
	return nil
}
