// Package cvparse extracts contact details from uploaded CV files. PDF text
// comes out of the embedded reader; plain text files are read as-is. Parsed
// values are suggestions for the chat flow to confirm, never authoritative.
package cvparse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/cvgo/cvgo/internal/validate"
)

// Parsed holds the fields recovered from a CV, with a per-field confidence
// estimate in [0, 1]. Missing fields are empty strings with no confidence
// entry.
type Parsed struct {
	Name       string             `json:"name,omitempty"`
	Email      string             `json:"email,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	Confidence map[string]float64 `json:"confidence"`
}

var (
	emailRe = regexp.MustCompile(`[\w.\-+]+@[\w.\-]+\.\w{2,}`)

	// Israeli phone shapes as they appear in running text, separators allowed.
	phoneRe = regexp.MustCompile(`(?:\+?972[\s\-]?|0)(?:5\d|[2-489])[\s\-]?\d{3}[\s\-]?\d{4}`)

	// Lines that are clearly headers or contact info rather than a name.
	nonNameRe = regexp.MustCompile(`[@0-9]|(?i)curriculum|resume|קורות חיים`)
)

// ParseFile extracts text from the file at path and parses it. Supported
// extensions are .pdf and .txt; anything else yields an empty Parsed with no
// error since parsing is best effort.
func ParseFile(path string) (*Parsed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := extractPDFText(path)
		if err != nil {
			return nil, fmt.Errorf("reading pdf: %w", err)
		}
		return ParseText(text), nil
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading text file: %w", err)
		}
		return ParseText(string(data)), nil
	}
	return &Parsed{Confidence: map[string]float64{}}, nil
}

// ParseText scans raw CV text for an email address, an Israeli phone number,
// and a candidate name taken from the first plausible line.
func ParseText(text string) *Parsed {
	p := &Parsed{Confidence: map[string]float64{}}

	if m := emailRe.FindString(text); m != "" && validate.IsValidEmail(m) {
		p.Email = strings.ToLower(m)
		p.Confidence["email"] = 0.9
	}

	for _, m := range phoneRe.FindAllString(text, -1) {
		if validate.IsValidIsraeliPhone(m) {
			p.Phone = validate.FormatIsraeliPhone(m)
			p.Confidence["phone"] = 0.8
			break
		}
	}

	if name := guessName(text); name != "" {
		p.Name = name
		p.Confidence["name"] = 0.5
	}

	return p
}

// guessName takes the first short line near the top of the document that
// doesn't look like a header, an address, or contact details.
func guessName(text string) string {
	lines := strings.Split(text, "\n")
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if line == "" || nonNameRe.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		return strings.Join(words, " ")
	}
	return ""
}

// extractPDFText pulls plain text out of every page. Malformed PDFs can make
// the reader panic, so the whole extraction runs under a recover guard.
func extractPDFText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
