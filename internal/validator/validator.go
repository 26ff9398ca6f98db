// Package validator provides input validation and sanitization functions
// for submitted form values and uploaded file names.
package validator

import (
	"errors"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation errors
var (
	ErrInvalidEmail = errors.New("invalid email format")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	ErrEmptyInput   = errors.New("input cannot be empty")
)

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	return nil
}

// SanitizeFilename removes dangerous characters from filename.
// Prevents path traversal and removes control characters.
func SanitizeFilename(filename string) string {
	// Remove path separators to prevent path traversal
	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "..", "_")

	filename = stripControl(filename, false)
	filename = strings.TrimSpace(filename)

	// Limit length to 255 bytes (common filesystem limit) without splitting a rune
	if len(filename) > 255 {
		cut := 255
		for cut > 0 && !utf8.RuneStart(filename[cut]) {
			cut--
		}
		filename = filename[:cut]
	}

	if filename == "" {
		return "unnamed"
	}

	return filename
}

// DecodeFilename turns a client-supplied, possibly percent-encoded file name
// into its display form. Malformed escapes leave the name as sent.
func DecodeFilename(name string) string {
	if !strings.Contains(name, "%") {
		return name
	}
	decoded, err := url.PathUnescape(name)
	if err != nil || !utf8.ValidString(decoded) {
		return name
	}
	return decoded
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	input = stripControl(input, false)
	input = strings.TrimSpace(input)
	return truncate(input, maxLength)
}

// SanitizeText is SanitizeString for multi-line free text: line breaks and
// tabs survive, other control characters are dropped.
func SanitizeText(input string, maxLength int) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = stripControl(input, true)
	input = strings.TrimSpace(input)
	return truncate(input, maxLength)
}

func stripControl(s string, keepLayout bool) string {
	return strings.Map(func(r rune) rune {
		if keepLayout && (r == '\n' || r == '\t') {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

func truncate(s string, maxLength int) string {
	if maxLength > 0 && utf8.RuneCountInString(s) > maxLength {
		runes := []rune(s)
		s = string(runes[:maxLength])
	}
	return s
}
