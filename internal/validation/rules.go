// Package validation holds the field rules shared by every form: length bounds
// for names and addresses, email shape and password policy. Each rule returns
// the message to show next to the field, or "" when the value is acceptable.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"storerating/internal/models"
)

const (
	NameMinLen    = 20
	NameMaxLen    = 60
	AddressMaxLen = 400

	PasswordMinLen = 8
	PasswordMaxLen = 16
	// PasswordSpecials is the set a password must draw at least one character from.
	PasswordSpecials = "!@#$%^&*"

	RatingMin = 1
	RatingMax = 5
)

var (
	// RE2's \s is ASCII only; the class also excludes \v, Unicode separators and BOM.
	emailPattern    = regexp.MustCompile(`^[^\s\x0B\p{Z}\x{FEFF}@]+@[^\s\x0B\p{Z}\x{FEFF}@]+\.[^\s\x0B\p{Z}\x{FEFF}@]+$`)
	passwordCharset = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*]+$`)
)

// Name checks a display name against the 20-60 character bounds. label is the
// human name of the field ("Name", "Store name", "Owner name").
func Name(label, value string) string {
	n := utf8.RuneCountInString(value)
	switch {
	case n < NameMinLen:
		return fmt.Sprintf("%s must be at least %d characters", label, NameMinLen)
	case n > NameMaxLen:
		return fmt.Sprintf("%s must not exceed %d characters", label, NameMaxLen)
	}
	return ""
}

// Address checks the 400 character upper bound. An empty address is accepted.
func Address(value string) string {
	if utf8.RuneCountInString(value) > AddressMaxLen {
		return fmt.Sprintf("Address must not exceed %d characters", AddressMaxLen)
	}
	return ""
}

// Email checks the local@domain.tld shape. qualifier is inserted before
// "email" in the message ("store", "owner"), empty for a plain address.
func Email(qualifier, value string) string {
	if emailPattern.MatchString(value) {
		return ""
	}
	if qualifier == "" {
		return "Please enter a valid email address"
	}
	return fmt.Sprintf("Please enter a valid %s email address", qualifier)
}

// PasswordMessage is reported for any password that breaks the policy.
var PasswordMessage = fmt.Sprintf("Password must be %d-%d characters with at least one uppercase letter and one special character",
	PasswordMinLen, PasswordMaxLen)

// Password enforces the policy: 8-16 characters drawn from letters, digits and
// PasswordSpecials, with at least one ASCII uppercase letter and one special.
func Password(value string) string {
	n := len(value)
	if n < PasswordMinLen || n > PasswordMaxLen || !passwordCharset.MatchString(value) {
		return PasswordMessage
	}
	if strings.IndexFunc(value, isUpperASCII) < 0 || !strings.ContainsAny(value, PasswordSpecials) {
		return PasswordMessage
	}
	return ""
}

func isUpperASCII(r rune) bool { return r >= 'A' && r <= 'Z' }

// ConfirmPassword requires an exact match with the password.
func ConfirmPassword(password, confirm string) string {
	if password != confirm {
		return "Passwords do not match"
	}
	return ""
}

// Role accepts only the known role identifiers.
func Role(value string) string {
	if !models.Role(value).Valid() {
		return "Please select a valid role"
	}
	return ""
}

// Required reports a missing value for label.
func Required(label, value string) string {
	if value == "" {
		return label + " is required"
	}
	return ""
}

// RatingMessage is reported for a rating outside 1-5 or not a number at all.
var RatingMessage = fmt.Sprintf("Rating must be between %d and %d", RatingMin, RatingMax)

// Rating checks an integer star value.
func Rating(value int) string {
	if value < RatingMin || value > RatingMax {
		return RatingMessage
	}
	return ""
}

// RatingString parses and checks a star value received as text.
func RatingString(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return RatingMessage
	}
	return Rating(n)
}
