// Package password implements the account password policy: strength
// validation, weak-password rejection and random password generation.
package password

import (
	"crypto/rand"
	"math/big"
	"strings"
	"unicode"
)

const (
	MinLength    = 8
	SpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	generatedLength = 12
)

// commonWeakPasswords are rejected outright regardless of composition.
var commonWeakPasswords = []string{
	"password",
	"123456",
	"12345678",
	"1234",
	"qwerty",
	"password123",
	"admin",
	"welcome",
	"monkey",
	"sunshine",
}

// ValidateStrength checks a candidate password against the policy and
// returns one message per violated rule. An empty slice means the password
// is acceptable.
func ValidateStrength(password string) []string {
	var violations []string

	if len(password) < MinLength {
		violations = append(violations, "Password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		case strings.ContainsRune(SpecialChars, ch):
			hasSpecial = true
		}
	}

	if !hasUpper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "Password must contain at least one number")
	}
	if !hasSpecial {
		violations = append(violations, "Password must contain at least one special character")
	}

	lowered := strings.ToLower(password)
	for _, weak := range commonWeakPasswords {
		if lowered == weak {
			violations = append(violations, "Password is too common and easily guessable")
			break
		}
	}

	return violations
}

// IsStrong reports whether the password satisfies every policy rule.
func IsStrong(password string) bool {
	return len(ValidateStrength(password)) == 0
}

// Generate produces a random password that satisfies the policy. One
// character is drawn from each required class, the rest from the full
// alphabet, then the result is shuffled.
func Generate() (string, error) {
	const (
		upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		lower  = "abcdefghijklmnopqrstuvwxyz"
		digits = "0123456789"
	)
	all := upper + lower + digits + SpecialChars

	buf := make([]byte, 0, generatedLength)
	for _, class := range []string{upper, lower, digits, SpecialChars} {
		ch, err := randomChar(class)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}
	for len(buf) < generatedLength {
		ch, err := randomChar(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, ch)
	}

	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}

	return string(buf), nil
}

func randomChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}
