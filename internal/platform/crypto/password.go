package crypto

import (
	"errors"
	"regexp"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var unknownAccountHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("no account has this password"), bcrypt.DefaultCost)
	return hash
})

// VerifyUnknown spends the same bcrypt work as VerifyPassword for a login
// whose account does not exist. It always reports false.
func VerifyUnknown(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(unknownAccountHash(), []byte(plain))
	return false
}

var (
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong       = errors.New("password must be at most 72 bytes")
	ErrPasswordNoUpper       = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower       = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber      = errors.New("password must contain at least one number")
	ErrPasswordNoSpecialChar = errors.New("password must contain at least one special character")
)

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	numberRe  = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidatePasswordStrength reports the first rule the password breaks.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	if !upperRe.MatchString(password) {
		return ErrPasswordNoUpper
	}
	if !lowerRe.MatchString(password) {
		return ErrPasswordNoLower
	}
	if !numberRe.MatchString(password) {
		return ErrPasswordNoNumber
	}
	if !specialRe.MatchString(password) {
		return ErrPasswordNoSpecialChar
	}
	return nil
}
