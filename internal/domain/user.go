// internal/domain/user.go
package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Password length bounds accepted at registration.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	maxEmailLength    = 320
)

// User represents a registered account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`          // Unique login key, lower-cased
	PasswordHash string    `db:"password_hash" json:"-"`      // bcrypt over a SHA-256 pre-hash
	CreatedAt    time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
}

// NewUser creates a new User instance with a fresh id.
func NewUser(email, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address (no display name).
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "is required"
	}
	if len(email) > maxEmailLength {
		return "is too long"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		return "must be a valid email address"
	}
	return ""
}

// ValidatePasswordLength checks the registration length bounds only;
// character-class rules live in security.CheckPasswordStrength.
func ValidatePasswordLength(password string) string {
	n := utf8.RuneCountInString(password)
	switch {
	case n < MinPasswordLength:
		return "must be at least 8 characters"
	case n > MaxPasswordLength:
		return "must be at most 100 characters"
	}
	return ""
}
