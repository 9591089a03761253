package types

import "time"

// UserStatus is the activation state of an account.
type UserStatus string

const (
	UserInactive UserStatus = "inactive"
	UserActive   UserStatus = "active"
)

// Titles accepted at signup.
var Titles = []string{"Mr", "Mrs", "Miss"}

// User represents a registered account.
// It contains identity, credentials and activation metadata.
type User struct {
	// Title is the honorific given at signup (Mr, Mrs or Miss).
	Title string `json:"title"`

	// FirstName is the user's given name.
	FirstName string `json:"firstname"`

	// LastName is the user's family name.
	LastName string `json:"lastname"`

	// Email identifies the account. It is compared case-sensitively,
	// exactly as received.
	Email string `json:"email"`

	// Salt is the per-user salt fed to the password hasher.
	// This field is never exposed in API responses.
	Salt string `json:"-"`

	// PasswordHash stores the salted hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-"`

	// Status is inactive until the emailed OTP is verified.
	Status UserStatus `json:"status"`

	// CreatedAt is the timestamp when the user signed up.
	CreatedAt time.Time `json:"date"`
}

// IsActive reports whether the account has been confirmed.
func (u User) IsActive() bool {
	return u.Status == UserActive
}
