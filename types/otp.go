package types

import "time"

// OtpRecord is a single issued one-time code. Records are never mutated;
// expiry is judged from IssuedAt when the code is presented.
type OtpRecord struct {
	ID       string    `json:"otpId"`
	Email    string    `json:"email"`
	Code     int       `json:"otp"`
	IssuedAt time.Time `json:"date"`
}
