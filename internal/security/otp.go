package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	otpMin = 10000
	otpMax = 99999
)

// OtpGenerator issues five digit one-time codes.
type OtpGenerator struct{}

func NewOtpGenerator() OtpGenerator {
	return OtpGenerator{}
}

// Generate returns a code drawn uniformly from [10000, 99999].
func (OtpGenerator) Generate() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	return otpMin + int(n.Int64()), nil
}
