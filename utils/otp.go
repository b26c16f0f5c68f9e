package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

const OTPLength = 6

// GenerateOTP returns a numeric one-time code of OTPLength digits.
func GenerateOTP() (string, error) {
	const digits = "0123456789"
	otp := make([]byte, OTPLength)

	for i := range otp {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		otp[i] = digits[num.Int64()]
	}

	return string(otp), nil
}

// GenerateSecureToken returns 32 random bytes hex encoded.
func GenerateSecureToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return hex.EncodeToString(token), nil
}
