package main

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltyPhrase = "choosing random salts is hard"
	MaxStrength = 16
	MaxLength   = 100000
)

// Operations of the sample service. Members are function fields, so that they can be
// intercepted with package around.
type Service struct {
	Hash func(password string, strength int) (string, error)
	Sum  func(length int) (string, error)
}

func newService() *Service {
	return &Service{Hash: hashStr, Sum: sumStr}
}

// Converts password to a Base64 string of the password hash using `strength` passes
func hashStr(password string, strength int) (string, error) {
	if strength < 1 || strength > MaxStrength {
		return "", fmt.Errorf("strength %d is out of range [1, %d]", strength, MaxStrength)
	}
	hash := argon2.IDKey([]byte(password), []byte(SaltyPhrase), uint32(strength), 64*1024, 4, 32)
	return base64.StdEncoding.EncodeToString(hash), nil
}

// Sum of Flint-Hills series of the given length as a string
func sumStr(length int) (string, error) {
	if length < 0 || length > MaxLength {
		return "", fmt.Errorf("length %d is out of range [0, %d]", length, MaxLength)
	}
	return calcSum(length).String(), nil
}
