package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

// HashPassword refuses passwords bcrypt would silently truncate.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return string(hash), err
}

// CheckPasswordHash is false for malformed hashes as well as wrong passwords.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
