package local

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var errMismatchedHashAndPassword = errors.New("mismatched hash and password")

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}

func comparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
