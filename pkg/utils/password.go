package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is blank")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", ErrorHandler(err, "failed to generate salt")
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)

	saltBase64 := base64.StdEncoding.EncodeToString(salt)
	hashBase64 := base64.StdEncoding.EncodeToString(hash)
	return fmt.Sprintf("%s.%s", saltBase64, hashBase64), nil
}

func VerifyPassword(password, encodedHash string) error {
	parts := strings.Split(encodedHash, ".")
	if len(parts) != 2 {
		return errors.New("invalid encoded hash format")
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrorHandler(err, "failed to decode salt")
	}

	storedHash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrorHandler(err, "failed to decode hash")
	}

	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if subtle.ConstantTimeCompare(storedHash, hash) != 1 {
		return errors.New("incorrect password")
	}
	return nil
}
