package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken issues an HS256 session token for the given user.
func SignToken(userID int, email string) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}

	expHours, err := strconv.Atoi(os.Getenv("JWT_EXP_HOURS"))
	if err != nil || expHours <= 0 {
		expHours = 168
	}

	claims := jwt.MapClaims{
		"uid":   float64(userID),
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Duration(expHours) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
