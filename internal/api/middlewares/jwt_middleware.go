package middlewares

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"rndvx/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
)

func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.WriteError(w, "Unauthorized: Missing Bearer token", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			utils.WriteError(w, "Unauthorized: Missing Bearer token", http.StatusUnauthorized)
			return
		}

		jwtSecret := os.Getenv("JWT_SECRET")

		parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				utils.WriteError(w, "token expired", http.StatusUnauthorized)
				return
			}
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		if !parsedToken.Valid {
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok {
			utils.WriteError(w, "invalid login token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), utils.ContextKey("userId"), claims["uid"])
		ctx = context.WithValue(ctx, utils.ContextKey("email"), claims["email"])
		ctx = context.WithValue(ctx, utils.ContextKey("expiresAt"), claims["exp"])

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
