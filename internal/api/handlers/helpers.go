package handlers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"rndvx/internal/services"
	"rndvx/pkg/utils"
)

// WriteDomainError maps a service error to its HTTP response. Anything that is
// not a tagged domain error is logged and returned as a 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		utils.WriteError(w, domainErr.Message, domainErr.Status)
		return
	}

	utils.Logger.Errorf("Unhandled error: %v", err)
	if os.Getenv("APP_ENV") != "production" {
		utils.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.WriteError(w, "internal server error", http.StatusInternalServerError)
}

// UserIDFromContext reads the authenticated user id set by the JWT middleware.
func UserIDFromContext(r *http.Request) (int, bool) {
	raw := r.Context().Value(utils.ContextKey("userId"))
	uid, ok := raw.(float64)
	if !ok {
		return 0, false
	}
	return int(uid), true
}

// PathID parses the named path segment as a positive integer id.
func PathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, services.Invalid("invalid " + name + " in path")
	}
	return id, nil
}

// ParseDateTime accepts RFC 3339 or datetime-local input and normalizes to UTC.
func ParseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, services.Invalid("invalid date_time, expected RFC 3339 or YYYY-MM-DDTHH:MM")
}
