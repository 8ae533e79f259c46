package services

import "net/http"

// Error is a domain error carrying the HTTP status it maps to at the boundary.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func Gone(message string) *Error {
	return &Error{Status: http.StatusGone, Message: message}
}

func Invalid(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}
