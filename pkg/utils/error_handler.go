package utils

import "fmt"

// ErrorHandler logs and wraps err with message. A nil err passes through as nil.
func ErrorHandler(err error, message string) error {
	if err == nil {
		return nil
	}
	Logger.WithError(err).Error(message)
	return fmt.Errorf("%s: %w", message, err)
}
