package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Redacted replaces any secret value found by Scrub
const Redacted = "[REDACTED]"

// Common errors shared by the login packages
var (
	ErrMissingVariable = errors.New("missing required environment variable")
	ErrInsecureURL     = errors.New("url must use https")
	ErrNoPendingAuth   = errors.New("no pending authentication")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Scrub removes every non-empty secret from msg.
func Scrub(msg string, secrets ...string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, Redacted)
	}
	return msg
}
