package authflow

import (
	"encoding/json"
	"errors"
)

// Kind classifies every failure the flow hands back to the shell.
type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindIntegrity      Kind = "integrity"
	KindCSRF           Kind = "csrf"
	KindTokenExchange  Kind = "token_exchange"
	KindIdentityFetch  Kind = "identity_fetch"
	KindNetworkTimeout Kind = "network_timeout"
	KindBrowser        Kind = "browser"
)

const msgInvalidState = "Invalid OAuth state; possible CSRF"

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrIntegrity      = &Error{Kind: KindIntegrity}
	ErrCSRF           = &Error{Kind: KindCSRF}
	ErrTokenExchange  = &Error{Kind: KindTokenExchange}
	ErrIdentityFetch  = &Error{Kind: KindIdentityFetch}
	ErrNetworkTimeout = &Error{Kind: KindNetworkTimeout}
	ErrBrowser        = &Error{Kind: KindBrowser}
)

// Error is the structured failure returned by Begin and Complete. Message is
// already scrubbed of secrets; the cause is kept for errors.As only.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	}{e.Kind, e.Message})
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
