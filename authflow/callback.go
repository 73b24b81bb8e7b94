package authflow

import (
	"fmt"
	"net/url"
)

// CallbackParams is the untrusted pair delivered by the provider redirect.
type CallbackParams struct {
	Code  string
	State string
}

// IdentityResult is the only artifact handed back after a successful login.
type IdentityResult struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
}

// ParseCallbackURI extracts code and state from a redirect URI. Nothing else
// in the URI is trusted. A provider error parameter (for example the user
// pressing "Cancel") is reported as a token exchange failure.
func ParseCallbackURI(raw string) (CallbackParams, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return CallbackParams{}, newError(KindCSRF, "malformed callback uri", err)
	}
	q := u.Query()
	if code := q.Get("error"); code != "" {
		msg := fmt.Sprintf("authorization denied: %s", code)
		if desc := q.Get("error_description"); desc != "" {
			msg += " - " + desc
		}
		return CallbackParams{}, newError(KindTokenExchange, msg, nil)
	}
	return CallbackParams{
		Code:  q.Get("code"),
		State: q.Get("state"),
	}, nil
}
