// Package provider describes the fixed identity provider endpoints used by the login flow.
package provider

import (
	"fmt"
	"net/url"

	"github.com/jrsteele09/desktop-login/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// ScopeReadUser is the only scope requested: read access to the public profile.
const ScopeReadUser = "read:user"

const githubUserURL = "https://api.github.com/user"

// Endpoint is the set of URLs used during one handshake.
type Endpoint struct {
	Name     string
	AuthURL  string
	TokenURL string
	UserURL  string
	Scopes   []string
}

// GitHub is the production endpoint set.
var GitHub = Endpoint{
	Name:     "github",
	AuthURL:  github.Endpoint.AuthURL,
	TokenURL: github.Endpoint.TokenURL,
	UserURL:  githubUserURL,
	Scopes:   []string{ScopeReadUser},
}

// Validate rejects any endpoint that is not an absolute https URL.
func (e Endpoint) Validate() error {
	for name, raw := range map[string]string{"auth": e.AuthURL, "token": e.TokenURL, "user": e.UserURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("[provider Validate] %s url: %w", name, err)
		}
		if u.Scheme != "https" || u.Host == "" {
			return errors.Wrapf(errors.ErrInsecureURL, "[provider Validate] %s url %q", name, raw)
		}
	}
	return nil
}

// OAuth2 returns the endpoint in x/oauth2 form. Client credentials are always
// sent in the form body.
func (e Endpoint) OAuth2() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   e.AuthURL,
		TokenURL:  e.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// SameTarget reports whether raw points at exactly the scheme, host and path of target.
func SameTarget(raw, target string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == t.Scheme && u.Host == t.Host && u.Path == t.Path && u.User == nil
}
