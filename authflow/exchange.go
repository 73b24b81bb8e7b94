package authflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/desktop-login/internal/config"
	ierrors "github.com/jrsteele09/desktop-login/internal/errors"
	"golang.org/x/oauth2"
)

// provider error bodies are only kept for diagnostics
const maxResponseBody = 64 << 10

type githubProfile struct {
	Login string `json:"login"`
}

func (f *Flow) exchange(ctx context.Context, creds config.ProviderCredentials, code, verifier string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)

	tok, err := f.oauth2Config(creds.ClientID, creds.ClientSecret, creds.RedirectURI).
		Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError(err, creds.ClientSecret, verifier)
	}
	if tok.AccessToken == "" {
		return nil, newError(KindTokenExchange, "token response missing access_token", nil)
	}
	return tok, nil
}

func tokenError(err error, secrets ...string) *Error {
	if isTimeout(err) {
		return newError(KindNetworkTimeout, "token endpoint did not respond in time", err)
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := "token exchange failed"
		if re.Response != nil {
			msg += ": " + re.Response.Status
		}
		if body := strings.TrimSpace(string(re.Body)); body != "" {
			msg += ": " + body
		} else if re.ErrorCode != "" {
			msg += ": " + re.ErrorCode
		}
		return newError(KindTokenExchange, scrubbed(msg, secrets), err)
	}
	return newError(KindTokenExchange, scrubbed("token exchange failed: "+err.Error(), secrets), err)
}

func (f *Flow) fetchProfile(ctx context.Context, tok *oauth2.Token, creds config.ProviderCredentials) (*githubProfile, error) {
	secrets := []string{tok.AccessToken, creds.ClientSecret}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint.UserURL, nil)
	if err != nil {
		return nil, newError(KindIdentityFetch, "building profile request", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	tok.SetAuthHeader(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, identityError(err, "profile request failed", secrets)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, identityError(err, "reading profile response", secrets)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("identity fetch failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
		return nil, newError(KindIdentityFetch, scrubbed(msg, secrets), nil)
	}

	var p githubProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, newError(KindIdentityFetch, "malformed profile response", err)
	}
	if p.Login == "" {
		return nil, newError(KindIdentityFetch, "profile response missing login", nil)
	}
	return &p, nil
}

func identityError(err error, msg string, secrets []string) *Error {
	if isTimeout(err) {
		return newError(KindNetworkTimeout, "profile endpoint did not respond in time", err)
	}
	return newError(KindIdentityFetch, scrubbed(msg+": "+err.Error(), secrets), err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// scrubbed redacts secrets from the whole message before it is shortened,
// so a secret cut by the limit cannot survive as a prefix.
func scrubbed(msg string, secrets []string) string {
	return truncate(ierrors.Scrub(msg, secrets...))
}

func truncate(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
