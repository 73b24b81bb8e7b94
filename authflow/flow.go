// Package authflow runs the OAuth2 authorization code + PKCE handshake for a
// desktop application: Begin builds the authorization URL and stashes the
// attempt's secrets, Complete validates the callback, exchanges the code and
// returns the user's identity. The provider access token never leaves Complete.
package authflow

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/desktop-login/internal/config"
	"github.com/jrsteele09/desktop-login/pkce"
	"github.com/jrsteele09/desktop-login/provider"
	"github.com/jrsteele09/desktop-login/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const DefaultRequestTimeout = 15 * time.Second

// CredentialSource supplies the provider credentials on demand so that a
// missing value is reported by the attempt that needs it.
type CredentialSource interface {
	ClientID() (string, error)
	Credentials() (config.ProviderCredentials, error)
	GetRedirectURI() string
}

// URLOpener shows a URL to the user, normally in the default browser. It must not block.
type URLOpener interface {
	OpenURL(url string) error
}

type Flow struct {
	creds      CredentialSource
	store      session.Repo
	endpoint   provider.Endpoint
	secrets    pkce.Generator
	opener     URLOpener
	baseClient *http.Client
	client     *http.Client
	timeout    time.Duration
	userAgent  string
	logger     zerolog.Logger
	phase      atomic.Int32
}

func New(creds CredentialSource, store session.Repo, opts ...Option) (*Flow, error) {
	if creds == nil {
		return nil, fmt.Errorf("[authflow New] credential source is required")
	}
	if store == nil {
		return nil, fmt.Errorf("[authflow New] session store is required")
	}
	f := &Flow{
		creds:    creds,
		store:    store,
		endpoint: provider.GitHub,
		timeout:  DefaultRequestTimeout,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.endpoint.Validate(); err != nil {
		return nil, fmt.Errorf("[authflow New] %w", err)
	}
	f.client = newProviderClient(f.baseClient, f.userAgent)
	return f, nil
}

// Phase reports where the most recent attempt is in the handshake.
func (f *Flow) Phase() Phase {
	return Phase(f.phase.Load())
}

func (f *Flow) setPhase(p Phase) {
	f.phase.Store(int32(p))
}

func (f *Flow) oauth2Config(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     f.endpoint.OAuth2(),
		Scopes:       f.endpoint.Scopes,
	}
}

// Begin starts a new attempt and returns the authorization URL, which has
// already been passed to the opener if one is configured. Any unfinished
// attempt is discarded. A cancelled ctx is returned as is and nothing is stored.
func (f *Flow) Begin(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clientID, err := f.creds.ClientID()
	if err != nil {
		f.setPhase(PhaseRejected)
		return "", newError(KindConfiguration, err.Error(), err)
	}

	state, err := f.secrets.NewState()
	if err != nil {
		f.setPhase(PhaseRejected)
		return "", newError(KindIntegrity, "generating state", err)
	}
	verifier, err := f.secrets.NewVerifier()
	if err != nil {
		f.setPhase(PhaseRejected)
		return "", newError(KindIntegrity, "generating code verifier", err)
	}

	challenge, err := pkce.Challenge(verifier)
	if err != nil {
		f.setPhase(PhaseRejected)
		return "", newError(KindIntegrity, "deriving code challenge", err)
	}

	// The URL is checked before the secrets are stored so a rejected URL
	// leaves nothing redeemable behind.
	authURL := f.oauth2Config(clientID, "", f.creds.GetRedirectURI()).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", challenge),
	)
	if err := verifyAuthorizeURL(authURL, f.endpoint.AuthURL); err != nil {
		f.setPhase(PhaseRejected)
		f.logger.Error().Msg("Begin: authorization url failed target check")
		return "", err
	}

	pending := session.PendingAuth{
		ID:           uuid.New().String(),
		CSRFToken:    state,
		CodeVerifier: verifier,
	}
	f.store.Put(pending)
	f.setPhase(PhaseAwaitingCallback)
	f.logger.Info().Str("attempt_id", pending.ID).Str("provider", f.endpoint.Name).Msg("Begin: awaiting callback")

	if f.opener != nil {
		if err := f.opener.OpenURL(authURL); err != nil {
			f.logger.Err(err).Str("attempt_id", pending.ID).Msg("Begin: failed to open browser")
			return authURL, newError(KindBrowser, "failed to open browser", err)
		}
	}
	return authURL, nil
}

func verifyAuthorizeURL(authURL, expected string) error {
	if !provider.SameTarget(authURL, expected) {
		return newError(KindIntegrity, "Invalid authorization URL", nil)
	}
	return nil
}
