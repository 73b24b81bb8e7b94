package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// ProviderCredentials identify this application to the identity provider.
// The secret is never rendered by String or by zerolog.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

var _ zerolog.LogObjectMarshaler = ProviderCredentials{}

func (p ProviderCredentials) String() string {
	return fmt.Sprintf("{ClientID:%s ClientSecret:%s RedirectURI:%s}", p.ClientID, redact(p.ClientSecret), p.RedirectURI)
}

func (p ProviderCredentials) MarshalZerologObject(e *zerolog.Event) {
	e.Str("client_id", p.ClientID).
		Str("client_secret", redact(p.ClientSecret)).
		Str("redirect_uri", p.RedirectURI)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "[REDACTED]"
}

// ClientID returns the configured client id, failing when CLIENT_ID is unset.
func (c *Config) ClientID() (string, error) {
	return required(ClientIDVar, c.ClientIDValue)
}

// Credentials returns the full credential set needed for the token exchange.
func (c *Config) Credentials() (ProviderCredentials, error) {
	id, err := c.ClientID()
	if err != nil {
		return ProviderCredentials{}, err
	}
	secret, err := required(ClientSecretVar, c.ClientSecretValue)
	if err != nil {
		return ProviderCredentials{}, err
	}
	return ProviderCredentials{
		ClientID:     id,
		ClientSecret: secret,
		RedirectURI:  c.GetRedirectURI(),
	}, nil
}
