package config

import (
	"fmt"

	"github.com/jrsteele09/desktop-login/internal/errors"
)

const (
	ClientIDVar     = "CLIENT_ID"
	ClientSecretVar = "CLIENT_SECRET"
	RedirectURIVar  = "REDIRECT_URI"

	DefaultRedirectURI = "renox://auth/github/callback"
)

type EnvVars struct {
	ClientIDValue     string `env:"CLIENT_ID"`
	ClientSecretValue string `env:"CLIENT_SECRET"`
	RedirectURIValue  string `env:"REDIRECT_URI" envDefault:"renox://auth/github/callback"`
	ActivationAddr    string `env:"ACTIVATION_ADDR" envDefault:"127.0.0.1:47615"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	Env               string `env:"ENV" envDefault:"DEV"`
}

func (e EnvVars) GetRedirectURI() string {
	if e.RedirectURIValue == "" {
		return DefaultRedirectURI
	}
	return e.RedirectURIValue
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}

func (e EnvVars) IsDev() bool {
	return e.GetEnv() == "DEV"
}

func required(name, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrMissingVariable, name)
	}
	return value, nil
}
