package provider_test

import (
	"testing"

	"github.com/jrsteele09/desktop-login/internal/errors"
	"github.com/jrsteele09/desktop-login/provider"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestGitHub(t *testing.T) {
	require.NoError(t, provider.GitHub.Validate())
	require.Equal(t, "https://github.com/login/oauth/authorize", provider.GitHub.AuthURL)
	require.Equal(t, "https://github.com/login/oauth/access_token", provider.GitHub.TokenURL)
	require.Equal(t, "https://api.github.com/user", provider.GitHub.UserURL)
	require.Equal(t, []string{"read:user"}, provider.GitHub.Scopes)
	require.Equal(t, oauth2.AuthStyleInParams, provider.GitHub.OAuth2().AuthStyle)
}

func TestEndpoint_Validate(t *testing.T) {
	e := provider.GitHub
	e.TokenURL = "http://github.com/login/oauth/access_token"
	err := e.Validate()
	require.ErrorIs(t, err, errors.ErrInsecureURL)
	require.Contains(t, err.Error(), "token url")

	e = provider.GitHub
	e.UserURL = "https:///user"
	require.ErrorIs(t, e.Validate(), errors.ErrInsecureURL)
}

func TestSameTarget(t *testing.T) {
	target := "https://github.com/login/oauth/authorize"
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"with query", target + "?client_id=x&state=y", true},
		{"other host", "https://evil.example/login/oauth/authorize?x=1", false},
		{"other path", "https://github.com/login/oauth/authorize/extra", false},
		{"plain http", "http://github.com/login/oauth/authorize", false},
		{"userinfo", "https://github.com@evil.example/login/oauth/authorize", false},
		{"credentials in url", "https://user@github.com/login/oauth/authorize", false},
		{"garbage", "://", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, provider.SameTarget(tt.raw, target))
		})
	}
}
