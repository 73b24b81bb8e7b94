package authflow

import (
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/desktop-login/provider"
	"github.com/rs/zerolog"
)

type Option func(*Flow)

// WithEndpoint replaces the provider endpoints. Intended for tests.
func WithEndpoint(e provider.Endpoint) Option {
	return func(f *Flow) { f.endpoint = e }
}

// WithHTTPClient sets the client used for both provider calls. Its transport
// is wrapped; the client itself is not modified.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Flow) { f.baseClient = c }
}

// WithRandom sets the entropy source for state and verifier generation.
func WithRandom(r io.Reader) Option {
	return func(f *Flow) { f.secrets.Rand = r }
}

// WithOpener sets the collaborator that shows the authorization URL to the user.
func WithOpener(o URLOpener) Option {
	return func(f *Flow) { f.opener = o }
}

func WithLogger(l zerolog.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithRequestTimeout bounds each provider call. Zero or negative keeps the default.
func WithRequestTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Flow) { f.userAgent = ua }
}
