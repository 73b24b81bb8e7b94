// Package pkce generates the per-attempt secrets of an authorization code
// flow: the anti-CSRF state and the PKCE (RFC 7636) code verifier.
package pkce

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	// StateLength is the length of the anti-CSRF state token.
	StateLength = 32
	// VerifierLength is the length of the code verifier. RFC 7636 allows 43 to 128.
	VerifierLength = 64

	MinVerifierLength = 43
	MaxVerifierLength = 128

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// largest multiple of len(alphabet) that fits in a byte; bytes above it are rejected
	maxByte = 256 - (256 % len(alphabet))
)

var ErrVerifierLength = errors.New("code verifier length must be between 43 and 128 characters")

// Generator draws secrets from Rand. A zero Generator uses crypto/rand.
type Generator struct {
	Rand io.Reader
}

// NewState returns a fresh anti-CSRF state token.
func (g Generator) NewState() (string, error) {
	return g.RandomString(StateLength)
}

// NewVerifier returns a fresh PKCE code verifier.
func (g Generator) NewVerifier() (string, error) {
	return g.RandomString(VerifierLength)
}

// RandomString returns n alphanumeric characters with a uniform distribution.
func (g Generator) RandomString(n int) (string, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", errors.Wrap(err, "reading random bytes")
		}
		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// Challenge derives the S256 code challenge: base64url_nopad(SHA256(verifier)).
func Challenge(verifier string) (string, error) {
	if len(verifier) < MinVerifierLength || len(verifier) > MaxVerifierLength {
		return "", ErrVerifierLength
	}
	return oauth2.S256ChallengeFromVerifier(verifier), nil
}
