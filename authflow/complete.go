package authflow

import (
	"context"
	"crypto/subtle"

	"github.com/jrsteele09/desktop-login/internal/config"
	ierrors "github.com/jrsteele09/desktop-login/internal/errors"
)

// Complete redeems the pending attempt with the callback parameters and
// returns the user's identity. The attempt is consumed whether or not the
// call succeeds; retrying needs a fresh Begin.
func (f *Flow) Complete(ctx context.Context, params CallbackParams) (*IdentityResult, error) {
	pending, ok := f.store.TakeAndClear()
	if !ok {
		f.setPhase(PhaseRejected)
		f.logger.Warn().Msg("Complete: no pending attempt")
		return nil, newError(KindCSRF, msgInvalidState, ierrors.ErrNoPendingAuth)
	}
	if subtle.ConstantTimeCompare([]byte(pending.CSRFToken), []byte(params.State)) != 1 {
		f.setPhase(PhaseRejected)
		f.logger.Warn().Str("attempt_id", pending.ID).Msg("Complete: state mismatch")
		return nil, newError(KindCSRF, msgInvalidState, nil)
	}
	f.setPhase(PhaseValidated)
	logger := f.logger.With().Str("attempt_id", pending.ID).Logger()

	creds, err := f.creds.Credentials()
	if err != nil {
		return nil, f.reject(newError(KindConfiguration, err.Error(), err))
	}
	if params.Code == "" {
		return nil, f.reject(newError(KindTokenExchange, "missing authorization code", nil))
	}

	f.setPhase(PhaseExchanging)
	tok, err := f.exchange(ctx, creds, params.Code, pending.CodeVerifier)
	if err != nil {
		logger.Err(err).Msg("Complete: token exchange failed")
		return nil, f.reject(err)
	}

	f.setPhase(PhaseFetchingIdentity)
	// tok is not retained past this call
	profile, err := f.fetchProfile(ctx, tok, creds)
	if err != nil {
		logger.Err(err).Msg("Complete: identity fetch failed")
		return nil, f.reject(err)
	}

	f.setPhase(PhaseDone)
	logger.Info().Str("username", profile.Login).Msg("Complete: login succeeded")
	return &IdentityResult{Username: profile.Login, Email: nil}, nil
}

func (f *Flow) reject(err error) error {
	f.setPhase(PhaseRejected)
	return err
}

var _ CredentialSource = (*config.Config)(nil)
