package session

import "time"

// PendingAuth is the secret material of the single in-flight login attempt.
type PendingAuth struct {
	ID           string // log correlation only, not secret
	CSRFToken    string
	CodeVerifier string
	CreatedAt    time.Time
}

type Repo interface {
	Put(pending PendingAuth)
	TakeAndClear() (PendingAuth, bool)
}
