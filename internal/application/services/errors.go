package services

import "errors"

// Typed errors for the authentication flow. Format and verification errors
// are recovered into guiding replies; durable-store errors are absorbed by
// the session store and never reach the user.
var (
	ErrNoPendingAuthentication = errors.New("no pending authentication challenge")
	ErrVerificationFailed      = errors.New("identity verification failed")
	ErrVerifierUnavailable     = errors.New("identity verifier unavailable")
	ErrDurableStoreUnavailable = errors.New("durable session store unavailable")
	ErrSessionTerminated       = errors.New("session is inactive")
)
