package session

import "errors"

var (
	// ErrInvalidCredentials is the fixed user-facing failure for a rejected
	// login, used instead of the generic classifier text.
	ErrInvalidCredentials = errors.New("Credenciales inválidas.")
	// ErrNoPendingToken indicates VerifySecondFactor was called without an
	// in-progress login holding a temporary token.
	ErrNoPendingToken = errors.New("no temporary second-factor token")
	// ErrNotAuthenticated indicates an operation that requires an
	// authenticated session was called without one.
	ErrNotAuthenticated = errors.New("not authenticated")
)
