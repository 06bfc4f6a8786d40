package transaction

import "errors"

var (
	// ErrUnknownKind indicates a subject kind outside the three supported
	// transaction categories.
	ErrUnknownKind = errors.New("unknown subject kind")
	// ErrNoChallenge indicates a code was submitted with no pending
	// challenge open. Raised locally, before any network call.
	ErrNoChallenge = errors.New("no pending challenge")
	// ErrChallengeReplaced indicates the response arrived after the open
	// challenge had been replaced by a newer transaction; the response is
	// discarded and no redirect happens.
	ErrChallengeReplaced = errors.New("challenge replaced by a newer transaction")
	// ErrNoRedirectTarget indicates gateway instructions carried no usable
	// target. Upstream contracts should make this impossible; it is
	// surfaced rather than swallowed.
	ErrNoRedirectTarget = errors.New("gateway instructions carry no redirect target")
	// ErrPollExhausted indicates the status poll hit its attempt budget
	// without observing a terminal state.
	ErrPollExhausted = errors.New("status polling budget exhausted")
)
