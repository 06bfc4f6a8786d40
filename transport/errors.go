package transport

import "errors"

// Kind is the closed set of failure categories the gateway classifies
// responses into. Values are ordered by classification priority.
type Kind int

const (
	// KindGeneric covers any failure not matched by a more specific rule,
	// including network and parse errors.
	KindGeneric Kind = iota
	// KindRateLimited maps HTTP 429.
	KindRateLimited
	// KindSessionExpired maps HTTP 401: the bearer credential is no longer
	// accepted by the server.
	KindSessionExpired
	// KindSecurityActionRequired maps HTTP 403 carrying an action_required
	// field: the server refuses until the user completes a security step
	// (for example enabling the second factor, or finishing KYC).
	KindSecurityActionRequired
	// KindRoleRestricted maps HTTP 403 without action_required: the
	// authenticated user lacks permission.
	KindRoleRestricted
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindSessionExpired:
		return "session_expired"
	case KindSecurityActionRequired:
		return "security_action_required"
	case KindRoleRestricted:
		return "role_restricted"
	default:
		return "generic"
	}
}

// ClassifiedError is the single error shape business logic sees for any
// failed call. It is constructed only inside this package.
type ClassifiedError struct {
	Kind       Kind
	Message    string
	StatusCode int

	// Action identifies the required security step when Kind is
	// KindSecurityActionRequired (e.g. "enable_2fa").
	Action string
	// Verification carries the server's verification-status payload
	// (e.g. KYC state) for the caller to act on.
	Verification map[string]any
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

// Classify extracts the *ClassifiedError from an error chain.
func Classify(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsKind reports whether err is a ClassifiedError of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := Classify(err)
	return ok && ce.Kind == kind
}
