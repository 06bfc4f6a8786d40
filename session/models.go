package session

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseAuthenticated
	PhaseAnonymous
	PhasePendingSecondFactor
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	case PhasePendingSecondFactor:
		return "pending_second_factor"
	default:
		return "uninitialized"
	}
}

// Profile is the authenticated user's identity as reported by the backend.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	KYCStatus string `json:"kyc_status"`
}

// LoginResult reports which of the two legal login outcomes occurred.
type LoginResult struct {
	// SecondFactorRequired is true when the server withheld the final
	// credential pending a one-time code.
	SecondFactorRequired bool
}

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	Requires2FA bool   `json:"requires_2fa"`
	TempToken   string `json:"temp_token"`
}

type verifyRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}

type verifyResponse struct {
	Token string `json:"token"`
}
