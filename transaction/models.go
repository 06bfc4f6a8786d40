package transaction

import "github.com/shopspring/decimal"

// OutcomeStatus is the state a transaction attempt is in after an initiation
// or confirmation call.
type OutcomeStatus string

const (
	// OutcomePending means the server accepted the request but withheld
	// gateway instructions until a one-time code is confirmed.
	OutcomePending OutcomeStatus = "pending"
	// OutcomeRedirectRequired means gateway instructions are available and
	// the client must hand off to the external payment processor.
	OutcomeRedirectRequired OutcomeStatus = "redirect_required"
)

// Outcome is the result of an initiation or confirmation call.
type Outcome struct {
	Status           OutcomeStatus
	RedirectTarget   string
	GatewayReference string
}

type startResponse struct {
	RequiresConfirmationCode bool   `json:"requires_confirmation_code"`
	RedirectURL              string `json:"redirect_url"`
	Reference                string `json:"reference"`
}

type confirmRequest struct {
	Code string `json:"code"`
}

type statusResponse struct {
	Status            string          `json:"status"`
	Amount            decimal.Decimal `json:"amount"`
	ExternalReference string          `json:"external_reference"`
}
