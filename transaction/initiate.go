// Package transaction implements the client side of the transaction
// confirmation protocol: starting a money-moving operation, resolving its
// optional step-up challenge, handing off to the payment processor and
// reconciling the final status.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/Brisa-Ol/loteplan-client/transport"
)

// Initiator starts a money-moving operation and determines whether step-up
// authentication is needed. It holds no state; the orchestrating caller
// transitions to the Confirmer when the outcome is pending.
type Initiator struct {
	gw  *transport.Gateway
	log *slog.Logger
}

// NewInitiator creates an Initiator issuing calls through gw.
func NewInitiator(gw *transport.Gateway, opts ...InitiatorOption) *Initiator {
	i := &Initiator{gw: gw}
	for _, opt := range opts {
		opt(i)
	}
	if i.log == nil {
		i.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return i
}

// InitiatorOption configures the Initiator.
type InitiatorOption func(*Initiator)

// WithInitiatorLogger sets the structured logger.
func WithInitiatorLogger(logger *slog.Logger) InitiatorOption {
	return func(i *Initiator) {
		i.log = logger
	}
}

// Initiate issues the kind-specific start call. A 202 response, or a body
// flagging that a confirmation code is required, yields a pending outcome;
// otherwise the body's redirect URL yields a redirect-required outcome.
// Failures classified as KindSecurityActionRequired are terminal for the
// attempt: the caller should send the user to remediation, not retry.
func (i *Initiator) Initiate(ctx context.Context, kind SubjectKind, subjectID string) (Outcome, error) {
	if !kind.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	var body startResponse
	status, err := i.gw.Post(ctx, kind.initiatePath(subjectID), nil, &body)
	if err != nil {
		return Outcome{}, err
	}

	if status == http.StatusAccepted || body.RequiresConfirmationCode {
		i.log.Debug("step-up required", "kind", string(kind), "subject", subjectID)
		return Outcome{Status: OutcomePending}, nil
	}
	if body.RedirectURL == "" {
		return Outcome{}, fmt.Errorf("start response for %s %s carries neither a challenge nor gateway instructions", kind, subjectID)
	}
	return Outcome{
		Status:           OutcomeRedirectRequired,
		RedirectTarget:   body.RedirectURL,
		GatewayReference: body.Reference,
	}, nil
}
