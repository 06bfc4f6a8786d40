// Package flow orchestrates one transaction attempt end to end: initiation,
// the optional step-up confirmation, the processor hand-off and the final
// status reconciliation. Steps are strictly sequential; the confirmation
// stage cannot run without a successful initiation.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Brisa-Ol/loteplan-client/transaction"
	"github.com/Brisa-Ol/loteplan-client/transport"
)

// ErrCancelled indicates the user abandoned the open challenge before
// submitting a code.
var ErrCancelled = errors.New("confirmation cancelled")

// CodePrompter obtains a one-time code from the user. Returning ok=false
// cancels the challenge.
type CodePrompter interface {
	Code(ch transaction.PendingChallenge) (code string, ok bool)
}

// Remediator is told when the server refuses a transaction until the user
// completes a security step, so it can send the user to the security-setup
// area instead of retrying.
type Remediator interface {
	SecurityAction(action string, verification map[string]any)
}

// Runner ties the protocol components together for one subject kind at a
// time.
type Runner struct {
	initiator *transaction.Initiator
	confirmer *transaction.Confirmer
	poller    *transaction.Poller
	exec      transaction.Executor
	prompt    CodePrompter
	remed     Remediator
	log       *slog.Logger

	pollerOpts []transaction.PollerOption
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.log = logger
	}
}

// WithRemediator sets the collaborator handling security-action-required
// refusals.
func WithRemediator(remed Remediator) Option {
	return func(r *Runner) {
		r.remed = remed
	}
}

// WithPollerOptions forwards options to the reconciliation poller.
func WithPollerOptions(opts ...transaction.PollerOption) Option {
	return func(r *Runner) {
		r.pollerOpts = opts
	}
}

// NewRunner creates a Runner. The executor is shared between the direct
// redirect path and the confirmer's post-challenge hand-off.
func NewRunner(gw *transport.Gateway, exec transaction.Executor, prompt CodePrompter, opts ...Option) *Runner {
	r := &Runner{
		exec:   exec,
		prompt: prompt,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	r.initiator = transaction.NewInitiator(gw, transaction.WithInitiatorLogger(r.log))
	r.confirmer = transaction.NewConfirmer(gw, exec, transaction.WithConfirmerLogger(r.log))
	pollerOpts := append([]transaction.PollerOption{transaction.WithPollerLogger(r.log)}, r.pollerOpts...)
	r.poller = transaction.NewPoller(gw, pollerOpts...)
	return r
}

// Confirmer exposes the challenge controller, mainly so a UI can inspect or
// cancel the open challenge.
func (r *Runner) Confirmer() *transaction.Confirmer {
	return r.confirmer
}

// Checkout runs initiation and, when step-up is required, the confirmation
// exchange, through the processor hand-off. It returns the gateway reference
// to reconcile with after the user comes back from the processor.
func (r *Runner) Checkout(ctx context.Context, kind transaction.SubjectKind, subjectID string) (string, error) {
	out, err := r.initiator.Initiate(ctx, kind, subjectID)
	if err != nil {
		if ce, ok := transport.Classify(err); ok && ce.Kind == transport.KindSecurityActionRequired {
			r.log.Info("transaction refused pending security action", "action", ce.Action)
			if r.remed != nil {
				r.remed.SecurityAction(ce.Action, ce.Verification)
			}
		}
		return "", err
	}

	switch out.Status {
	case transaction.OutcomePending:
		r.confirmer.Open(kind, subjectID)
		return r.confirm(ctx, subjectID)
	case transaction.OutcomeRedirectRequired:
		if err := r.exec.Redirect(out.RedirectTarget); err != nil {
			return "", err
		}
		return out.GatewayReference, nil
	default:
		return "", fmt.Errorf("unexpected initiation outcome %q", out.Status)
	}
}

// confirm drives the code exchange until the challenge resolves, the user
// cancels, or a non-retryable failure occurs. Recoverable failures keep the
// challenge open so the user can try a fresh code.
func (r *Runner) confirm(ctx context.Context, subjectID string) (string, error) {
	for {
		ch, ok := r.confirmer.Challenge()
		if !ok || ch.SubjectID != subjectID {
			return "", transaction.ErrChallengeReplaced
		}

		code, ok := r.prompt.Code(ch)
		if !ok {
			r.confirmer.Cancel()
			return "", ErrCancelled
		}

		out, err := r.confirmer.Submit(ctx, code)
		if err == nil {
			return out.GatewayReference, nil
		}
		if !retryable(err) {
			return "", err
		}
		r.log.Debug("confirmation attempt failed, retrying", "err", err)
	}
}

// Reconcile polls the transaction status until it reaches a terminal state.
func (r *Runner) Reconcile(ctx context.Context, reference string) (transaction.Result, error) {
	return r.poller.Poll(ctx, reference)
}

// retryable reports whether the user may retry the same challenge with a new
// code. Local errors and security/permission/session failures abort.
func retryable(err error) bool {
	ce, ok := transport.Classify(err)
	if !ok {
		return false
	}
	switch ce.Kind {
	case transport.KindGeneric, transport.KindRateLimited:
		return true
	default:
		return false
	}
}
