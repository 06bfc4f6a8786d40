package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Brisa-Ol/loteplan-client/transport"
)

// PendingChallenge is the in-memory record of an unresolved step-up request.
// At most one exists at a time.
type PendingChallenge struct {
	Kind      SubjectKind
	SubjectID string
	// LastError holds the classified message of the most recent failed
	// submission, so the user can retry with a new code without losing the
	// transaction context.
	LastError string
}

// Confirmer owns the single active PendingChallenge and exchanges a one-time
// code for gateway redirect instructions.
type Confirmer struct {
	gw   *transport.Gateway
	exec Executor
	log  *slog.Logger

	mu        sync.Mutex
	challenge *PendingChallenge
}

// NewConfirmer creates a Confirmer that hands successful redirect
// instructions to exec.
func NewConfirmer(gw *transport.Gateway, exec Executor, opts ...ConfirmerOption) *Confirmer {
	c := &Confirmer{gw: gw, exec: exec}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return c
}

// ConfirmerOption configures the Confirmer.
type ConfirmerOption func(*Confirmer)

// WithConfirmerLogger sets the structured logger.
func WithConfirmerLogger(logger *slog.Logger) ConfirmerOption {
	return func(c *Confirmer) {
		c.log = logger
	}
}

// Open replaces any existing challenge with a fresh one for the given
// subject. Last writer wins; an unresolved prior challenge is silently
// discarded.
func (c *Confirmer) Open(kind SubjectKind, subjectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge != nil {
		c.log.Debug("replacing unresolved challenge",
			"old_subject", c.challenge.SubjectID, "new_subject", subjectID)
	}
	c.challenge = &PendingChallenge{Kind: kind, SubjectID: subjectID}
}

// Challenge returns a copy of the open challenge, if any.
func (c *Confirmer) Challenge() (PendingChallenge, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenge == nil {
		return PendingChallenge{}, false
	}
	return *c.challenge, true
}

// Cancel clears the challenge unconditionally without notifying the server;
// the transaction simply remains unconfirmed server-side.
func (c *Confirmer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.challenge = nil
}

// Submit exchanges a one-time code for gateway instructions. With no open
// challenge it fails locally without touching the network. On failure the
// challenge is retained and its LastError updated for a retry. On success
// the challenge is consumed and the redirect is handed to the executor
// exactly once; a response for a subject that no longer matches the open
// challenge is discarded.
func (c *Confirmer) Submit(ctx context.Context, code string) (Outcome, error) {
	c.mu.Lock()
	if c.challenge == nil {
		c.mu.Unlock()
		return Outcome{}, ErrNoChallenge
	}
	ch := *c.challenge
	c.mu.Unlock()

	var body startResponse
	req := confirmRequest{Code: code}
	_, err := c.gw.Post(ctx, ch.Kind.confirmPath(ch.SubjectID), req, &body)
	if err != nil {
		c.mu.Lock()
		if c.challenge != nil && c.challenge.Kind == ch.Kind && c.challenge.SubjectID == ch.SubjectID {
			c.challenge.LastError = errorMessage(err)
		}
		c.mu.Unlock()
		return Outcome{}, err
	}

	c.mu.Lock()
	if c.challenge == nil || c.challenge.Kind != ch.Kind || c.challenge.SubjectID != ch.SubjectID {
		c.mu.Unlock()
		return Outcome{}, ErrChallengeReplaced
	}
	c.challenge = nil
	c.mu.Unlock()

	out := Outcome{
		Status:           OutcomeRedirectRequired,
		RedirectTarget:   body.RedirectURL,
		GatewayReference: body.Reference,
	}
	if out.RedirectTarget == "" {
		return Outcome{}, ErrNoRedirectTarget
	}
	if err := c.exec.Redirect(out.RedirectTarget); err != nil {
		return out, fmt.Errorf("handing off to payment processor: %w", err)
	}
	c.log.Info("challenge resolved",
		"kind", string(ch.Kind), "subject", ch.SubjectID, "reference", out.GatewayReference)
	return out, nil
}

func errorMessage(err error) string {
	if ce, ok := transport.Classify(err); ok {
		return ce.Message
	}
	return err.Error()
}
