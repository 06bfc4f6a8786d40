package transaction

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brisa-Ol/loteplan-client/transport"
)

// Status is a transaction state as reported by the backend.
type Status string

const (
	StatusPaid             Status = "pagado"
	StatusPending          Status = "pendiente"
	StatusInProcess        Status = "en_proceso"
	StatusFailed           Status = "fallido"
	StatusRefunded         Status = "reembolsado"
	StatusRejectedCapacity Status = "rechazado_capacidad"
	StatusProjectClosed    Status = "rechazado_proyecto_cerrado"
	StatusExpired          Status = "expirado"
	// StatusNoReference is the immediately-terminal result when there is no
	// transaction reference to poll. It is a result, not an error.
	StatusNoReference Status = "sin_referencia"
)

// Terminal reports whether no further state change is expected without a new
// user action. Unrecognized statuses are treated as non-terminal.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusRefunded,
		StatusRejectedCapacity, StatusProjectClosed,
		StatusExpired, StatusNoReference:
		return true
	}
	return false
}

// Result is one observation of a transaction's status.
type Result struct {
	Status            Status
	Amount            decimal.Decimal
	ExternalReference string
}

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 40
)

// Poller queries transaction status after the user returns from the external
// processor, until a terminal state is reached or the budget runs out.
type Poller struct {
	gw          *transport.Gateway
	interval    time.Duration
	maxAttempts int
	log         *slog.Logger
}

// PollerOption configures the Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the delay between status queries.
func WithPollInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

// WithMaxAttempts bounds the number of status queries per Poll call, so a
// lost reference cannot poll forever.
func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		p.maxAttempts = n
	}
}

// WithPollerLogger sets the structured logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.log = logger
	}
}

// NewPoller creates a Poller with a 3s interval and a bounded attempt budget.
func NewPoller(gw *transport.Gateway, opts ...PollerOption) *Poller {
	p := &Poller{
		gw:          gw,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return p
}

// Query performs a single status lookup without polling.
func (p *Poller) Query(ctx context.Context, reference string) (Result, error) {
	if reference == "" {
		return Result{Status: StatusNoReference}, nil
	}
	var body statusResponse
	if err := p.gw.Get(ctx, "/transactions/"+reference, &body); err != nil {
		return Result{}, err
	}
	return Result{
		Status:            Status(body.Status),
		Amount:            body.Amount,
		ExternalReference: body.ExternalReference,
	}, nil
}

// Poll queries the transaction status at a fixed interval until a terminal
// state is observed, the context is cancelled, or the attempt budget is
// exhausted. An absent reference resolves immediately to StatusNoReference.
func (p *Poller) Poll(ctx context.Context, reference string) (Result, error) {
	if reference == "" {
		return Result{Status: StatusNoReference}, nil
	}

	var last Result
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		res, err := p.Query(ctx, reference)
		if err != nil {
			return last, err
		}
		last = res
		if res.Status.Terminal() {
			p.log.Debug("terminal status observed",
				"reference", reference, "status", string(res.Status), "attempts", attempt)
			return res, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(p.interval):
		}
	}
	return last, ErrPollExhausted
}
