package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Brisa-Ol/loteplan-client/flow"
	"github.com/Brisa-Ol/loteplan-client/session"
	"github.com/Brisa-Ol/loteplan-client/transaction"
)

var listenAddr string

const returnWait = 2 * time.Minute

// runCheckout drives one money-moving attempt end to end from the terminal:
// initiation, the optional step-up code exchange, the browser hand-off to
// the payment processor and the final status reconciliation.
func runCheckout(cmdCtx context.Context, kind transaction.SubjectKind, subjectID string) error {
	app, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := app.session.Initialize(cmdCtx); err != nil {
		return err
	}
	if app.session.Phase() != session.PhaseAuthenticated {
		return errNotLoggedIn
	}

	listener, err := newReturnListener(listenAddr)
	if err != nil {
		return fmt.Errorf("failed to start return listener: %w", err)
	}
	defer listener.Close()

	runner := flow.NewRunner(app.gw, transaction.BrowserExecutor{}, terminalPrompter{},
		flow.WithLogger(app.log),
		flow.WithRemediator(consoleRemediator{}),
	)

	reference, err := runner.Checkout(cmdCtx, kind, subjectID)
	if err != nil {
		if errors.Is(err, flow.ErrCancelled) {
			fmt.Println("Operación cancelada.")
			return nil
		}
		return err
	}

	fmt.Println("Completa el pago en el navegador.")
	fmt.Printf("Esperando el regreso del procesador en http://%s/return (máx. %s)...\n",
		listener.Addr(), returnWait)
	if ref, ok := listener.Await(cmdCtx, returnWait); ok && ref != "" {
		reference = ref
	}

	res, err := runner.Reconcile(cmdCtx, reference)
	if err != nil {
		if errors.Is(err, transaction.ErrPollExhausted) {
			fmt.Printf("El pago sigue en proceso (estado: %s). Consulta más tarde con `loteplan status %s`.\n",
				res.Status, reference)
			return nil
		}
		return err
	}
	printResult(res)
	return nil
}

func printResult(res transaction.Result) {
	switch res.Status {
	case transaction.StatusPaid:
		fmt.Printf("Pago confirmado por %s (referencia externa: %s).\n",
			res.Amount.StringFixed(2), res.ExternalReference)
	case transaction.StatusNoReference:
		fmt.Println("No hay referencia de transacción que consultar.")
	default:
		fmt.Printf("La transacción terminó en estado: %s.\n", res.Status)
	}
}

// returnListener is a loopback HTTP endpoint the payment processor can
// redirect back to. The state parameter ties the return to this checkout.
type returnListener struct {
	srv   *http.Server
	ln    net.Listener
	state string
	ch    chan string
}

func newReturnListener(addr string) (*returnListener, error) {
	l := &returnListener{
		state: uuid.NewString(),
		ch:    make(chan string, 1),
	}

	r := chi.NewRouter()
	r.Get("/return", l.handleReturn)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	l.ln = ln
	l.srv = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go l.srv.Serve(ln)
	return l, nil
}

func (l *returnListener) Addr() string {
	return l.ln.Addr().String()
}

func (l *returnListener) handleReturn(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("state") != l.state {
		http.Error(w, "estado inválido", http.StatusBadRequest)
		return
	}
	select {
	case l.ch <- r.URL.Query().Get("reference"):
	default:
	}
	fmt.Fprintln(w, "Pago registrado. Puedes volver a la terminal.")
}

// Await blocks until the processor redirects back, the timeout elapses or
// the context is cancelled. A timeout is not an error; reconciliation can
// still proceed with the reference from the checkout response.
func (l *returnListener) Await(ctx context.Context, timeout time.Duration) (string, bool) {
	select {
	case ref := <-l.ch:
		return ref, true
	case <-time.After(timeout):
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

func (l *returnListener) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	l.srv.Shutdown(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&listenAddr, "listen", "127.0.0.1:0", "Loopback address for the payment return listener")
}
