// Package transport is the portal's single HTTP entry point. It attaches
// the bearer credential to every outgoing call and translates every failed
// response into one ClassifiedError before it reaches business logic.
package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-resty/resty/v2"
)

// Default user-facing messages, used when the server payload carries no
// error field.
const (
	msgRateLimited    = "Demasiadas solicitudes. Intenta de nuevo más tarde."
	msgSessionExpired = "Tu sesión ha expirado. Inicia sesión nuevamente."
	msgRoleRestricted = "No tienes permisos para realizar esta acción."
	msgGeneric        = "Ocurrió un error inesperado."
)

// CredentialSource supplies the current bearer credential, if any. The
// gateway only reads the credential; the session store owns it.
type CredentialSource interface {
	Credential() (string, bool)
}

type ctxKey int

const skipExpiryHandlingKey ctxKey = iota

// WithoutExpiryHandling marks the call so a 401 response is classified but
// does not fire the session-expiry handler. The login flow uses this: a
// failed login must not trigger a logout redirect loop.
func WithoutExpiryHandling(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipExpiryHandlingKey, true)
}

func expiryHandlingSkipped(ctx context.Context) bool {
	skip, _ := ctx.Value(skipExpiryHandlingKey).(bool)
	return skip
}

// Gateway wraps the HTTP client every collaborator call goes through.
type Gateway struct {
	http             *resty.Client
	creds            CredentialSource
	onSessionExpired func()
	log              *slog.Logger
}

// Option configures the Gateway.
type Option func(*Gateway)

// WithLogger sets the structured logger. If not set, a default JSON logger
// writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.log = logger
	}
}

// WithHTTPClient replaces the underlying resty client (tests).
func WithHTTPClient(client *resty.Client) Option {
	return func(g *Gateway) {
		g.http = client
	}
}

// New creates a Gateway for the given API base URL.
func New(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{}
	for _, opt := range opts {
		opt(g)
	}
	if g.http == nil {
		g.http = resty.New()
	}
	if g.log == nil {
		g.log = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	g.http.SetBaseURL(baseURL)
	g.http.SetHeader("Accept", "application/json")
	g.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if g.creds != nil {
			if token, ok := g.creds.Credential(); ok {
				r.SetAuthToken(token)
			}
		}
		return nil
	})
	return g
}

// SetCredentialSource wires the session store in as the credential reader.
func (g *Gateway) SetCredentialSource(src CredentialSource) {
	g.creds = src
}

// OnSessionExpired registers the single subscriber notified when a response
// is classified as KindSessionExpired. The gateway itself performs no
// navigation or credential clearing; that policy belongs to the subscriber.
func (g *Gateway) OnSessionExpired(fn func()) {
	g.onSessionExpired = fn
}

// Get issues a GET and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	_, err := g.do(ctx, http.MethodGet, path, nil, out)
	return err
}

// Post issues a POST with a JSON body and decodes the response into out.
// The HTTP status code is returned so callers can distinguish 202 from 200.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) (int, error) {
	return g.do(ctx, http.MethodPost, path, body, out)
}

func (g *Gateway) do(ctx context.Context, method, path string, body, out any) (int, error) {
	req := g.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		g.log.Debug("request failed", "method", method, "path", path, "err", err)
		return 0, &ClassifiedError{Kind: KindGeneric, Message: err.Error()}
	}
	if resp.IsError() {
		ce := g.classify(ctx, resp)
		g.log.Debug("request rejected",
			"method", method, "path", path,
			"status", resp.StatusCode(), "kind", ce.Kind.String())
		return resp.StatusCode(), ce
	}
	return resp.StatusCode(), nil
}

// errorPayload is the error body shape the backend uses across endpoints.
type errorPayload struct {
	Error          string         `json:"error"`
	ActionRequired string         `json:"action_required"`
	Verification   map[string]any `json:"verification"`
}

// classify maps a failed response into exactly one ClassifiedError,
// evaluating rules in strict priority order. Classification itself is pure:
// the same response always yields the same kind and message. The only side
// effect is notifying the session-expiry subscriber on 401, which the
// subscriber is required to make loop-free.
func (g *Gateway) classify(ctx context.Context, resp *resty.Response) *ClassifiedError {
	var payload errorPayload
	// A body that is not JSON is fine; the payload just stays empty.
	_ = json.Unmarshal(resp.Body(), &payload)

	status := resp.StatusCode()
	switch {
	case status == http.StatusTooManyRequests:
		return &ClassifiedError{
			Kind:       KindRateLimited,
			Message:    messageOr(payload.Error, msgRateLimited),
			StatusCode: status,
		}
	case status == http.StatusUnauthorized:
		if !expiryHandlingSkipped(ctx) && g.onSessionExpired != nil {
			g.onSessionExpired()
		}
		return &ClassifiedError{
			Kind:       KindSessionExpired,
			Message:    messageOr(payload.Error, msgSessionExpired),
			StatusCode: status,
		}
	case status == http.StatusForbidden && payload.ActionRequired != "":
		return &ClassifiedError{
			Kind:         KindSecurityActionRequired,
			Message:      messageOr(payload.Error, msgRoleRestricted),
			StatusCode:   status,
			Action:       payload.ActionRequired,
			Verification: payload.Verification,
		}
	case status == http.StatusForbidden:
		return &ClassifiedError{
			Kind:       KindRoleRestricted,
			Message:    messageOr(payload.Error, msgRoleRestricted),
			StatusCode: status,
		}
	default:
		return &ClassifiedError{
			Kind:       KindGeneric,
			Message:    messageOr(payload.Error, msgGeneric),
			StatusCode: status,
		}
	}
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
