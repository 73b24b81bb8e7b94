package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/desktop-login/provider"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	RouteActivate = "/activate"
	RouteCallback = "/callback"

	maxActivationBody = 16 << 10
)

var (
	ErrAlreadyRunning = errors.New("another instance is already running")
	ErrNoCallback     = errors.New("no callback uri in arguments")
)

// ActivationRequest is what a second instance sends to the running one.
type ActivationRequest struct {
	Argv []string `json:"argv"`
}

// Activation is the single-instance endpoint of the running application. A
// second process started by the OS for the custom-scheme redirect forwards
// its arguments here; loopback redirects can also land on RouteCallback.
type Activation struct {
	addr        string
	redirectURI string
	callbacks   chan string
	router      chi.Router
	srv         *http.Server
	ln          net.Listener
}

func NewActivation(addr, redirectURI string) *Activation {
	a := &Activation{
		addr:        addr,
		redirectURI: redirectURI,
		callbacks:   make(chan string, 1),
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post(RouteActivate, a.handleActivate)
	r.Get(RouteCallback, a.handleLoopbackCallback)
	a.router = r
	return a
}

func (a *Activation) Handler() http.Handler {
	return a.router
}

// Callbacks delivers callback URIs in arrival order.
func (a *Activation) Callbacks() <-chan string {
	return a.callbacks
}

// Listen claims the activation address. It returns ErrAlreadyRunning when
// another instance holds it.
func (a *Activation) Listen() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return ErrAlreadyRunning
		}
		return errors.Wrapf(err, "listening on %s", a.addr)
	}
	a.ln = ln
	a.srv = &http.Server{Handler: a.router, ReadHeaderTimeout: 5 * time.Second}
	return nil
}

// Addr is the bound address once Listen has succeeded.
func (a *Activation) Addr() string {
	if a.ln == nil {
		return a.addr
	}
	return a.ln.Addr().String()
}

// Serve blocks until Shutdown.
func (a *Activation) Serve() error {
	if a.srv == nil {
		return errors.New("activation: Listen must be called first")
	}
	log.Debug().Str("addr", a.ln.Addr().String()).Msg("activation server listening")
	if err := a.srv.Serve(a.ln); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "activation serve")
	}
	return nil
}

func (a *Activation) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}

// Wait returns the next callback URI or the context error.
func (a *Activation) Wait(ctx context.Context) (string, error) {
	select {
	case uri := <-a.callbacks:
		return uri, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Activation) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req ActivationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxActivationBody)).Decode(&req); err != nil {
		http.Error(w, "invalid activation request", http.StatusBadRequest)
		return
	}
	for _, arg := range req.Argv {
		if provider.SameTarget(arg, a.redirectURI) {
			a.deliver(w, arg)
			return
		}
	}
	log.Info().Int("args", len(req.Argv)).Msg("activation without callback uri")
	http.Error(w, ErrNoCallback.Error(), http.StatusBadRequest)
}

func (a *Activation) handleLoopbackCallback(w http.ResponseWriter, r *http.Request) {
	// only meaningful when the provider redirects straight back to us
	if !isLoopback(a.redirectURI) {
		http.NotFound(w, r)
		return
	}
	a.deliver(w, a.redirectURI+"?"+r.URL.RawQuery)
}

func (a *Activation) deliver(w http.ResponseWriter, uri string) {
	select {
	case a.callbacks <- uri:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, "Login received, you can close this window.\n")
	default:
		http.Error(w, "a callback is already being processed", http.StatusConflict)
	}
}

func isLoopback(redirectURI string) bool {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Scheme != "http" {
		return false
	}
	ip := net.ParseIP(u.Hostname())
	return (ip != nil && ip.IsLoopback()) || u.Hostname() == "localhost"
}

// Forward hands argv to the running instance at addr.
func Forward(ctx context.Context, client *http.Client, addr string, argv []string) error {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(ActivationRequest{Argv: argv})
	if err != nil {
		return errors.Wrap(err, "encoding activation request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://%s%s", addr, RouteActivate), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "building activation request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "no running instance to forward to")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("activation rejected: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}
