package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jrsteele09/desktop-login/authflow"
	"github.com/jrsteele09/desktop-login/internal/config"
	"github.com/jrsteele09/desktop-login/session"
	"github.com/jrsteele09/desktop-login/shell"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errReported = errors.New("error already reported")

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Open the browser, wait for the callback and print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newCallbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "callback <uri>",
		Short: "Hand a redirect URI to the running login (registered as the custom scheme handler)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return err
			}
			setupLogging(c)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := shell.Forward(ctx, nil, c.ActivationAddr, args); err != nil {
				log.Err(err).Msg("Failed to forward callback")
				return err
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func runLogin(parent context.Context, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = printResult(out, nil, errors.New("panic recovered"))
		}
	}()

	c, err := config.Load()
	if err != nil {
		return printResult(out, nil, configurationError(err))
	}
	setupLogging(c)
	displayAppname(appName)

	act := shell.NewActivation(c.ActivationAddr, c.GetRedirectURI())
	if err := act.Listen(); err != nil {
		log.Err(err).Str("addr", c.ActivationAddr).Msg("Cannot start login")
		return printResult(out, nil, err)
	}
	go func() {
		if err := act.Serve(); err != nil {
			log.Err(err).Msg("Activation server stopped")
		}
	}()
	defer shutdown(act)

	flow, err := authflow.New(c, session.NewStore(session.WithTTL(c.PendingAuthTTL)),
		authflow.WithOpener(shell.NewBrowserOpener()),
		authflow.WithRequestTimeout(c.RequestTimeout),
		authflow.WithUserAgent(c.UserAgent),
	)
	if err != nil {
		return printResult(out, nil, configurationError(err))
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := login(ctx, flow, act, c.LoginTimeout)
	return printResult(out, result, err)
}

// callbackWaiter is the part of shell.Activation the login needs.
type callbackWaiter interface {
	Wait(ctx context.Context) (string, error)
}

func login(ctx context.Context, flow *authflow.Flow, callbacks callbackWaiter, timeout time.Duration) (*authflow.IdentityResult, error) {
	authURL, err := flow.Begin(ctx)
	if err != nil {
		if !errors.Is(err, authflow.ErrBrowser) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "Open this URL in your browser to continue:\n%s\n", authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	uri, err := callbacks.Wait(waitCtx)
	if err != nil {
		return nil, fmt.Errorf("no callback received: %w", err)
	}

	params, err := authflow.ParseCallbackURI(uri)
	if err != nil {
		return nil, err
	}
	return flow.Complete(ctx, params)
}

type failure struct {
	Error any `json:"error"`
}

func printResult(out io.Writer, result *authflow.IdentityResult, err error) error {
	enc := json.NewEncoder(out)
	if err == nil {
		return enc.Encode(result)
	}

	var flowErr *authflow.Error
	if errors.As(err, &flowErr) {
		_ = enc.Encode(failure{Error: flowErr})
	} else {
		_ = enc.Encode(failure{Error: map[string]string{"kind": "shell", "message": err.Error()}})
	}
	return errReported
}

func configurationError(err error) *authflow.Error {
	return &authflow.Error{Kind: authflow.KindConfiguration, Message: err.Error()}
}

func shutdown(act *shell.Activation) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := act.Shutdown(ctx); err != nil {
		log.Err(err).Msg("Activation server shutdown")
	}
}
