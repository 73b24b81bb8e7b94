package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/desktop-login/authflow"
	"github.com/jrsteele09/desktop-login/internal/config"
	"github.com/jrsteele09/desktop-login/session"
	"github.com/jrsteele09/desktop-login/shell"
	"github.com/stretchr/testify/require"
)

type fakeWaiter struct {
	uri string
	err error
}

func (w fakeWaiter) Wait(ctx context.Context) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	return w.uri, nil
}

func newTestFlow(t *testing.T, opener authflow.URLOpener) *authflow.Flow {
	t.Helper()
	c, err := config.LoadFrom(map[string]string{
		config.ClientIDVar:     "Iv1.cli",
		config.ClientSecretVar: "cli-secret",
	})
	require.NoError(t, err)
	flow, err := authflow.New(c, session.NewStore(), authflow.WithOpener(opener))
	require.NoError(t, err)
	return flow
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"login", "callback", "version"}, names)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	require.Equal(t, Version+"\n", out.String())
}

func TestLogin_StateMismatch(t *testing.T) {
	flow := newTestFlow(t, shell.URLOpenerFunc(func(string) error { return nil }))

	_, err := login(context.Background(), flow,
		fakeWaiter{uri: "renox://auth/github/callback?code=c&state=not-ours"}, time.Second)
	require.ErrorIs(t, err, authflow.ErrCSRF)
	require.Equal(t, authflow.PhaseRejected, flow.Phase())
}

func TestLogin_BrowserFailureKeepsWaiting(t *testing.T) {
	flow := newTestFlow(t, shell.URLOpenerFunc(func(string) error { return errors.New("no browser") }))

	_, err := login(context.Background(), flow, fakeWaiter{err: context.DeadlineExceeded}, time.Second)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Contains(t, err.Error(), "no callback received")
}

func TestPrintResult(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		out := &bytes.Buffer{}
		require.NoError(t, printResult(out, &authflow.IdentityResult{Username: "octocat"}, nil))
		require.JSONEq(t, `{"username":"octocat","email":null}`, out.String())
	})

	t.Run("flow error", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := printResult(out, nil, &authflow.Error{Kind: authflow.KindCSRF, Message: "Invalid OAuth state; possible CSRF"})
		require.ErrorIs(t, err, errReported)
		require.JSONEq(t, `{"error":{"kind":"csrf","message":"Invalid OAuth state; possible CSRF"}}`, out.String())
	})

	t.Run("other error", func(t *testing.T) {
		out := &bytes.Buffer{}
		err := printResult(out, nil, errors.New("no callback received: context deadline exceeded"))
		require.ErrorIs(t, err, errReported)
		require.JSONEq(t, `{"error":{"kind":"shell","message":"no callback received: context deadline exceeded"}}`, out.String())
	})
}

func TestRunLogin_ConfigErrorIsPrinted(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	out := &bytes.Buffer{}
	err := runLogin(context.Background(), out)
	require.ErrorIs(t, err, errReported)

	var got failure
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	fields, ok := got.Error.(map[string]any)
	require.True(t, ok)
	require.Equal(t, string(authflow.KindConfiguration), fields["kind"])
	require.Contains(t, fields["message"], "soon")
}

func TestExecute(t *testing.T) {
	t.Run("unreported errors reach stderr", func(t *testing.T) {
		root := newRootCmd()
		root.SetArgs([]string{"callback"})
		stderr := &bytes.Buffer{}

		require.Equal(t, 1, execute(root, stderr))
		require.Contains(t, stderr.String(), "Error:")
	})

	t.Run("reported errors are not repeated", func(t *testing.T) {
		root := newRootCmd()
		root.SetArgs([]string{"login"})
		root.SetOut(&bytes.Buffer{})
		t.Setenv("REQUEST_TIMEOUT", "soon")
		stderr := &bytes.Buffer{}

		require.Equal(t, 1, execute(root, stderr))
		require.Empty(t, stderr.String())
	})

	t.Run("success", func(t *testing.T) {
		root := newRootCmd()
		root.SetArgs([]string{"version"})
		root.SetOut(&bytes.Buffer{})
		stderr := &bytes.Buffer{}

		require.Equal(t, 0, execute(root, stderr))
		require.Empty(t, stderr.String())
	})
}
