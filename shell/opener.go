// Package shell holds the desktop-side collaborators of the login flow:
// opening the system browser and receiving the provider callback.
package shell

import (
	"os/exec"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// URLOpenerFunc adapts a function to authflow.URLOpener.
type URLOpenerFunc func(url string) error

func (f URLOpenerFunc) OpenURL(url string) error { return f(url) }

// BrowserOpener opens URLs in the user's default browser.
type BrowserOpener struct {
	goos    string
	command func(name string, args ...string) *exec.Cmd
}

func NewBrowserOpener() *BrowserOpener {
	return &BrowserOpener{goos: runtime.GOOS, command: exec.Command}
}

// OpenURL starts the platform opener and returns without waiting for it.
func (b *BrowserOpener) OpenURL(url string) error {
	name, args := openCommand(b.goos, url)
	cmd := b.command(name, args...)
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "starting %s", name)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug().Err(err).Str("opener", name).Msg("browser opener exited")
		}
	}()
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}
