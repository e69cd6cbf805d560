package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"guardian/internal/app"
)

// terminalNotifier prints alerts as "<title>: <message>" lines.
type terminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newTerminalNotifier(w io.Writer) *terminalNotifier {
	return &terminalNotifier{w: w}
}

func (n *terminalNotifier) Alert(_ context.Context, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
}

// systemBrowser prints the auth URL and optionally hands it to the desktop
// opener. The terminal cannot observe the browser session, so it always
// reports a dismissal and the caller moves on to the paste step. A missing
// or failing opener is logged; the printed URL still works.
type systemBrowser struct {
	w      io.Writer
	open   bool
	logger *slog.Logger
	opener func(target string) (string, []string)
}

func newSystemBrowser(w io.Writer, open bool, logger *slog.Logger) *systemBrowser {
	return &systemBrowser{w: w, open: open, logger: logger, opener: openerCommand}
}

func (b *systemBrowser) OpenAuthSession(ctx context.Context, authURL, redirectURI string) (app.BrowserResult, error) {
	fmt.Fprintf(b.w, "Open this URL to sign in with Google:\n\n  %s\n\n", authURL)
	fmt.Fprintf(b.w, "After signing in, copy the JSON response shown by %s.\n", redirectURI)
	if !b.open {
		return app.BrowserDismiss, nil
	}
	name, args := b.opener(authURL)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		b.logger.WarnContext(ctx, "could not open browser", "opener", name, "error", err)
		return app.BrowserDismiss, nil
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			b.logger.Warn("browser opener exited with error", "opener", name, "error", err)
		}
	}()
	return app.BrowserDismiss, nil
}

func openerCommand(target string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}
