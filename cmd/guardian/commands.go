package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"guardian/internal/app"
	"guardian/internal/auth"
	"guardian/internal/platform/httpserver"
	"guardian/internal/session"
	httptransport "guardian/internal/transport/http"
	dErrors "guardian/pkg/domain-errors"
	"guardian/pkg/requestcontext"
)

const shutdownTimeout = 10 * time.Second

// start parses flags, builds dependencies and bootstraps the session.
// openBrowser is read after the flags are parsed.
func start(ctx context.Context, fs *flag.FlagSet, args []string, stdout, stderr io.Writer, openBrowser func() bool) (*deps, error) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	d, err := buildDeps(ctx, depsOptions{stdout: stdout, stderr: stderr, openBrowser: openBrowser != nil && openBrowser()})
	if err != nil {
		return nil, err
	}
	d.app.Start(ctx)
	return d, nil
}

func runStatus(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) error {
	d, err := start(ctx, flag.NewFlagSet("status", flag.ContinueOnError), args, stdout, stderr, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	s := d.app.Session()
	fmt.Fprintf(stdout, "state:  %s\n", d.store.State())
	fmt.Fprintf(stdout, "screen: %s\n", d.app.Navigator().Route())
	if s.User != nil {
		fmt.Fprintf(stdout, "user:   %s %s <%s> (%s)\n", s.User.FirstName, s.User.LastName, s.User.Email, s.User.UserType)
	}
	if s.StudentID != "" {
		fmt.Fprintf(stdout, "student: %s\n", s.StudentID)
	}
	if session.IsAuthenticated(s) {
		info, err := auth.InspectAccessToken(s.AccessToken)
		switch {
		case err != nil:
			fmt.Fprintln(stdout, "token:  opaque")
		case info.ExpiresAt == nil:
			fmt.Fprintln(stdout, "token:  no expiry")
		case info.Expired(requestcontext.Now(ctx)):
			fmt.Fprintf(stdout, "token:  expired at %s\n", info.ExpiresAt.Format(time.RFC3339))
		default:
			fmt.Fprintf(stdout, "token:  valid until %s\n", info.ExpiresAt.Format(time.RFC3339))
		}
	}
	return nil
}

func runLogin(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	noBrowser := fs.Bool("no-browser", false, "print the sign in URL without opening a browser")
	d, err := start(ctx, fs, args, stdout, stderr, func() bool { return !*noBrowser })
	if err != nil {
		return err
	}
	defer d.Close()

	if d.app.Navigator().Route() == app.RouteHome {
		fmt.Fprintln(stdout, "Already signed in. Run `guardian logout` first.")
		return nil
	}
	login := d.app.Login()
	if err := login.StartGoogleSignIn(ctx); err != nil {
		return err
	}
	if !login.State().ModalVisible {
		fmt.Fprintln(stdout, "Sign in was cancelled.")
		return nil
	}
	fmt.Fprintln(stdout, "Paste the JSON response, then press Ctrl-D:")
	return submit(ctx, d, stdin, stdout)
}

func runSubmit(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	file := fs.String("file", "", "read the JSON response from `path` instead of stdin")
	d, err := start(ctx, fs, args, stdout, stderr, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	if d.app.Navigator().Route() == app.RouteHome {
		fmt.Fprintln(stdout, "Already signed in. Run `guardian logout` first.")
		return nil
	}
	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	d.app.Login().OpenModal()
	return submit(ctx, d, in, stdout)
}

func submit(ctx context.Context, d *deps, in io.Reader, stdout io.Writer) error {
	raw, err := io.ReadAll(io.LimitReader(in, 64<<10))
	if err != nil {
		return fmt.Errorf("read auth response: %w", err)
	}
	login := d.app.Login()
	login.SetInput(string(raw))
	if err := login.SubmitJSON(ctx); err != nil {
		return err
	}
	s := d.app.Session()
	name := "Guardian"
	if s.User != nil && s.User.FirstName != "" {
		name = s.User.FirstName
	}
	fmt.Fprintf(stdout, "Signed in as %s.\n", name)
	return nil
}

func runHome(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("home", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print the home view as JSON")
	d, err := start(ctx, fs, args, stdout, stderr, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	view, loadErr := d.app.Home().Load(ctx)
	if dErrors.HasCode(loadErr, dErrors.CodeUnauthorized) {
		fmt.Fprintln(stdout, "Not signed in. Run `guardian login` first.")
		return loadErr
	}
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return err
		}
		return loadErr
	}
	renderHome(stdout, view)
	return loadErr
}

func renderHome(w io.Writer, view app.HomeView) {
	fmt.Fprintln(w, "EduRider")
	fmt.Fprintln(w, strings.Repeat("=", 40))
	fmt.Fprintln(w, view.Welcome)
	fmt.Fprintln(w, view.Role)
	if c := view.Student; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Student Information")
		fmt.Fprintf(w, "  Name      %s\n", c.Name)
		fmt.Fprintf(w, "  Class     %s\n", c.Class)
		fmt.Fprintf(w, "  Guardian  %s\n", c.Guardian)
		fmt.Fprintf(w, "  Phone     %s\n", c.Phone)
		fmt.Fprintf(w, "  Address   %s\n", c.Address)
		fmt.Fprintf(w, "  %s\n", c.LocationStatus)
		fmt.Fprintf(w, "  %s\n", c.LastUpdate)
	}
	fmt.Fprintln(w)
	for _, a := range view.Actions {
		label := a.Label
		if !a.Implemented {
			label += " (coming soon)"
		}
		fmt.Fprintf(w, "[ %s ]\n", label)
	}
}

func runLogout(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) error {
	d, err := start(ctx, flag.NewFlagSet("logout", flag.ContinueOnError), args, stdout, stderr, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.app.Home().Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Signed out.")
	return nil
}

func runServe(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default GUARDIAN_HTTP_ADDR)")
	noBrowser := fs.Bool("no-browser", false, "never open a desktop browser for sign in")
	d, err := start(ctx, fs, args, stdout, stderr, func() bool { return !*noBrowser })
	if err != nil {
		return err
	}
	defer d.Close()
	if *addr == "" {
		*addr = d.cfg.HTTPAddr
	}

	handler := httptransport.NewHandler(d.app, d.logger,
		httptransport.WithMetrics(d.metrics),
		httptransport.WithHealthCheck(d.health),
	)
	srv := httpserver.New(*addr, httptransport.NewRouter(handler))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.logger.InfoContext(gctx, "starting guardian shell", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		d.logger.Info("shutting down guardian shell")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
