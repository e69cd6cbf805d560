// Command guardian is the terminal front end of the guardian school-bus app.
//
//	guardian status            show the persisted session and first screen
//	guardian login             start Google sign in, then paste the JSON response on stdin
//	guardian submit [-file f]  commit a pasted JSON response from stdin or a file
//	guardian home              render the home screen
//	guardian logout            clear the session
//	guardian serve             run the loopback HTTP shell until interrupted
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: guardian <command> [flags]

commands:
  status   show the persisted session and first screen
  login    start Google sign in and paste the JSON response
  submit   commit a pasted JSON response (stdin or -file)
  home     render the home screen
  logout   clear the session
  serve    run the loopback HTTP shell
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "guardian:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return errUsage
	}
	return cmd(ctx, args[1:], stdin, stdout, stderr)
}

type command func(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error

var commands = map[string]command{
	"status": runStatus,
	"login":  runLogin,
	"submit": runSubmit,
	"home":   runHome,
	"logout": runLogout,
	"serve":  runServe,
}
