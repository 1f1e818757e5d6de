package main

import (
	"errors"
	"fmt"
	"os"
)

// version, commit, and buildDate are set via -ldflags at release build time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// exitError carries the specific process exit code a command wants to
// return, since cobra's Execute only reports success/failure. Commands
// that need anything other than the generic 0/1 wrap their error in one
// of these (see wrapExit in root.go).
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	err := rootCmd.Execute()
	if err == nil {
		os.Exit(0)
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ee.err)
		}
		os.Exit(ee.code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
