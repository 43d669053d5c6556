// Command trippingly is the terminal client for the Trippingly speech
// backend. It keeps annotation state locally (one JSON document per
// speech) and mirrors changes to the backend best-effort.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
