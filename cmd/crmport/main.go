// Command crmport imports, validates and exports CRM data files from the
// command line against the same store the server uses.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/JonMunkholm/crmport/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		reportError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// reportError prints the user message for err with its support code. The
// raw error follows as detail; errors with no specific message are printed
// raw since a CLI user has no server log to consult.
func reportError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, "Error:", core.FormatUserError(err))
		fmt.Fprintln(w, "Detail:", err)
	} else {
		fmt.Fprintln(w, "Error:", err)
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintln(w, "Hint:", hint)
	}
}
