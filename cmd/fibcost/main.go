// Command fibcost computes F(n) with the naive recursive and the iterative
// algorithms and reports what each one costs.
package main

import (
	"context"
	"os"

	"github.com/agbru/fibcost/internal/app"
	apperrors "github.com/agbru/fibcost/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return
		}
		os.Exit(apperrors.ExitCodeFor(err))
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
