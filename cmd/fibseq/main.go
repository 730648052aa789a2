package main

import (
	"context"
	"os"

	"github.com/agbru/fibseq/internal/app"
	apperrors "github.com/agbru/fibseq/internal/errors"
)

func main() {
	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(apperrors.ExitCodeFor(err))
	}

	exitCode := application.Run(context.Background(), os.Stdin, os.Stdout)
	os.Exit(exitCode)
}
