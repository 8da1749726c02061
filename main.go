package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tyemirov/shipit/cmd/cli"
	"github.com/tyemirov/shipit/internal/deploy"
)

const (
	exitErrorTemplateConstant = "%v\n"
	defaultExitCodeConstant   = 1
)

// main executes the shipit command-line application.
//
// A failing deployment step exits with the failing command's own exit code.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)

		var stepFailure deploy.StepFailedError
		if errors.As(executionError, &stepFailure) {
			os.Exit(stepFailure.ExitCode())
		}
		os.Exit(defaultExitCodeConstant)
	}
}
