package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const environmentEntryTemplateConstant = "%s=%s"

type osCommandRunner struct{}

// NewOSCommandRunner constructs a CommandRunner backed by os/exec.
func NewOSCommandRunner() CommandRunner {
	return osCommandRunner{}
}

// Run executes the command synchronously and captures its output streams.
func (runner osCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executableCommand := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executableCommand.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		environmentEntries := os.Environ()
		variableNames := make([]string, 0, len(command.Details.EnvironmentVariables))
		for variableName := range command.Details.EnvironmentVariables {
			variableNames = append(variableNames, variableName)
		}
		sort.Strings(variableNames)
		for _, variableName := range variableNames {
			environmentEntries = append(environmentEntries, fmt.Sprintf(environmentEntryTemplateConstant, variableName, command.Details.EnvironmentVariables[variableName]))
		}
		executableCommand.Env = environmentEntries
	}

	if len(command.Details.StandardInput) > 0 {
		executableCommand.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executableCommand.Stdout = &standardOutputBuffer
	executableCommand.Stderr = &standardErrorBuffer

	runError := executableCommand.Run()
	executionResult := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}

	if runError != nil {
		var exitError *exec.ExitError
		if errors.As(runError, &exitError) {
			executionResult.ExitCode = exitError.ExitCode()
			return executionResult, nil
		}
		return ExecutionResult{}, runError
	}

	return executionResult, nil
}
