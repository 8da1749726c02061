package execshell

import (
	"fmt"
	"strings"
)

const (
	formatterStartedMessageTemplateConstant          = "$ %s"
	formatterSuccessMessageTemplateConstant          = "%s completed"
	formatterFailureMessageTemplateConstant          = "%s failed (exit code %d)"
	formatterFailureDetailMessageTemplateConstant    = "%s failed (exit code %d: %s)"
	formatterExecutionFailureMessageTemplateConstant = "%s failed: %v"
)

// CommandMessageFormatter renders human-readable command lifecycle messages.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(formatterStartedMessageTemplateConstant, renderCommandLine(command))
}

// BuildSuccessMessage describes a command that completed with exit code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(formatterSuccessMessageTemplateConstant, renderCommandLine(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	detail := strings.TrimSpace(result.StandardError)
	if len(detail) == 0 {
		detail = strings.TrimSpace(result.StandardOutput)
	}
	if len(detail) == 0 {
		return fmt.Sprintf(formatterFailureMessageTemplateConstant, renderCommandLine(command), result.ExitCode)
	}
	return fmt.Sprintf(formatterFailureDetailMessageTemplateConstant, renderCommandLine(command), result.ExitCode, firstLine(detail))
}

// BuildExecutionFailureMessage describes a command the runner could not execute.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, runnerError error) string {
	return fmt.Sprintf(formatterExecutionFailureMessageTemplateConstant, renderCommandLine(command), runnerError)
}

func renderCommandLine(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, " ")
}

func firstLine(value string) string {
	lines := strings.Split(value, "\n")
	return strings.TrimSpace(lines[0])
}
