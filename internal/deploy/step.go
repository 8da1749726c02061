package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/tyemirov/shipit/internal/execshell"
)

const (
	prepareLogsStepNameConstant         = "prepare-logs"
	installDependenciesStepNameConstant = "install-dependencies"
	collectStaticStepNameConstant       = "collect-static"
	applyMigrationsStepNameConstant     = "apply-migrations"
	createSuperuserStepNameConstant     = "create-superuser"
	stepFailureMessageTemplateConstant  = "step %s failed: %v"
	defaultFailureExitCodeConstant      = 1
)

// StepName identifies a deployment step.
type StepName string

// Deployment step names in execution order.
const (
	StepPrepareLogs         StepName = StepName(prepareLogsStepNameConstant)
	StepInstallDependencies StepName = StepName(installDependenciesStepNameConstant)
	StepCollectStatic       StepName = StepName(collectStaticStepNameConstant)
	StepApplyMigrations     StepName = StepName(applyMigrationsStepNameConstant)
	StepCreateSuperuser     StepName = StepName(createSuperuserStepNameConstant)
)

// StepOutcome classifies how a step concluded.
type StepOutcome string

// Step outcomes.
const (
	OutcomeApplied StepOutcome = "applied"
	OutcomeSkipped StepOutcome = "skipped"
	OutcomePlanned StepOutcome = "planned"
	OutcomeFailed  StepOutcome = "failed"
)

// StepResult records the conclusion of a single step.
type StepResult struct {
	Name    StepName
	Outcome StepOutcome
	Reason  string
}

// Step describes one ordered unit of the deployment sequence.
//
// Skip, when present, is consulted before execution; a true result records a
// skipped outcome with the returned reason and the step never runs.
type Step struct {
	Name        StepName
	Description string
	Skip        func() (bool, string)
	Run         func(executionContext context.Context) error
}

// StepFailedError reports the first failing step of a run.
type StepFailedError struct {
	StepName StepName
	Cause    error
}

// Error describes the failure with its underlying cause.
func (failureError StepFailedError) Error() string {
	return fmt.Sprintf(stepFailureMessageTemplateConstant, failureError.StepName, failureError.Cause)
}

// Unwrap exposes the underlying error.
func (failureError StepFailedError) Unwrap() error {
	return failureError.Cause
}

// ExitCode resolves the process exit status the failure should propagate.
//
// Command failures carry the external command's own exit code; every other
// failure maps to a generic non-zero status.
func (failureError StepFailedError) ExitCode() int {
	var commandFailure execshell.CommandFailedError
	if errors.As(failureError.Cause, &commandFailure) {
		if commandFailure.Result.ExitCode != 0 {
			return commandFailure.Result.ExitCode
		}
	}
	return defaultFailureExitCodeConstant
}
