package deploy_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tyemirov/shipit/internal/deploy"
	"github.com/tyemirov/shipit/internal/execshell"
)

const (
	firstStepNameConstant   = deploy.StepName("first")
	secondStepNameConstant  = deploy.StepName("second")
	thirdStepNameConstant   = deploy.StepName("third")
	stepFailureTextConstant = "command exploded"
	skipReasonTextConstant  = "not requested"
	stepDescriptionConstant = "run the thing"
	failingCommandConstant  = execshell.CommandName("python")
	failingExitCodeConstant = 4
)

func TestNewRunnerRequiresLogger(testInstance *testing.T) {
	_, creationError := deploy.NewRunner(nil, false)
	require.ErrorIs(testInstance, creationError, deploy.ErrRunnerLoggerNotConfigured)
}

func TestRunnerRejectsEmptyStepList(testInstance *testing.T) {
	runner, creationError := deploy.NewRunner(zap.NewNop(), false)
	require.NoError(testInstance, creationError)

	_, runError := runner.Run(context.Background(), nil, deploy.RuntimeOptions{})
	require.ErrorIs(testInstance, runError, deploy.ErrNoStepsConfigured)
}

func TestRunnerStopsAtFirstFailure(testInstance *testing.T) {
	executed := []deploy.StepName{}
	recordStep := func(name deploy.StepName, runError error) deploy.Step {
		return deploy.Step{
			Name: name,
			Run: func(context.Context) error {
				executed = append(executed, name)
				return runError
			},
		}
	}

	runner, creationError := deploy.NewRunner(zap.NewNop(), false)
	require.NoError(testInstance, creationError)

	steps := []deploy.Step{
		recordStep(firstStepNameConstant, nil),
		recordStep(secondStepNameConstant, errors.New(stepFailureTextConstant)),
		recordStep(thirdStepNameConstant, nil),
	}

	results, runError := runner.Run(context.Background(), steps, deploy.RuntimeOptions{})

	require.Equal(testInstance, []deploy.StepName{firstStepNameConstant, secondStepNameConstant}, executed)
	require.Len(testInstance, results, 2)
	require.Equal(testInstance, deploy.OutcomeApplied, results[0].Outcome)
	require.Equal(testInstance, deploy.OutcomeFailed, results[1].Outcome)

	var stepFailure deploy.StepFailedError
	require.ErrorAs(testInstance, runError, &stepFailure)
	require.Equal(testInstance, secondStepNameConstant, stepFailure.StepName)
}

func TestRunnerHonorsSkipPredicate(testInstance *testing.T) {
	skippedStepExecuted := false
	steps := []deploy.Step{
		{
			Name: firstStepNameConstant,
			Skip: func() (bool, string) { return true, skipReasonTextConstant },
			Run: func(context.Context) error {
				skippedStepExecuted = true
				return nil
			},
		},
		{
			Name: secondStepNameConstant,
			Run:  func(context.Context) error { return nil },
		},
	}

	runner, creationError := deploy.NewRunner(zap.NewNop(), false)
	require.NoError(testInstance, creationError)

	results, runError := runner.Run(context.Background(), steps, deploy.RuntimeOptions{})

	require.NoError(testInstance, runError)
	require.False(testInstance, skippedStepExecuted)
	require.Equal(testInstance, deploy.OutcomeSkipped, results[0].Outcome)
	require.Equal(testInstance, skipReasonTextConstant, results[0].Reason)
	require.Equal(testInstance, deploy.OutcomeApplied, results[1].Outcome)
}

func TestRunnerDryRunPlansWithoutExecuting(testInstance *testing.T) {
	stepExecuted := false
	steps := []deploy.Step{
		{
			Name:        firstStepNameConstant,
			Description: stepDescriptionConstant,
			Run: func(context.Context) error {
				stepExecuted = true
				return nil
			},
		},
	}

	observerCore, observedLogs := observer.New(zap.InfoLevel)
	runner, creationError := deploy.NewRunner(zap.New(observerCore), false)
	require.NoError(testInstance, creationError)

	results, runError := runner.Run(context.Background(), steps, deploy.RuntimeOptions{DryRun: true})

	require.NoError(testInstance, runError)
	require.False(testInstance, stepExecuted)
	require.Equal(testInstance, deploy.OutcomePlanned, results[0].Outcome)
	require.Equal(testInstance, stepDescriptionConstant, results[0].Reason)
	require.NotZero(testInstance, observedLogs.Len())
}

func TestStepFailedErrorExitCodePropagation(testInstance *testing.T) {
	testCases := []struct {
		name             string
		cause            error
		expectedExitCode int
	}{
		{
			name: "command_failure_exit_code_survives",
			cause: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: failingCommandConstant},
				Result:  execshell.ExecutionResult{ExitCode: failingExitCodeConstant},
			},
			expectedExitCode: failingExitCodeConstant,
		},
		{
			name:             "plain_error_maps_to_generic_failure",
			cause:            errors.New(stepFailureTextConstant),
			expectedExitCode: 1,
		},
		{
			name: "zero_exit_code_maps_to_generic_failure",
			cause: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: failingCommandConstant},
				Result:  execshell.ExecutionResult{ExitCode: 0},
			},
			expectedExitCode: 1,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			failure := deploy.StepFailedError{StepName: firstStepNameConstant, Cause: testCase.cause}
			require.Equal(testInstance, testCase.expectedExitCode, failure.ExitCode())
		})
	}
}
