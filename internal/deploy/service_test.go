package deploy_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyemirov/shipit/internal/deploy"
	"github.com/tyemirov/shipit/internal/execshell"
)

const (
	superuserVariableNameConstant  = "CREATE_SUPERUSER"
	recordedPipCommandConstant     = "pip"
	recordedPythonCommandConstant  = "python"
	installFailureExitCodeConstant = 2
)

type recordedInvocation struct {
	command   string
	arguments []string
}

type scriptedExecutor struct {
	invocations []recordedInvocation
	failures    map[string]execshell.CommandFailedError
	workingDirs []string
}

func (executor *scriptedExecutor) record(command string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.invocations = append(executor.invocations, recordedInvocation{command: command, arguments: details.Arguments})
	executor.workingDirs = append(executor.workingDirs, details.WorkingDirectory)
	if len(details.Arguments) > 0 {
		if failure, found := executor.failures[details.Arguments[0]]; found {
			return failure.Result, failure
		}
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *scriptedExecutor) ExecutePip(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record(recordedPipCommandConstant, details)
}

func (executor *scriptedExecutor) ExecutePython(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record(recordedPythonCommandConstant, details)
}

func newTestService(testInstance *testing.T, configuration deploy.Configuration, executor *scriptedExecutor, environmentValues map[string]string) *deploy.Service {
	testInstance.Helper()
	service, creationError := deploy.NewService(deploy.Dependencies{
		Logger:   zap.NewNop(),
		Executor: executor,
		EnvironmentLookup: func(variableName string) string {
			return environmentValues[variableName]
		},
	}, configuration)
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceRequiresExecutor(testInstance *testing.T) {
	_, creationError := deploy.NewService(deploy.Dependencies{Logger: zap.NewNop()}, deploy.DefaultConfiguration())
	require.ErrorIs(testInstance, creationError, deploy.ErrExecutorNotConfigured)
}

func TestDeployRunsConventionalSequence(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	executor := &scriptedExecutor{}
	configuration := deploy.DefaultConfiguration()
	configuration.WorkingDirectory = workingDirectory

	service := newTestService(testInstance, configuration, executor, nil)

	results, deployError := service.Deploy(context.Background())
	require.NoError(testInstance, deployError)

	expectedInvocations := []recordedInvocation{
		{command: recordedPipCommandConstant, arguments: []string{"install", "-r", "requirements.txt"}},
		{command: recordedPythonCommandConstant, arguments: []string{"manage.py", "collectstatic", "--noinput"}},
		{command: recordedPythonCommandConstant, arguments: []string{"manage.py", "migrate", "--settings=project.deployment_settings"}},
	}
	require.Equal(testInstance, expectedInvocations, executor.invocations)
	for _, recordedWorkingDirectory := range executor.workingDirs {
		require.Equal(testInstance, workingDirectory, recordedWorkingDirectory)
	}

	require.Len(testInstance, results, 5)
	require.Equal(testInstance, deploy.OutcomeApplied, results[0].Outcome)
	require.Equal(testInstance, deploy.OutcomeSkipped, results[4].Outcome)

	logsDirectoryInfo, statError := os.Stat(filepath.Join(workingDirectory, "logs"))
	require.NoError(testInstance, statError)
	require.True(testInstance, logsDirectoryInfo.IsDir())
}

func TestDeployPrepareLogsIsIdempotent(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(workingDirectory, "logs"), 0o755))

	configuration := deploy.DefaultConfiguration()
	configuration.WorkingDirectory = workingDirectory

	service := newTestService(testInstance, configuration, &scriptedExecutor{}, nil)

	_, deployError := service.Deploy(context.Background())
	require.NoError(testInstance, deployError)
}

func TestDeployOmitsSettingsFlagWhenProfileDisabled(testInstance *testing.T) {
	executor := &scriptedExecutor{}
	configuration := deploy.DefaultConfiguration()
	configuration.WorkingDirectory = testInstance.TempDir()
	configuration.SettingsProfile = ""

	service := newTestService(testInstance, configuration, executor, nil)

	_, deployError := service.Deploy(context.Background())
	require.NoError(testInstance, deployError)

	require.Equal(testInstance, []string{"manage.py", "migrate"}, executor.invocations[2].arguments)
}

func TestDeploySuperuserGating(testInstance *testing.T) {
	testCases := []struct {
		name            string
		environment     map[string]string
		forceFlag       bool
		expectSuperuser bool
	}{
		{name: "variable_unset_skips", environment: nil, expectSuperuser: false},
		{name: "variable_blank_skips", environment: map[string]string{superuserVariableNameConstant: "   "}, expectSuperuser: false},
		{name: "variable_one_creates", environment: map[string]string{superuserVariableNameConstant: "1"}, expectSuperuser: true},
		{name: "variable_true_creates", environment: map[string]string{superuserVariableNameConstant: "true"}, expectSuperuser: true},
		{name: "variable_arbitrary_text_creates", environment: map[string]string{superuserVariableNameConstant: "yes please"}, expectSuperuser: true},
		{name: "flag_overrides_unset_variable", environment: nil, forceFlag: true, expectSuperuser: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			executor := &scriptedExecutor{}
			configuration := deploy.DefaultConfiguration()
			configuration.WorkingDirectory = testInstance.TempDir()
			configuration.CreateSuperuser = testCase.forceFlag

			service := newTestService(testInstance, configuration, executor, testCase.environment)

			results, deployError := service.Deploy(context.Background())
			require.NoError(testInstance, deployError)

			lastInvocation := executor.invocations[len(executor.invocations)-1]
			if testCase.expectSuperuser {
				require.Equal(testInstance, []string{"manage.py", "createsuperuser", "--noinput"}, lastInvocation.arguments)
				require.Equal(testInstance, deploy.OutcomeApplied, results[4].Outcome)
			} else {
				require.Equal(testInstance, "migrate", lastInvocation.arguments[1])
				require.Equal(testInstance, deploy.OutcomeSkipped, results[4].Outcome)
				require.Equal(testInstance, fmt.Sprintf("%s not set", superuserVariableNameConstant), results[4].Reason)
			}
		})
	}
}

func TestDeployAbortsWhenInstallFails(testInstance *testing.T) {
	installFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandPip},
		Result:  execshell.ExecutionResult{ExitCode: installFailureExitCodeConstant},
	}
	executor := &scriptedExecutor{failures: map[string]execshell.CommandFailedError{"install": installFailure}}

	configuration := deploy.DefaultConfiguration()
	configuration.WorkingDirectory = testInstance.TempDir()

	service := newTestService(testInstance, configuration, executor, nil)

	results, deployError := service.Deploy(context.Background())

	var stepFailure deploy.StepFailedError
	require.ErrorAs(testInstance, deployError, &stepFailure)
	require.Equal(testInstance, deploy.StepInstallDependencies, stepFailure.StepName)
	require.Equal(testInstance, installFailureExitCodeConstant, stepFailure.ExitCode())

	require.Len(testInstance, executor.invocations, 1)
	require.Len(testInstance, results, 2)
	require.Equal(testInstance, deploy.OutcomeFailed, results[1].Outcome)
}

func TestDeployDryRunPlansEverySurvivingStep(testInstance *testing.T) {
	executor := &scriptedExecutor{}
	configuration := deploy.DefaultConfiguration()
	configuration.WorkingDirectory = testInstance.TempDir()
	configuration.DryRun = true

	service := newTestService(testInstance, configuration, executor, map[string]string{superuserVariableNameConstant: "1"})

	results, deployError := service.Deploy(context.Background())
	require.NoError(testInstance, deployError)
	require.Empty(testInstance, executor.invocations)

	require.Len(testInstance, results, 5)
	for _, result := range results {
		require.Equal(testInstance, deploy.OutcomePlanned, result.Outcome)
		require.NotEmpty(testInstance, result.Reason)
	}

	_, statError := os.Stat(filepath.Join(configuration.WorkingDirectory, "logs"))
	require.True(testInstance, os.IsNotExist(statError))
}
