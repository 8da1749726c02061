package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/shipit/internal/environment"
	"github.com/tyemirov/shipit/internal/execshell"
)

const (
	executorNotConfiguredMessageConstant       = "deployment executor not configured"
	logsDirectoryCreationErrorTemplateConstant = "unable to create logs directory %s: %w"
	logsDirectoryPermissionsConstant           = 0o755
	manageScriptNameConstant                   = "manage.py"
	pipInstallSubcommandConstant               = "install"
	pipRequirementFlagConstant                 = "-r"
	collectStaticSubcommandConstant            = "collectstatic"
	migrateSubcommandConstant                  = "migrate"
	createSuperuserSubcommandConstant          = "createsuperuser"
	nonInteractiveFlagConstant                 = "--noinput"
	settingsFlagTemplateConstant               = "--settings=%s"
	superuserSkipReasonTemplateConstant        = "%s not set"
	prepareLogsDescriptionTemplateConstant     = "mkdir -p %s"
	commandDescriptionSeparatorConstant        = " "
)

// ErrExecutorNotConfigured indicates the shell executor dependency was missing.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// Executor runs the external commands the deployment drives.
type Executor interface {
	ExecutePip(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePython(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies describes the collaborators required by the deployment service.
type Dependencies struct {
	Logger               *zap.Logger
	Executor             Executor
	EnvironmentLookup    func(string) string
	HumanReadableLogging bool
}

// Service assembles and runs the ordered deployment sequence.
type Service struct {
	logger            *zap.Logger
	executor          Executor
	environmentLookup func(string) string
	configuration     Configuration
	runner            *Runner
}

// NewService constructs a Service for the provided dependencies and configuration.
func NewService(dependencies Dependencies, configuration Configuration) (*Service, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	environmentLookup := dependencies.EnvironmentLookup
	if environmentLookup == nil {
		environmentLookup = os.Getenv
	}

	runner, runnerError := NewRunner(logger, dependencies.HumanReadableLogging)
	if runnerError != nil {
		return nil, runnerError
	}

	return &Service{
		logger:            logger,
		executor:          dependencies.Executor,
		environmentLookup: environmentLookup,
		configuration:     configuration.Sanitize(),
		runner:            runner,
	}, nil
}

// Deploy hydrates the environment and executes the deployment sequence.
//
// The first failing step aborts the run; the returned error is a
// StepFailedError carrying the failing command's exit code.
func (service *Service) Deploy(executionContext context.Context) ([]StepResult, error) {
	if environmentError := environment.LoadEnvironmentFile(service.configuration.EnvironmentFilePath); environmentError != nil {
		return nil, environmentError
	}

	return service.runner.Run(executionContext, service.Steps(), RuntimeOptions{DryRun: service.configuration.DryRun})
}

// Steps returns the ordered deployment steps for the current configuration.
func (service *Service) Steps() []Step {
	logsDirectoryPath := service.logsDirectoryPath()
	manifestArguments := []string{pipInstallSubcommandConstant, pipRequirementFlagConstant, service.configuration.ManifestPath}
	collectStaticArguments := []string{manageScriptNameConstant, collectStaticSubcommandConstant, nonInteractiveFlagConstant}
	migrateArguments := service.migrateArguments()
	superuserArguments := []string{manageScriptNameConstant, createSuperuserSubcommandConstant, nonInteractiveFlagConstant}

	return []Step{
		{
			Name:        StepPrepareLogs,
			Description: fmt.Sprintf(prepareLogsDescriptionTemplateConstant, logsDirectoryPath),
			Run: func(context.Context) error {
				if creationError := os.MkdirAll(logsDirectoryPath, logsDirectoryPermissionsConstant); creationError != nil {
					return fmt.Errorf(logsDirectoryCreationErrorTemplateConstant, logsDirectoryPath, creationError)
				}
				return nil
			},
		},
		{
			Name:        StepInstallDependencies,
			Description: describeCommand(execshell.CommandPip, manifestArguments),
			Run: func(executionContext context.Context) error {
				_, executionError := service.executor.ExecutePip(executionContext, service.commandDetails(manifestArguments))
				return executionError
			},
		},
		{
			Name:        StepCollectStatic,
			Description: describeCommand(execshell.CommandPython, collectStaticArguments),
			Run: func(executionContext context.Context) error {
				_, executionError := service.executor.ExecutePython(executionContext, service.commandDetails(collectStaticArguments))
				return executionError
			},
		},
		{
			Name:        StepApplyMigrations,
			Description: describeCommand(execshell.CommandPython, migrateArguments),
			Run: func(executionContext context.Context) error {
				_, executionError := service.executor.ExecutePython(executionContext, service.commandDetails(migrateArguments))
				return executionError
			},
		},
		{
			Name:        StepCreateSuperuser,
			Description: describeCommand(execshell.CommandPython, superuserArguments),
			Skip:        service.superuserSkip,
			Run: func(executionContext context.Context) error {
				_, executionError := service.executor.ExecutePython(executionContext, service.commandDetails(superuserArguments))
				return executionError
			},
		},
	}
}

func (service *Service) superuserSkip() (bool, string) {
	if service.configuration.CreateSuperuser {
		return false, ""
	}
	if environment.IsTruthy(service.environmentLookup(service.configuration.SuperuserVariableName)) {
		return false, ""
	}
	return true, fmt.Sprintf(superuserSkipReasonTemplateConstant, service.configuration.SuperuserVariableName)
}

func (service *Service) migrateArguments() []string {
	migrateArguments := []string{manageScriptNameConstant, migrateSubcommandConstant}
	if len(service.configuration.SettingsProfile) > 0 {
		migrateArguments = append(migrateArguments, fmt.Sprintf(settingsFlagTemplateConstant, service.configuration.SettingsProfile))
	}
	return migrateArguments
}

func (service *Service) logsDirectoryPath() string {
	if len(service.configuration.WorkingDirectory) == 0 {
		return service.configuration.LogsDirectoryName
	}
	return filepath.Join(service.configuration.WorkingDirectory, service.configuration.LogsDirectoryName)
}

func (service *Service) commandDetails(arguments []string) execshell.CommandDetails {
	return execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: service.configuration.WorkingDirectory,
	}
}

func describeCommand(commandName execshell.CommandName, arguments []string) string {
	parts := append([]string{string(commandName)}, arguments...)
	return strings.Join(parts, commandDescriptionSeparatorConstant)
}
