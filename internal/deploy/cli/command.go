// Package cli exposes the deploy command over the deployment service.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tyemirov/shipit/internal/deploy"
	"github.com/tyemirov/shipit/internal/execshell"
)

const (
	commandUseConstant                     = "deploy"
	commandShortDescriptionConstant        = "Run the ordered Django deployment sequence"
	commandLongDescriptionConstant         = "Installs dependencies, collects static assets, applies migrations, and provisions the superuser when requested, halting at the first failure."
	flagManifestNameConstant               = "manifest"
	flagManifestDescriptionConstant        = "Path to the pip requirements manifest"
	flagSettingsProfileNameConstant        = "settings-profile"
	flagSettingsProfileDescriptionConstant = "Django settings module passed to migrate (empty disables the flag)"
	flagLogsDirectoryNameConstant          = "logs-dir"
	flagLogsDirectoryDescriptionConstant   = "Directory created before the deployment starts"
	flagEnvironmentFileNameConstant        = "env-file"
	flagEnvironmentFileDescriptionConstant = "Optional dotenv file loaded before the deployment starts"
	flagCreateSuperuserNameConstant        = "create-superuser"
	flagCreateSuperuserDescriptionConstant = "Provision the Django superuser regardless of the environment gate"
	flagDryRunNameConstant                 = "dry-run"
	flagDryRunDescriptionConstant          = "Report the steps that would run without executing them"
	summaryLineTemplateConstant            = "%-9s %s\n"
	summaryLineWithReasonTemplateConstant  = "%-9s %s (%s)\n"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the deploy CLI command backed by the deployment service.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	Executor                     deploy.Executor
	EnvironmentLookup            func(string) string
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() deploy.Configuration
}

// Build constructs the deploy command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	defaults := deploy.DefaultConfiguration()
	command.Flags().String(flagManifestNameConstant, defaults.ManifestPath, flagManifestDescriptionConstant)
	command.Flags().String(flagSettingsProfileNameConstant, defaults.SettingsProfile, flagSettingsProfileDescriptionConstant)
	command.Flags().String(flagLogsDirectoryNameConstant, defaults.LogsDirectoryName, flagLogsDirectoryDescriptionConstant)
	command.Flags().String(flagEnvironmentFileNameConstant, "", flagEnvironmentFileDescriptionConstant)
	command.Flags().Bool(flagCreateSuperuserNameConstant, false, flagCreateSuperuserDescriptionConstant)
	command.Flags().Bool(flagDryRunNameConstant, false, flagDryRunDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration(command)

	logger := builder.resolveLogger()
	humanReadable := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadable = builder.HumanReadableLoggingProvider()
	}

	executor, executorError := builder.resolveExecutor(logger, humanReadable)
	if executorError != nil {
		return executorError
	}

	service, serviceError := deploy.NewService(deploy.Dependencies{
		Logger:               logger,
		Executor:             executor,
		EnvironmentLookup:    builder.EnvironmentLookup,
		HumanReadableLogging: humanReadable,
	}, configuration)
	if serviceError != nil {
		return serviceError
	}

	results, deployError := service.Deploy(command.Context())
	for _, result := range results {
		if len(result.Reason) > 0 && result.Outcome != deploy.OutcomeFailed {
			fmt.Fprintf(command.OutOrStdout(), summaryLineWithReasonTemplateConstant, result.Outcome, result.Name, result.Reason)
			continue
		}
		fmt.Fprintf(command.OutOrStdout(), summaryLineTemplateConstant, result.Outcome, result.Name)
	}

	return deployError
}

func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) deploy.Configuration {
	configuration := deploy.DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider().Sanitize()
	}

	flags := command.Flags()
	if flags.Changed(flagManifestNameConstant) {
		configuration.ManifestPath, _ = flags.GetString(flagManifestNameConstant)
	}
	if flags.Changed(flagSettingsProfileNameConstant) {
		configuration.SettingsProfile, _ = flags.GetString(flagSettingsProfileNameConstant)
	}
	if flags.Changed(flagLogsDirectoryNameConstant) {
		configuration.LogsDirectoryName, _ = flags.GetString(flagLogsDirectoryNameConstant)
	}
	if flags.Changed(flagEnvironmentFileNameConstant) {
		configuration.EnvironmentFilePath, _ = flags.GetString(flagEnvironmentFileNameConstant)
	}
	if flags.Changed(flagCreateSuperuserNameConstant) {
		configuration.CreateSuperuser, _ = flags.GetBool(flagCreateSuperuserNameConstant)
	}
	if flags.Changed(flagDryRunNameConstant) {
		configuration.DryRun, _ = flags.GetBool(flagDryRunNameConstant)
	}

	return configuration.Sanitize()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger, humanReadable bool) (deploy.Executor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), humanReadable)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
