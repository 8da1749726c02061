package deploy

import "strings"

const (
	defaultManifestPathConstant          = "requirements.txt"
	defaultLogsDirectoryNameConstant     = "logs"
	defaultSettingsProfileConstant       = "project.deployment_settings"
	defaultSuperuserVariableNameConstant = "CREATE_SUPERUSER"
)

// Configuration captures configuration values for the deployment runner.
type Configuration struct {
	WorkingDirectory      string `mapstructure:"working_directory"`
	ManifestPath          string `mapstructure:"manifest"`
	SettingsProfile       string `mapstructure:"settings_profile"`
	LogsDirectoryName     string `mapstructure:"logs_directory"`
	SuperuserVariableName string `mapstructure:"superuser_variable"`
	EnvironmentFilePath   string `mapstructure:"env_file"`
	CreateSuperuser       bool   `mapstructure:"create_superuser"`
	DryRun                bool   `mapstructure:"dry_run"`
}

// DefaultConfiguration returns the deployment defaults for a conventional project layout.
func DefaultConfiguration() Configuration {
	return Configuration{
		ManifestPath:          defaultManifestPathConstant,
		SettingsProfile:       defaultSettingsProfileConstant,
		LogsDirectoryName:     defaultLogsDirectoryNameConstant,
		SuperuserVariableName: defaultSuperuserVariableNameConstant,
	}
}

// Sanitize trims textual configuration values and restores required defaults.
//
// The settings profile is deliberately left as provided: an empty profile
// disables the migration settings flag, which is a valid configuration.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.WorkingDirectory = strings.TrimSpace(configuration.WorkingDirectory)
	sanitized.ManifestPath = strings.TrimSpace(configuration.ManifestPath)
	sanitized.SettingsProfile = strings.TrimSpace(configuration.SettingsProfile)
	sanitized.LogsDirectoryName = strings.TrimSpace(configuration.LogsDirectoryName)
	sanitized.SuperuserVariableName = strings.TrimSpace(configuration.SuperuserVariableName)
	sanitized.EnvironmentFilePath = strings.TrimSpace(configuration.EnvironmentFilePath)

	if len(sanitized.ManifestPath) == 0 {
		sanitized.ManifestPath = defaultManifestPathConstant
	}
	if len(sanitized.LogsDirectoryName) == 0 {
		sanitized.LogsDirectoryName = defaultLogsDirectoryNameConstant
	}
	if len(sanitized.SuperuserVariableName) == 0 {
		sanitized.SuperuserVariableName = defaultSuperuserVariableNameConstant
	}

	return sanitized
}
