package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/shipit/internal/deploy"
)

const (
	overriddenManifestPathConstant = "requirements/production.txt"
	duplicateOperationNameConstant = "deploy"
)

func TestNormalizeInitializationScopeArguments(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedArguments []string
	}{
		{
			name:              "bare_init_flag_receives_default_scope",
			arguments:         []string{"--init"},
			expectedArguments: []string{"--init=local"},
		},
		{
			name:              "init_flag_before_another_flag_receives_default_scope",
			arguments:         []string{"--init", "--force"},
			expectedArguments: []string{"--init=local", "--force"},
		},
		{
			name:              "explicit_scope_survives",
			arguments:         []string{"--init=user"},
			expectedArguments: []string{"--init=user"},
		},
		{
			name:              "empty_scope_value_receives_default",
			arguments:         []string{"--init="},
			expectedArguments: []string{"--init=local"},
		},
		{
			name:              "unrelated_arguments_pass_through",
			arguments:         []string{"deploy", "--dry-run"},
			expectedArguments: []string{"deploy", "--dry-run"},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedArguments, normalizeInitializationScopeArguments(testCase.arguments))
		})
	}
}

func TestOperationConfigurationsRejectDuplicates(testInstance *testing.T) {
	definitions := []ApplicationOperationConfiguration{
		{Name: duplicateOperationNameConstant},
		{Name: " Deploy "},
	}

	_, configurationError := newOperationConfigurations(definitions)

	var duplicateError DuplicateOperationConfigurationError
	require.ErrorAs(testInstance, configurationError, &duplicateError)
	require.Equal(testInstance, duplicateOperationNameConstant, duplicateError.OperationName)
}

func TestOperationConfigurationsLookupMissing(testInstance *testing.T) {
	configurations, configurationError := newOperationConfigurations(nil)
	require.NoError(testInstance, configurationError)

	_, lookupError := configurations.Lookup("deploy")

	var missingError MissingOperationConfigurationError
	require.ErrorAs(testInstance, lookupError, &missingError)
}

func TestDeployConfigurationMergesOperationDefaults(testInstance *testing.T) {
	application := NewApplication()
	application.configuration.Operations = []ApplicationOperationConfiguration{
		{
			Name: deployOperationNameConstant,
			Options: map[string]any{
				"manifest":         overriddenManifestPathConstant,
				"create_superuser": true,
			},
		},
	}

	operationConfigurations, configurationError := newOperationConfigurations(application.configuration.Operations)
	require.NoError(testInstance, configurationError)
	application.operationConfigurations = operationConfigurations.MergeDefaults(application.embeddedOperationConfigurations)
	application.configuration.Common.DryRun = true

	configuration := application.deployConfiguration()

	require.Equal(testInstance, overriddenManifestPathConstant, configuration.ManifestPath)
	require.True(testInstance, configuration.CreateSuperuser)
	require.True(testInstance, configuration.DryRun)
}

func TestDeployConfigurationFallsBackToEmbeddedDefaults(testInstance *testing.T) {
	application := NewApplication()
	application.operationConfigurations = OperationConfigurations{}.MergeDefaults(application.embeddedOperationConfigurations)

	configuration := application.deployConfiguration()

	require.Equal(testInstance, deploy.DefaultConfiguration().ManifestPath, configuration.ManifestPath)
	require.Equal(testInstance, deploy.DefaultConfiguration().SettingsProfile, configuration.SettingsProfile)
}

func TestWriteConfigurationFileHonorsForceFlag(testInstance *testing.T) {
	application := NewApplication()
	targetDirectory := testInstance.TempDir()
	plan := configurationInitializationPlan{
		DirectoryPath: targetDirectory,
		FilePath:      filepath.Join(targetDirectory, configurationFileNameConstant),
	}
	configurationContent, _ := EmbeddedDefaultConfiguration()

	require.NoError(testInstance, application.writeConfigurationFile(plan, configurationContent))

	overwriteError := application.writeConfigurationFile(plan, configurationContent)
	require.Error(testInstance, overwriteError)
	require.Contains(testInstance, overwriteError.Error(), "use --force")

	application.configurationInitializationForced = true
	require.NoError(testInstance, application.writeConfigurationFile(plan, configurationContent))

	writtenContent, readError := os.ReadFile(plan.FilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, configurationContent, writtenContent)
}

func TestResolveConfigurationInitializationPlanRejectsUnknownScope(testInstance *testing.T) {
	application := NewApplication()

	_, planError := application.resolveConfigurationInitializationPlan("global")
	require.Error(testInstance, planError)
	require.Contains(testInstance, planError.Error(), "global")
}
