// Package environment hydrates process environment variables from optional
// dotenv files and evaluates the variable gates that toggle deployment steps.
package environment

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

const environmentFileLoadErrorTemplateConstant = "unable to load environment file %s: %w"

// LoadEnvironmentFile hydrates the process environment from the provided dotenv file.
//
// Variables already present in the environment keep their values; the file
// only fills gaps. An empty path is a no-op so callers can pass configuration
// values straight through.
func LoadEnvironmentFile(environmentFilePath string) error {
	trimmedPath := strings.TrimSpace(environmentFilePath)
	if len(trimmedPath) == 0 {
		return nil
	}

	if loadError := godotenv.Load(trimmedPath); loadError != nil {
		return fmt.Errorf(environmentFileLoadErrorTemplateConstant, trimmedPath, loadError)
	}

	return nil
}

// IsTruthy reports whether the provided value enables a gated step.
//
// Any non-empty value counts as true; surrounding whitespace is ignored.
func IsTruthy(value string) bool {
	return len(strings.TrimSpace(value)) > 0
}
