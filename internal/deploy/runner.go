package deploy

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	runnerLoggerNotConfiguredMessageConstant = "deployment runner logger not configured"
	noStepsConfiguredMessageConstant         = "deployment runner received no steps"
	stepStartingMessageConstant              = "deployment step starting"
	stepCompletedMessageConstant             = "deployment step completed"
	stepSkippedMessageConstant               = "deployment step skipped"
	stepPlannedMessageConstant               = "deployment step planned"
	stepFailedMessageConstant                = "deployment step failed"
	runCompletedMessageConstant              = "deployment completed"
	runFailedMessageConstant                 = "deployment aborted"
	stepLogFieldNameConstant                 = "step"
	reasonLogFieldNameConstant               = "reason"
	stepsTotalLogFieldNameConstant           = "steps_total"
	stepsExecutedLogFieldNameConstant        = "steps_executed"
	humanStepStartedTemplateConstant         = "==> %s"
	humanStepCompletedTemplateConstant       = "%s done"
	humanStepSkippedTemplateConstant         = "%s skipped (%s)"
	humanStepPlannedTemplateConstant         = "%s would run: %s"
	humanStepFailedTemplateConstant          = "%s failed: %v"
)

var (
	// ErrRunnerLoggerNotConfigured indicates the logger dependency was missing.
	ErrRunnerLoggerNotConfigured = errors.New(runnerLoggerNotConfiguredMessageConstant)
	// ErrNoStepsConfigured indicates the runner received an empty step list.
	ErrNoStepsConfigured = errors.New(noStepsConfiguredMessageConstant)
)

// RuntimeOptions adjusts how a deployment run executes its steps.
type RuntimeOptions struct {
	DryRun bool
}

// Runner executes deployment steps in strict order, halting at the first failure.
type Runner struct {
	logger               *zap.Logger
	humanReadableLogging bool
}

// NewRunner builds a Runner for the provided logger.
func NewRunner(logger *zap.Logger, humanReadableLogging bool) (*Runner, error) {
	if logger == nil {
		return nil, ErrRunnerLoggerNotConfigured
	}
	return &Runner{logger: logger, humanReadableLogging: humanReadableLogging}, nil
}

// Run executes the steps in order and returns the per-step results.
//
// The first failing step stops the run; steps after it never execute and are
// absent from the results. The returned error wraps the failing step's cause.
func (runner *Runner) Run(executionContext context.Context, steps []Step, options RuntimeOptions) ([]StepResult, error) {
	if len(steps) == 0 {
		return nil, ErrNoStepsConfigured
	}

	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		if step.Skip != nil {
			if skipped, skipReason := step.Skip(); skipped {
				results = append(results, StepResult{Name: step.Name, Outcome: OutcomeSkipped, Reason: skipReason})
				runner.logSkipped(step, skipReason)
				continue
			}
		}

		if options.DryRun {
			results = append(results, StepResult{Name: step.Name, Outcome: OutcomePlanned, Reason: step.Description})
			runner.logPlanned(step)
			continue
		}

		runner.logStarting(step)

		if runError := step.Run(executionContext); runError != nil {
			failure := StepFailedError{StepName: step.Name, Cause: runError}
			results = append(results, StepResult{Name: step.Name, Outcome: OutcomeFailed, Reason: runError.Error()})
			runner.logFailed(step, runError)
			runner.logSummary(runFailedMessageConstant, results, len(steps))
			return results, failure
		}

		results = append(results, StepResult{Name: step.Name, Outcome: OutcomeApplied})
		runner.logCompleted(step)
	}

	runner.logSummary(runCompletedMessageConstant, results, len(steps))
	return results, nil
}

func (runner *Runner) logStarting(step Step) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanStepStartedTemplateConstant, step.Name))
		return
	}
	runner.logger.Info(stepStartingMessageConstant, zap.String(stepLogFieldNameConstant, string(step.Name)))
}

func (runner *Runner) logCompleted(step Step) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanStepCompletedTemplateConstant, step.Name))
		return
	}
	runner.logger.Info(stepCompletedMessageConstant, zap.String(stepLogFieldNameConstant, string(step.Name)))
}

func (runner *Runner) logSkipped(step Step, skipReason string) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanStepSkippedTemplateConstant, step.Name, skipReason))
		return
	}
	runner.logger.Info(stepSkippedMessageConstant,
		zap.String(stepLogFieldNameConstant, string(step.Name)),
		zap.String(reasonLogFieldNameConstant, skipReason),
	)
}

func (runner *Runner) logPlanned(step Step) {
	if runner.humanReadableLogging {
		runner.logger.Info(fmt.Sprintf(humanStepPlannedTemplateConstant, step.Name, step.Description))
		return
	}
	runner.logger.Info(stepPlannedMessageConstant,
		zap.String(stepLogFieldNameConstant, string(step.Name)),
		zap.String(reasonLogFieldNameConstant, step.Description),
	)
}

func (runner *Runner) logFailed(step Step, runError error) {
	if runner.humanReadableLogging {
		runner.logger.Error(fmt.Sprintf(humanStepFailedTemplateConstant, step.Name, runError))
		return
	}
	runner.logger.Error(stepFailedMessageConstant,
		zap.String(stepLogFieldNameConstant, string(step.Name)),
		zap.Error(runError),
	)
}

func (runner *Runner) logSummary(message string, results []StepResult, totalSteps int) {
	if runner.humanReadableLogging {
		return
	}
	fields := make([]zap.Field, 0, len(results)+2)
	fields = append(fields,
		zap.Int(stepsTotalLogFieldNameConstant, totalSteps),
		zap.Int(stepsExecutedLogFieldNameConstant, len(results)),
	)
	for _, result := range results {
		fields = append(fields, zap.String(string(result.Name), string(result.Outcome)))
	}
	runner.logger.Info(message, fields...)
}
