package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/logging"
)

// Quote creation runs as a fixed pipeline. Each step gets only what the
// previous one returned:
//
//	I --Validate--> V --Perform--> P --Verify--> P --Archive--> P --Respond--> O
//
// Nothing is persisted before Verify has accepted the performed result.

// ExecutionStep names a pipeline stage in logs and errors.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the stage that stopped a pipeline.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// Executor runs Operations with a request-scoped logger.
type Executor struct {
	logger *slog.Logger
}

func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation is one pipeline, for example "create_quote".
// Validate, Perform and Respond are required; Verify and Archive are optional.
type Operation[I, V, P, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Validate turns raw input into a validated value.
	Validate func(ctx context.Context, input I) (V, error)

	// Perform computes the result from the validated value. It must not
	// change any state.
	Perform func(ctx context.Context, validated V) (P, error)

	// Verify rejects a performed result that must not be persisted.
	Verify func(ctx context.Context, validated V, performed P) error

	// Archive persists the verified result and returns the stored form.
	Archive func(ctx context.Context, performed P) (P, error)

	// Respond shapes the stored result for the caller.
	Respond func(ctx context.Context, stored P) (O, error)
}

var errMissingStep = errors.New("operation step not defined")

// Execute runs op on input. Failures come back as *ExecutionError.
func Execute[I, V, P, O any](ctx context.Context, exec *Executor, op Operation[I, V, P, O], input I) (O, error) {
	var zero O

	logger, ok := logging.Lookup(ctx)
	if !ok {
		logger = exec.logger
	}

	logger = logger.With(slog.String("operation", op.Name))
	start := time.Now()

	if op.Validate == nil || op.Perform == nil || op.Respond == nil {
		return zero, stepError(StepValidate, "incomplete operation", errMissingStep)
	}

	logger.DebugContext(ctx, "starting validation")

	validated, err := op.Validate(ctx, input)
	if err != nil {
		logger.WarnContext(ctx, "validation failed", slog.Any("error", err))

		return zero, stepError(StepValidate, "input validation failed", err)
	}

	performed, err := op.Perform(ctx, validated)
	if err != nil {
		logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))

		return zero, stepError(StepPerform, "operation failed", err)
	}

	if op.Verify != nil {
		if err := op.Verify(ctx, validated, performed); err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))

			return zero, stepError(StepVerify, "verification failed", err)
		}
	}

	stored := performed
	if op.Archive != nil {
		stored, err = op.Archive(ctx, performed)
		if err != nil {
			logger.ErrorContext(ctx, "archive failed", slog.Any("error", err))

			return zero, stepError(StepArchive, "state persistence failed", err)
		}

		logger.DebugContext(ctx, "state archived")
	}

	result, err := op.Respond(ctx, stored)
	if err != nil {
		logger.WarnContext(ctx, "respond formatting failed", slog.Any("error", err))

		return zero, stepError(StepRespond, "response failed", err)
	}

	logger.InfoContext(ctx, "operation completed",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
