package cli

import (
	"io/fs"

	"github.com/cockroachdb/errors"

	"github.com/roach88/francagen/internal/model"
	"github.com/roach88/francagen/internal/render"
	"github.com/roach88/francagen/internal/resource"
	"github.com/roach88/francagen/internal/session"
	"github.com/roach88/francagen/internal/store"
)

// Error codes for CLI responses. Model errors keep their own E2xx codes and
// ordering errors keep the session codes.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNoInputs     = "E003" // No model files found
	ErrCodeNotFound     = "E005" // Path or resource not found
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeRenderFailed = "E008" // Template execution failed
	ErrCodeLedger       = "E009" // Ledger open or query failed
	ErrCodeConfig       = "E010" // Config file error
)

// errorCode picks the response code for err.
func errorCode(err error) string {
	var (
		modelErr    *model.ModelError
		cycleErr    *session.CycleError
		limitErr    *session.LimitError
		notFoundErr *resource.NotFoundError
		renderErr   *render.RenderError
	)
	switch {
	case errors.As(err, &modelErr):
		return modelErr.Code
	case errors.As(err, &cycleErr):
		return string(session.ErrCodeCycleDetected)
	case errors.As(err, &limitErr):
		return string(session.ErrCodeSwapLimit)
	case errors.As(err, &notFoundErr):
		return ErrCodeNotFound
	case errors.As(err, &renderErr):
		return ErrCodeRenderFailed
	case errors.Is(err, errNoInputs), errors.Is(err, errNoScenarios):
		return ErrCodeNoInputs
	case errors.Is(err, store.ErrRunNotFound), errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	default:
		return ErrCodeGeneric
	}
}

// errorDetails returns structured context for err, if any.
func errorDetails(err error) any {
	var modelErr *model.ModelError
	if errors.As(err, &modelErr) {
		details := map[string]any{"file": modelErr.File}
		if modelErr.Field != "" {
			details["field"] = modelErr.Field
		}
		if modelErr.Pos.Line > 0 {
			details["line"] = modelErr.Pos.Line
			details["column"] = modelErr.Pos.Column
		}
		return details
	}
	var cycleErr *session.CycleError
	if errors.As(err, &cycleErr) {
		return map[string]any{"cycles": cycleErr.Cycles}
	}
	var notFoundErr *resource.NotFoundError
	if errors.As(err, &notFoundErr) {
		return map[string]any{"name": notFoundErr.Name, "searched": notFoundErr.Searched}
	}
	return nil
}

// fail reports err through the formatter and returns it as an ExitError.
func fail(f *OutputFormatter, exitCode int, err error) error {
	code := errorCode(err)
	_ = f.Error(code, err.Error(), errorDetails(err))
	return WrapExitError(exitCode, code, err)
}
