package schema

import "fmt"

// ErrorCode is the stable, machine-readable discriminant every compiler
// error carries (spec.md §7). Grounded on the teacher's engine.AppError
// (internal/engine/errors.go), adapted from an HTTP-status-carrying error
// to a pure library error: there is no network layer here to assign a
// status code to, so Code is the only machine-checkable field.
type ErrorCode string

const (
	ErrModelNotFound                   ErrorCode = "MODEL_NOT_FOUND"
	ErrFieldNotFound                   ErrorCode = "FIELD_NOT_FOUND"
	ErrPresetNotFound                  ErrorCode = "PRESET_NOT_FOUND"
	ErrInvalidToValue                  ErrorCode = "INVALID_TO_VALUE"
	ErrInvalidWithValue                ErrorCode = "INVALID_WITH_VALUE"
	ErrInvalidModelValue               ErrorCode = "INVALID_MODEL_VALUE"
	ErrInvalidBeforeOrAfterInstruction ErrorCode = "INVALID_BEFORE_OR_AFTER_INSTRUCTION"
	ErrMutuallyExclusiveInstructions   ErrorCode = "MUTUALLY_EXCLUSIVE_INSTRUCTIONS"
	ErrMissingInstruction              ErrorCode = "MISSING_INSTRUCTION"
	ErrMissingField                    ErrorCode = "MISSING_FIELD"
	ErrExistingModelEntity             ErrorCode = "EXISTING_MODEL_ENTITY"
	ErrRequiredModelEntity             ErrorCode = "REQUIRED_MODEL_ENTITY"
	ErrIndexNotFound                   ErrorCode = "INDEX_NOT_FOUND"
	ErrTriggerNotFound                 ErrorCode = "TRIGGER_NOT_FOUND"
)

// Error is the single error type every compiler package returns.
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Fields  []string
	Query   *Query
}

func (e *Error) Error() string { return e.Message }

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of e annotated with the offending field path.
func (e *Error) WithField(field string) *Error {
	c := *e
	c.Field = field
	return &c
}

// WithQuery returns a copy of e annotated with the triggering query.
func (e *Error) WithQuery(q *Query) *Error {
	c := *e
	c.Query = q
	return &c
}

func ModelNotFoundError(slug string) *Error {
	return NewErrorf(ErrModelNotFound, "Model not found: %s", slug)
}

func FieldNotFoundError(modelSlug, fieldSlug string) *Error {
	return NewErrorf(ErrFieldNotFound, "Field not found on model %s: %s", modelSlug, fieldSlug).WithField(fieldSlug)
}

func PresetNotFoundError(slug string) *Error {
	return NewErrorf(ErrPresetNotFound, "Preset not found: %s", slug)
}
