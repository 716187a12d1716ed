package authclient

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const (
	textCodeInvalidTransition  = "INVALID_SESSION_STATE_TRANSITION"
	textCodeIncompleteIdentity = "INCOMPLETE_IDENTITY"
	textCodeOperationPending   = "AUTH_OPERATION_PENDING"
	textCodeSessionExpired     = "SESSION_EXPIRED"
)

// genericRequestFailed is the fallback message when a failing response body
// carries no usable error, detail, or message field.
const genericRequestFailed = "Request failed"

// ErrInvalidTransition is returned when a requested state change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid session state transition", goerrors.CategoryConflict).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeConflict)

// ErrIncompleteIdentity is returned when a successful auth response carries a
// partial identity. Nothing is persisted and the state is left untouched.
var ErrIncompleteIdentity = goerrors.New("backend returned an incomplete identity", goerrors.CategoryBadInput).
	WithTextCode(textCodeIncompleteIdentity).
	WithCode(goerrors.CodeBadRequest)

// ErrOperationPending rejects a login/register while another one is in flight.
var ErrOperationPending = goerrors.New("an authentication operation is already in flight", goerrors.CategoryConflict).
	WithTextCode(textCodeOperationPending).
	WithCode(goerrors.CodeConflict)

// ErrNoBackend is returned by operations invoked before a backend was wired.
var ErrNoBackend = goerrors.New("no backend configured", goerrors.CategoryInternal)

// ErrSessionExpired marks the condition that triggers global remediation.
var ErrSessionExpired = goerrors.New("session expired", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// BackendError captures a normalized backend response failure.
type BackendError struct {
	Operation string
	Status    int
	Message   string
	Err       error
	Raw       map[string]any
}

func (e *BackendError) Error() string {
	if e == nil {
		return genericRequestFailed
	}

	scope := e.Operation
	if scope == "" {
		scope = "request"
	}

	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return scope + " failed: " + e.Err.Error()
	}
	return scope + " failed"
}

func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *BackendError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if len(e.Raw) > 0 {
		meta["response"] = e.Raw
	}
	return meta
}

// backendError builds a normalized error for a failing call. raw is the
// decoded response body, if any; err is the transport-level failure, if any.
func backendError(operation string, status int, raw map[string]any, err error) *BackendError {
	message := normalizeBackendMessage(raw)
	if message == "" && err == nil {
		message = genericRequestFailed
	}

	return &BackendError{
		Operation: operation,
		Status:    status,
		Message:   message,
		Err:       err,
		Raw:       raw,
	}
}

// normalizeBackendMessage prefers the backend's error field, then detail,
// then message.
func normalizeBackendMessage(raw map[string]any) string {
	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// IsAuthFailureStatus reports whether a response status must trigger global
// remediation. 403 is an authorization failure for a valid session and must
// not destroy it.
func IsAuthFailureStatus(status int) bool {
	return status == http.StatusUnauthorized
}

// IsBackendError reports whether err is a normalized backend failure.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsValidationError reports whether err is a caller-side precondition
// failure detected before any network call.
func IsValidationError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryValidation
	}
	return false
}

// IsIntegrityError reports whether err marks an incomplete identity on an
// otherwise successful response.
func IsIntegrityError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeIncompleteIdentity
	}
	return false
}

// logErrorDetails logs the structured details behind a failed operation,
// whether it came back as a rich error or a normalized backend failure.
func logErrorDetails(logger Logger, operation string, err error) {
	if logger == nil || err == nil {
		return
	}

	var meta map[string]any

	var richErr *goerrors.Error
	var backendErr *BackendError
	switch {
	case goerrors.As(err, &richErr):
		meta = richErr.Metadata
	case errors.As(err, &backendErr):
		meta = backendErr.Metadata()
	}

	if len(meta) == 0 {
		return
	}

	logger.Debug("%s failure details: %s", operation, print.MaybePrettyJSON(meta))
}

// wrapValidationError converts an ozzo validation error into a rich error
// carrying the field/message map as structured metadata instead of a
// stringified blob.
func wrapValidationError(err error, message string) error {
	if err == nil {
		return nil
	}

	richErr := goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(goerrors.CodeBadRequest)

	if fields := validationFieldMap(err); len(fields) > 0 {
		richErr = richErr.WithMetadata(map[string]any{"fields": fields})
	}

	return richErr
}

func validationFieldMap(err error) map[string]any {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	fields := make(map[string]any, len(fieldErrs))
	for field, ferr := range fieldErrs {
		if ferr != nil {
			fields[field] = ferr.Error()
		}
	}
	return fields
}
