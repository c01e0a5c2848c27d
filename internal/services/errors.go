package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrSynthesis     = errors.New("synthesis error")
	ErrAssembly      = errors.New("assembly error")
	ErrScriptSource  = errors.New("script source error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Kind identifies the failure family persisted alongside run errors and
// attached to observability events.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindSynthesis     Kind = "synthesis"
	KindAssembly      Kind = "assembly"
	KindScriptSource  Kind = "script_source"
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindTransient     Kind = "transient"
)

// Error carries a sentinel marker plus the stage/operation context it was
// raised in. Both the marker and the cause participate in errors.Is chains.
type Error struct {
	Marker    error
	Stage     string
	Operation string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	detail := buildDetail(e.Stage, e.Operation, e.Message)
	marker := "failure"
	if e.Marker != nil {
		marker = e.Marker.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", marker, detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", marker, detail)
}

func (e *Error) Unwrap() []error {
	switch {
	case e.Marker != nil && e.Err != nil:
		return []error{e.Marker, e.Err}
	case e.Marker != nil:
		return []error{e.Marker}
	case e.Err != nil:
		return []error{e.Err}
	default:
		return nil
	}
}

// Wrap tags err with the given marker and stage context. The marker should be
// one of the exported sentinel errors above; a nil marker is treated as
// transient.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &Error{
		Marker:    marker,
		Stage:     strings.TrimSpace(stage),
		Operation: strings.TrimSpace(operation),
		Message:   strings.TrimSpace(message),
		Err:       err,
	}
}

// Detail is the extracted human-facing view of a wrapped service error.
type Detail struct {
	Stage     string
	Operation string
	Message   string
}

// Details pulls stage context out of err for persistence and notifications.
// Errors that did not come through Wrap yield their plain Error() text.
func Details(err error) Detail {
	if err == nil {
		return Detail{}
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		message := svcErr.Message
		if message == "" && svcErr.Err != nil {
			message = svcErr.Err.Error()
		}
		return Detail{
			Stage:     svcErr.Stage,
			Operation: svcErr.Operation,
			Message:   message,
		}
	}
	return Detail{Message: err.Error()}
}

// FailureKind classifies err by its marker so callers can persist or report a
// stable failure family.
func FailureKind(err error) Kind {
	switch {
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrSynthesis):
		return KindSynthesis
	case errors.Is(err, ErrAssembly):
		return KindAssembly
	case errors.Is(err, ErrScriptSource):
		return KindScriptSource
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindTransient
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
