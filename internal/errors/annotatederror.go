// Package errors extends the standard library errors with slog attribute
// annotations and caller information so that errors can be logged with
// structured context close to where they happened.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

const maxStackDepth = 32

type annotatedError struct {
	msg   string
	cause error
	attrs []slog.Attr
	stack []uintptr
}

func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// callers captures the stack of the caller's caller.
func callers() []uintptr {
	pc := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pc) //nolint:mnd // skip Callers, callers and the constructor.
	return pc[:n]
}

// NewSentinel creates an error intended for package-level sentinel values.
func NewSentinel(msg string) error {
	return &annotatedError{msg: msg, cause: nil, attrs: nil, stack: callers()}
}

// Wrap annotates err with a message and optional [slog.Attr] that end up in
// the log line when the error is logged with [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{msg: msg, cause: err, attrs: attrs, stack: callers()}
}

// DecoratePanic converts a recovered panic value into an error whose stack
// points at the panic site.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	pc := make([]uintptr, maxStackDepth)
	n := runtime.Callers(3, pc) //nolint:mnd // skip Callers, DecoratePanic and the deferred func.
	return &annotatedError{
		msg:   fmt.Sprintf("panic: %v", recovered),
		cause: nil,
		attrs: nil,
		stack: pc[:n],
	}
}

// New re-exports [errors.New].
func New(msg string) error {
	return errors.New(msg)
}

// Is re-exports [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As re-exports [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap re-exports [errors.Unwrap].
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join re-exports [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError turns an error into a [slog.Attr] group containing the error
// message, the source location of the innermost annotation and all attributes
// collected from the wrap chain.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Group("error", slog.String("message", "<nil>"))
	}

	group := []any{slog.String("message", err.Error())}
	if src := source(err); src != "" {
		group = append(group, slog.String("source", src))
	}
	if attrs := collectAttrs(err); len(attrs) > 0 {
		annotations := make([]any, 0, len(attrs))
		for _, attr := range attrs {
			annotations = append(annotations, attr)
		}
		group = append(group, slog.Group("annotations", annotations...))
	}
	return slog.Group("error", group...)
}

// collectAttrs gathers annotations from the outermost error inwards so that
// outer annotations win on duplicate keys in text handlers.
func collectAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	for err != nil {
		var annotated *annotatedError
		if !errors.As(err, &annotated) {
			break
		}
		attrs = append(attrs, annotated.attrs...)
		err = annotated.cause
	}
	return attrs
}

// source resolves the stack captured at annotation time to a file:line
// outside this package. When the stack crosses a panic, the frame after
// runtime.gopanic wins so the log points at the panic site.
func source(err error) string {
	var annotated *annotatedError
	if !errors.As(err, &annotated) {
		return ""
	}

	var (
		first      string
		afterPanic string
		sawPanic   bool
	)
	frames := runtime.CallersFrames(annotated.stack)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			sawPanic = true
		case frame.File == "",
			strings.HasSuffix(frame.File, "annotatederror.go"),
			strings.HasPrefix(frame.Function, "runtime."):
			// Skip frames internal to this package and the runtime.
		default:
			loc := fmt.Sprintf("%s:%d", frame.File, frame.Line)
			if first == "" {
				first = loc
			}
			if sawPanic && afterPanic == "" {
				afterPanic = loc
			}
		}
		if !more {
			break
		}
	}
	if afterPanic != "" {
		return afterPanic
	}
	return first
}
