// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed request: bad conversion-type string,
// missing input file, too few merge inputs. It is raised before any work is
// scheduled and never after a side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InfrastructureError reports a missing capability, most commonly that no
// converter is registered for a requested format pair. The message lists
// the conversions that are available.
type InfrastructureError struct {
	Reason string
}

func (e *InfrastructureError) Error() string {
	return e.Reason
}

// ConversionError wraps the failure of a single file's conversion. In batch
// mode it is absorbed into that file's result; on the single-file path it
// propagates to the caller.
type ConversionError struct {
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s: %v", e.Input, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// PriorTextError signals that an OCR-adding conversion found the source
// document already carries a text layer. It is the one retryable condition
// in the system: the executor retries exactly once with forced OCR.
// Converters must raise this type rather than a message for the caller to
// sniff.
type PriorTextError struct {
	Path string
}

func (e *PriorTextError) Error() string {
	return fmt.Sprintf("document %s already contains a text layer", e.Path)
}

// IsPriorText reports whether err, at any level of wrapping, is a
// PriorTextError.
func IsPriorText(err error) bool {
	var pt *PriorTextError
	return errors.As(err, &pt)
}
