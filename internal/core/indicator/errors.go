package indicator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEmittedValue marks calculator output that cannot be normalised.
	ErrInvalidEmittedValue = errors.New("invalid emitted value")

	// ErrInvalidWindowConfiguration is returned at construction when a calculator owns
	// a date emitter but no window.
	ErrInvalidWindowConfiguration = errors.New("invalid window configuration")

	// ErrEmitterType is returned for an emitter kind other than date or null.
	ErrEmitterType = errors.New("emitter type not recognized")

	// ErrInvalidGroupByType is returned for an explicit group_by type outside integer/string/date.
	ErrInvalidGroupByType = errors.New("invalid group_by type")

	// ErrInvalidGroupValue is returned when a document lacks a group_by field.
	// A field present with a null value groups under nil instead.
	ErrInvalidGroupValue = errors.New("invalid group value")

	// ErrCorruptIdentifier is returned when the index yields an id without the indicator prefix.
	ErrCorruptIdentifier = errors.New("indexed identifier lacks indicator prefix")

	ErrUnknownCalculator = errors.New("unknown calculator")
	ErrUnboundCalculator = errors.New("calculator is not registered with an indicator type")
	ErrInvalidDefinition = errors.New("invalid indicator definition")
)

// EmitError describes one rejected emitted value.
type EmitError struct {
	Calculator string
	Emitter    string
	Reason     string
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", ErrInvalidEmittedValue, e.Calculator, e.Emitter, e.Reason)
}

func (e *EmitError) Unwrap() error {
	return ErrInvalidEmittedValue
}
