package entity

import (
	"errors"
	"fmt"
)

// Messages surfaced in the error field of degraded records.
const (
	ScrapingFailedMessage = "Scraping failed"
	NoDataMessage         = "No data available"
	NoSymbolsMessage      = "No symbols provided"
)

// Sentinel errors returned by providers and the validator.
var (
	// ErrNoData indicates that a provider answered but had no rows.
	ErrNoData = errors.New("no data available")

	// ErrInvalidRecord indicates that a well-formed response failed validation.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrUnknownOperation indicates that the caller asked for an unsupported operation.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrNoSymbols indicates that an operation needing a symbol got none.
	ErrNoSymbols = errors.New("no symbols provided")
)

// ErrorKind classifies a fetch failure so that the orchestrator can pick a
// recovery path.
type ErrorKind int

const (
	KindProvider ErrorKind = iota
	KindValidation
	KindNoData
	KindUnknownOperation
	KindMalformedInput
)

func (k ErrorKind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindValidation:
		return "validation"
	case KindNoData:
		return "no_data"
	case KindUnknownOperation:
		return "unknown_operation"
	case KindMalformedInput:
		return "malformed_input"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchError wraps a failure with its kind and the operation that hit it.
type FetchError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Classify maps any error to its kind. Errors that carry no kind are
// treated as provider failures.
func Classify(err error) ErrorKind {
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		return fe.Kind
	case errors.Is(err, ErrNoData):
		return KindNoData
	case errors.Is(err, ErrInvalidRecord):
		return KindValidation
	case errors.Is(err, ErrUnknownOperation):
		return KindUnknownOperation
	case errors.Is(err, ErrNoSymbols):
		return KindMalformedInput
	default:
		return KindProvider
	}
}
