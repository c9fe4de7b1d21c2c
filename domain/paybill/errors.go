package paybill

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	msgInternalError      = "Internal error while processing the request. Please try again later."
	msgSystemsUnavailable = "Internal systems are not available. Please try again later."
)

// ConnectorError carries its own boundary status and message and passes
// through the classifier unchanged.
type ConnectorError struct {
	Status  int
	Message string
}

func (e *ConnectorError) Error() string { return e.Message }

// MissingFieldError is a precondition failure raised before any external
// call is made.
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string { return e.Message }

// ExistingTransactionError rejects a payment whose transaction id is
// already bound to a committed transfer.
type ExistingTransactionError struct {
	TransactionID string
}

func (e *ExistingTransactionError) Error() string {
	return fmt.Sprintf("transaction id %s already exists", e.TransactionID)
}

// ParseError marks a payload that failed to deserialize into its
// expected structure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse error: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// ServiceUnavailableError marks a transport or client fault while
// talking to the workflow engine or a downstream service.
type ServiceUnavailableError struct {
	Err error
}

func (e *ServiceUnavailableError) Error() string { return "service unavailable: " + e.Err.Error() }
func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// Classify maps an error surfaced at the system boundary to the fixed
// customer-facing envelope. Unclassified faults fall through to the
// generic internal-error category.
func Classify(err error) Response {
	var (
		connectorErr   *ConnectorError
		missingField   *MissingFieldError
		existingTxn    *ExistingTransactionError
		parseErr       *ParseError
		unavailableErr *ServiceUnavailableError
	)

	switch {
	case errors.As(err, &connectorErr):
		return Response{Status: connectorErr.Status, Message: connectorErr.Message}
	case errors.As(err, &missingField):
		return Response{Status: http.StatusBadRequest, Message: missingField.Message}
	case errors.As(err, &existingTxn):
		return Response{Status: http.StatusConflict, Message: existingTxn.Error()}
	case errors.As(err, &parseErr):
		return Response{Status: http.StatusInternalServerError, Message: msgInternalError}
	case errors.As(err, &unavailableErr):
		return Response{Status: http.StatusServiceUnavailable, Message: msgSystemsUnavailable}
	default:
		return Response{Status: http.StatusInternalServerError, Message: msgInternalError}
	}
}
