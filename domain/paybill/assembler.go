package paybill

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2/log"
)

const (
	msgAccountExists       = "Account exists"
	msgAccountNotFound     = "Account does not exists or payment not allowed"
	msgPaymentSuccessful   = "Payment successful"
	msgTransactionNotFound = "Transaction not found"
)

// Assembler maps validation and transfer outcomes to the customer-facing
// response contract and performs the validation-phase store side effects.
type Assembler struct {
	store ICorrelationStore
}

func NewAssembler(store ICorrelationStore) *Assembler {
	return &Assembler{store: store}
}

// ValidationSucceeded records the correlation for a successful identity
// check and builds the success response. The reconciled flag is consumed
// read-once; a repeat delivery of the same validation response logs and
// carries on.
func (a *Assembler) ValidationSucceeded(ctx context.Context, status *AccountStatusResponse) (Response, error) {
	if err := a.store.RecordValidationSuccess(ctx, status.CorrelationID, status.TransactionID); err != nil {
		return Response{}, err
	}
	reconciled, err := a.store.ConsumeReconciledFlag(ctx, status.CorrelationID)
	if err != nil {
		return Response{}, err
	}
	if !reconciled {
		log.Warnf("validation reference %s observed without a reconciled marker", status.CorrelationID)
	}

	return Response{
		Status:                  http.StatusOK,
		Message:                 msgAccountExists,
		OafTransactionReference: status.CorrelationID,
		ClientName:              status.ClientName,
	}, nil
}

// ValidationFailed builds the not-allowed response. No optional fields
// are set.
func (a *Assembler) ValidationFailed() Response {
	return Response{Status: http.StatusNotFound, Message: msgAccountNotFound}
}

// TransferStatus maps a transfer outcome to the customer response. Only
// a COMMITTED transfer is reported as successful; a pending, absent or
// wrong-shaped status collapses into the same not-found response.
func (a *Assembler) TransferStatus(status *TransferStatusResponse) Response {
	if status == nil || status.TransferState != TransferStateCommitted {
		return Response{Status: http.StatusNotFound, Message: msgTransactionNotFound}
	}

	receipt := status.TransferID
	return Response{
		Status:        http.StatusOK,
		Message:       msgPaymentSuccessful,
		ReceiptNumber: &receipt,
		TransID:       status.TransactionID,
	}
}

// PayAccepted acknowledges a submit-payment delivery; the receipt number
// echoes the validation reference, empty when none was supplied.
func (a *Assembler) PayAccepted(validationRef string) Response {
	receipt := validationRef
	return Response{
		Status:        http.StatusOK,
		Message:       msgPaymentSuccessful,
		ReceiptNumber: &receipt,
	}
}
