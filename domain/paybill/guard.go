package paybill

import (
	"context"

	"github.com/goccy/go-json"
)

// ITransferStatusQuerier queries the payment switch for a prior transfer
// bound to a transaction id. An empty body means no prior transfer.
type ITransferStatusQuerier interface {
	QueryTransferStatus(ctx context.Context, transactionID string) ([]byte, error)
}

// DuplicateGuard is the pre-flight idempotency check run before any
// workflow action: a transaction id whose transfer is already COMMITTED
// is rejected to prevent a double payment.
type DuplicateGuard struct {
	status ITransferStatusQuerier
}

func NewDuplicateGuard(status ITransferStatusQuerier) *DuplicateGuard {
	return &DuplicateGuard{status: status}
}

// Check returns nil when no committed transfer exists for transactionID.
// A body that fails to parse propagates as a ParseError rather than
// being treated as "no prior transfer".
func (g *DuplicateGuard) Check(ctx context.Context, transactionID string) error {
	body, err := g.status.QueryTransferStatus(ctx, transactionID)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}

	var status TransferStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		return &ParseError{Err: err}
	}

	if status.TransferState == TransferStateCommitted {
		return &ExistingTransactionError{TransactionID: transactionID}
	}
	return nil
}
