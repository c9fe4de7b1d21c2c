package paybill

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// JournalEntry is one final transfer state reported by the workflow
// engine through a status callback.
type JournalEntry struct {
	TransactionID string
	TransferID    string
	State         TransferState
	RecordedAt    time.Time
}

// IJournal records final transfer states for reconciliation.
type IJournal interface {
	Record(ctx context.Context, entry JournalEntry) error
	FindByTransactionID(ctx context.Context, transactionID string) (*JournalEntry, error)
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS paybill_transfer_journal (
	id             BIGSERIAL PRIMARY KEY,
	transaction_id TEXT        NOT NULL,
	transfer_id    TEXT        NOT NULL DEFAULT '',
	state          TEXT        NOT NULL,
	recorded_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS paybill_transfer_journal_txn_idx
	ON paybill_transfer_journal (transaction_id);
`

// TransferJournal is the Postgres-backed journal.
type TransferJournal struct {
	db *sql.DB
}

func NewTransferJournal(db *sql.DB) *TransferJournal {
	return &TransferJournal{db: db}
}

func (j *TransferJournal) EnsureSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, journalSchema)
	return err
}

func (j *TransferJournal) Record(ctx context.Context, entry JournalEntry) error {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(
		ctx,
		`INSERT INTO paybill_transfer_journal (transaction_id, transfer_id, state, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		entry.TransactionID, entry.TransferID, string(entry.State), recordedAt,
	)
	return err
}

func (j *TransferJournal) FindByTransactionID(ctx context.Context, transactionID string) (*JournalEntry, error) {
	row := j.db.QueryRowContext(
		ctx,
		`SELECT transaction_id, transfer_id, state, recorded_at
		 FROM paybill_transfer_journal
		 WHERE transaction_id = $1
		 ORDER BY recorded_at DESC
		 LIMIT 1`,
		transactionID,
	)

	var (
		entry JournalEntry
		state string
	)
	err := row.Scan(&entry.TransactionID, &entry.TransferID, &state, &entry.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry.State = TransferState(state)
	return &entry, nil
}
