package paybill

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	app     *fiber.App
	store   *MemoryStore
	wf      *fakeWorkflowClient
	querier *fakeTransferStatusQuerier
	channel *fakeAccountStatusClient
	journal *fakeJournal
}

func newTestHarness() *testHarness {
	h := &testHarness{
		store:   NewMemoryStore(0),
		wf:      &fakeWorkflowClient{instanceID: "NEW-INSTANCE-1"},
		querier: &fakeTransferStatusQuerier{},
		channel: &fakeAccountStatusClient{},
		journal: &fakeJournal{},
	}

	h.app = fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: ErrorHandler,
	})

	registry := testRegistry()
	controller := NewController(
		NewRequestBuilder(registry),
		h.channel,
		h.querier,
		NewDuplicateGuard(h.querier),
		NewLauncher(h.store, h.wf, registry, "pay-bill-transfer", 5*time.Second),
		NewAssembler(h.store),
		h.journal,
	)
	controller.InitRoutes(h.app)
	return h
}

func (h *testHarness) send(t *testing.T, method, path string, body any) (int, Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out Response
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestController_PayHappyPath(t *testing.T) {
	h := newTestHarness()

	status, out := h.send(t, http.MethodPost, "/paybill/pay", testPayRequest())

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Payment successful", out.Message)
	require.NotNil(t, out.ReceiptNumber)
	assert.Equal(t, "OAF-REF-123", *out.ReceiptNumber)

	createCalls, _ := h.wf.snapshot()
	assert.Equal(t, 1, createCalls)
}

func TestController_PayMissingTransactionID(t *testing.T) {
	h := newTestHarness()

	req := testPayRequest()
	req.TransactionID = ""
	status, out := h.send(t, http.MethodPost, "/paybill/pay", req)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Transaction id is required for PayBill payment", out.Message)
}

func TestController_PayRejectsCommittedDuplicate(t *testing.T) {
	h := newTestHarness()
	h.querier.body = []byte(`{"transferState":"COMMITTED"}`)

	status, _ := h.send(t, http.MethodPost, "/paybill/pay", testPayRequest())

	assert.Equal(t, http.StatusConflict, status)
	createCalls, published := h.wf.snapshot()
	assert.Zero(t, createCalls, "no workflow action after an idempotency conflict")
	assert.Empty(t, published)
}

func TestController_PayUnparseableStatusBodyIsInternalError(t *testing.T) {
	h := newTestHarness()
	h.querier.body = []byte("invalid-json")

	status, out := h.send(t, http.MethodPost, "/paybill/pay", testPayRequest())

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Internal error while processing the request. Please try again later.", out.Message)
}

func TestController_TransactionStatusCommitted(t *testing.T) {
	h := newTestHarness()
	h.querier.body = []byte(`{"transferState":"COMMITTED","transferId":"transfer-123","transactionId":"txn-123"}`)

	status, out := h.send(t, http.MethodGet, "/paybill/transaction/txn-123", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Payment successful", out.Message)
	require.NotNil(t, out.ReceiptNumber)
	assert.Equal(t, "transfer-123", *out.ReceiptNumber)
	assert.Equal(t, "txn-123", out.TransID)
}

func TestController_TransactionStatusUnknown(t *testing.T) {
	h := newTestHarness()
	h.querier.body = nil

	status, out := h.send(t, http.MethodGet, "/paybill/transaction/txn-404", nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", out.Message)
}

func TestController_ValidationSuccess(t *testing.T) {
	h := newTestHarness()
	h.channel.resp = &AccountStatusResponse{
		Exists:        true,
		CorrelationID: "corr-123",
		ClientName:    "John Doe",
		TransactionID: "123",
		Reconciled:    true,
	}

	status, out := h.send(t, http.MethodPost, "/paybill/validation", ValidationContext{
		ClientAccountNumber: "12345",
		Msisdn:              "254712345149",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Account exists", out.Message)
	assert.Equal(t, "corr-123", out.OafTransactionReference)
	assert.Equal(t, "John Doe", out.ClientName)

	id, bound, err := h.store.LookupBinding(context.Background(), "corr-123")
	require.NoError(t, err)
	assert.True(t, bound)
	assert.Equal(t, "123", id)
}

func TestController_ValidationAccountNotAllowed(t *testing.T) {
	h := newTestHarness()
	h.channel.resp = &AccountStatusResponse{Exists: false}

	status, out := h.send(t, http.MethodPost, "/paybill/validation", ValidationContext{
		ClientAccountNumber: "12345",
		Msisdn:              "254712345149",
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Account does not exists or payment not allowed", out.Message)
}

func TestController_ValidationMissingMsisdn(t *testing.T) {
	h := newTestHarness()

	status, out := h.send(t, http.MethodPost, "/paybill/validation", ValidationContext{
		ClientAccountNumber: "12345",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "MSISDN is required for PayBill validation", out.Message)
}

func TestController_CallbackSuccessJournalsFinalState(t *testing.T) {
	h := newTestHarness()

	status, out := h.send(t, http.MethodPost, "/paybill/callback/success", TransferStatusResponse{
		TransferState: TransferStateCommitted,
		TransferID:    "transfer-123",
		TransactionID: "txn-123",
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Payment successful", out.Message)

	entry, err := h.journal.FindByTransactionID(context.Background(), "txn-123")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, TransferStateCommitted, entry.State)
	assert.Equal(t, "transfer-123", entry.TransferID)
}

func TestController_CallbackFailureJournalsAborted(t *testing.T) {
	h := newTestHarness()

	status, out := h.send(t, http.MethodPost, "/paybill/callback/failure", TransferStatusResponse{
		TransactionID: "txn-123",
	})

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Transaction not found", out.Message)

	entry, err := h.journal.FindByTransactionID(context.Background(), "txn-123")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, TransferStateAborted, entry.State)
}
