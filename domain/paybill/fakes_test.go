package paybill

import (
	"context"
	"sync"
	"time"

	"paybill-connector/infrastructure/config"
)

func testRegistry() *config.AmsRegistry {
	return config.NewAmsRegistry(
		[]config.AmsProperties{
			{Ams: "fineract", BusinessShortCode: "24322607", BaseURL: "http://fineract.test", Currency: "MWK"},
			{Ams: "roster", BusinessShortCode: "600638", BaseURL: "http://roster.test", Currency: "MWK"},
		},
		"24322607",
		"TEST_ID",
	)
}

type publishedMessage struct {
	name      string
	key       string
	ttl       time.Duration
	variables map[string]any
}

type fakeWorkflowClient struct {
	mu          sync.Mutex
	instanceID  string
	createErr   error
	publishErr  error
	createDelay time.Duration
	createCalls int
	createdVars map[string]any
	published   []publishedMessage
}

func (f *fakeWorkflowClient) CreateInstance(_ context.Context, _ string, variables map[string]any) (string, error) {
	f.mu.Lock()
	f.createCalls++
	f.createdVars = variables
	delay := f.createDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.instanceID, nil
}

func (f *fakeWorkflowClient) PublishMessage(
	_ context.Context, name, correlationKey string, ttl time.Duration, variables map[string]any,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishedMessage{
		name:      name,
		key:       correlationKey,
		ttl:       ttl,
		variables: variables,
	})
	return nil
}

func (f *fakeWorkflowClient) snapshot() (int, []publishedMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls, append([]publishedMessage(nil), f.published...)
}

type fakeTransferStatusQuerier struct {
	body []byte
	err  error
}

func (f *fakeTransferStatusQuerier) QueryTransferStatus(context.Context, string) ([]byte, error) {
	return f.body, f.err
}

type fakeAccountStatusClient struct {
	resp *AccountStatusResponse
	err  error
}

func (f *fakeAccountStatusClient) CheckAccountStatus(context.Context, *AccountStatusRequest) (*AccountStatusResponse, error) {
	return f.resp, f.err
}

type fakeJournal struct {
	mu      sync.Mutex
	entries []JournalEntry
	err     error
}

func (f *fakeJournal) Record(_ context.Context, entry JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) FindByTransactionID(_ context.Context, transactionID string) (*JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].TransactionID == transactionID {
			entry := f.entries[i]
			return &entry, nil
		}
	}
	return nil, nil
}
