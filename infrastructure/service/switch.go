package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"paybill-connector/domain/paybill"
)

const switchRequestTimeout = 10 * time.Second

// SwitchClient queries the payment switch for the transfer bound to a
// transaction id. A 404 or empty body means no prior transfer exists.
type SwitchClient struct {
	baseURL    string
	tenantID   string
	httpClient *http.Client
}

func NewSwitchClient(baseURL, tenantID string) *SwitchClient {
	return &SwitchClient{
		baseURL:    baseURL,
		tenantID:   tenantID,
		httpClient: &http.Client{Timeout: switchRequestTimeout},
	}
}

func (c *SwitchClient) QueryTransferStatus(ctx context.Context, transactionID string) ([]byte, error) {
	url := fmt.Sprintf("%s/transfers/%s", c.baseURL, transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerTenantID, c.tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &paybill.ServiceUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &paybill.ServiceUnavailableError{
			Err: fmt.Errorf("transfer status service returned %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &paybill.ServiceUnavailableError{Err: err}
	}
	return body, nil
}
