package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"paybill-connector/domain/paybill"
)

const (
	accountStatusPath = "/api/v1/accounts/status"

	headerCorrelationID = "X-Correlation-ID"
	headerTenantID      = "X-Tenant-Id"
	headerAmsName       = "X-Ams-Name"

	channelRequestTimeout = 10 * time.Second
)

// ChannelClient performs the identity check against the merchant's
// account-management backend. The base URL comes with each request since
// it is resolved per business short code.
type ChannelClient struct {
	httpClient *http.Client
}

func NewChannelClient() *ChannelClient {
	return &ChannelClient{httpClient: &http.Client{Timeout: channelRequestTimeout}}
}

func (c *ChannelClient) CheckAccountStatus(
	ctx context.Context, req *paybill.AccountStatusRequest,
) (*paybill.AccountStatusResponse, error) {
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, req.BaseURL+accountStatusPath, bytes.NewReader(body),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", req.ContentType)
	httpReq.Header.Set(headerTenantID, req.AccountHoldingInstitutionID)
	httpReq.Header.Set(headerAmsName, req.AmsName)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &paybill.ServiceUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &paybill.ServiceUnavailableError{
			Err: fmt.Errorf("account status service returned %d", resp.StatusCode),
		}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &paybill.AccountStatusResponse{Exists: false}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &paybill.ServiceUnavailableError{Err: err}
	}

	var dto accountStatusDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, &paybill.ParseError{Err: err}
	}

	correlationID := resp.Header.Get(headerCorrelationID)
	if correlationID == "" {
		correlationID = dto.TransactionID
	}

	return &paybill.AccountStatusResponse{
		Exists:        true,
		CorrelationID: correlationID,
		ClientName:    dto.ClientName,
		TransactionID: dto.TransactionID,
		Reconciled:    dto.Reconciled,
	}, nil
}
