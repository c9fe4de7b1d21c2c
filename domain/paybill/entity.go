package paybill

// TransferState is the lifecycle status of the underlying funds movement
// as reported by the payment switch. Owned by the workflow engine; this
// connector only reads it.
type TransferState string

const (
	TransferStateReceived  TransferState = "RECEIVED"
	TransferStateCommitted TransferState = "COMMITTED"
	TransferStateAborted   TransferState = "ABORTED"
)

// PayRequest is the inbound submit-payment body. The OafValidationRef is
// the reference returned by the earlier validation phase and links the
// two phases of one logical payment.
type PayRequest struct {
	TransactionType   string `json:"transactionType,omitempty"`
	TransactionID     string `json:"transactionId"`
	OafValidationRef  string `json:"oafValidationRef"`
	Msisdn            string `json:"msisdn"`
	TransactionAmount string `json:"transactionAmount"`
	AccountNumber     string `json:"accountNumber"`
	ShortCode         string `json:"shortCode,omitempty"`
}

// ValidationContext is the inbound validate-account context bag.
type ValidationContext struct {
	ClientAccountNumber     string `json:"accountNumber"`
	Msisdn                  string `json:"msisdn"`
	Currency                string `json:"currency,omitempty"`
	BusinessShortCode       string `json:"businessShortCode,omitempty"`
	SecondaryIdentifierName string `json:"secondaryIdentifierName,omitempty"`
	GetAccountDetails       *bool  `json:"getAccountDetails,omitempty"`
}

type IdentifierPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CustomAttribute struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// ValidationRequest is the outbound identity-check payload sent to the
// account-management backend.
type ValidationRequest struct {
	PrimaryIdentifier   IdentifierPair    `json:"primaryIdentifier"`
	SecondaryIdentifier *IdentifierPair   `json:"secondaryIdentifier,omitempty"`
	CustomData          []CustomAttribute `json:"customData"`
}

// AccountStatusRequest is a built validation request plus the routing
// attributes resolved for the merchant's backend.
type AccountStatusRequest struct {
	Body                        ValidationRequest
	AmsName                     string
	BaseURL                     string
	AccountHoldingInstitutionID string
	TransactionID               string
	Currency                    string
	ContentType                 string
}

// AccountStatusResponse is the account-management backend's answer to a
// validation request.
type AccountStatusResponse struct {
	Exists        bool
	CorrelationID string
	ClientName    string
	TransactionID string
	Reconciled    bool
}

// TransferStatusResponse is the payment switch's transfer-status payload.
type TransferStatusResponse struct {
	TransferState TransferState `json:"transferState"`
	TransferID    string        `json:"transferId,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	ClientRefID   string        `json:"clientRefId,omitempty"`
}
