package service

// accountStatusDTO is the wire shape of the account-management backend's
// validation answer.
type accountStatusDTO struct {
	TransactionID string `json:"transactionId"`
	ClientName    string `json:"clientName"`
	Reconciled    bool   `json:"reconciled"`
}
