package paybill

// Response is the customer-facing envelope returned on every PayBill
// route. ReceiptNumber is a pointer so the pay acknowledgement can carry
// an empty-but-present receipt_number while not-found responses omit the
// key entirely.
type Response struct {
	Status                  int     `json:"status"`
	Message                 string  `json:"message"`
	ReceiptNumber           *string `json:"receipt_number,omitempty"`
	TransID                 string  `json:"trans_id,omitempty"`
	ClientName              string  `json:"clientName,omitempty"`
	OafTransactionReference string  `json:"oafTransactionReference,omitempty"`
}
