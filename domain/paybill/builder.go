package paybill

import (
	"github.com/google/uuid"

	"paybill-connector/infrastructure/config"
)

const (
	fineractPrimaryIdentifierName = "fineractAccountID"
	rosterPrimaryIdentifierName   = "accountId"

	contentTypeJSON = "application/json"

	msisdnRequiredMessage = "MSISDN is required for PayBill validation"
)

// RequestBuilder produces the outbound account-status payload for the
// validation phase, resolving the merchant's backend from the registry.
type RequestBuilder struct {
	ams *config.AmsRegistry
}

func NewRequestBuilder(ams *config.AmsRegistry) *RequestBuilder {
	return &RequestBuilder{ams: ams}
}

// BuildAccountStatusRequest builds the identity-check request. The
// MSISDN precondition runs before anything else; no external call is
// made for a request that fails it. A fresh transaction id is generated
// per validation attempt.
func (b *RequestBuilder) BuildAccountStatusRequest(vc ValidationContext) (*AccountStatusRequest, error) {
	if vc.Msisdn == "" {
		return nil, &MissingFieldError{Field: "msisdn", Message: msisdnRequiredMessage}
	}

	shortCode := vc.BusinessShortCode
	if shortCode == "" {
		shortCode = b.ams.DefaultShortCode()
	}
	props := b.ams.ByShortCode(shortCode)

	currency := vc.Currency
	if currency == "" {
		currency = props.Currency
	}

	getAccountDetails := true
	if vc.GetAccountDetails != nil {
		getAccountDetails = *vc.GetAccountDetails
	}

	transactionID := uuid.NewString()

	body := ValidationRequest{
		PrimaryIdentifier: IdentifierPair{
			Key:   primaryIdentifierName(props.Ams),
			Value: vc.ClientAccountNumber,
		},
		CustomData: []CustomAttribute{
			{Key: "transactionId", Value: transactionID},
			{Key: "currency", Value: currency},
			{Key: "getAccountDetails", Value: getAccountDetails},
		},
	}
	if vc.SecondaryIdentifierName != "" {
		body.SecondaryIdentifier = &IdentifierPair{
			Key:   vc.SecondaryIdentifierName,
			Value: vc.Msisdn,
		}
	}

	return &AccountStatusRequest{
		Body:                        body,
		AmsName:                     props.Ams,
		BaseURL:                     props.BaseURL,
		AccountHoldingInstitutionID: b.ams.AccountHoldingInstitutionID(),
		TransactionID:               transactionID,
		Currency:                    currency,
		ContentType:                 contentTypeJSON,
	}, nil
}

func primaryIdentifierName(amsName string) string {
	switch amsName {
	case "roster":
		return rosterPrimaryIdentifierName
	case "fineract":
		return fineractPrimaryIdentifierName
	default:
		return amsName + "AccountID"
	}
}
