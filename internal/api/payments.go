package api

import (
	"context"
	"fmt"
	"net/url"
)

// MaxB2CRecipients is the largest recipient list a B2C request accepts.
const MaxB2CRecipients = 10

// CheckoutRequest charges a subscriber's mobile wallet.
type CheckoutRequest struct {
	ProductName     string            `json:"productName"`
	PhoneNumber     string            `json:"phoneNumber"`
	CurrencyCode    string            `json:"currencyCode" jsonschema:"example=KES"`
	Amount          float64           `json:"amount"`
	ProviderChannel string            `json:"providerChannel,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// B2BProviderData names the receiving business. All fields are required.
type B2BProviderData struct {
	Provider           string `json:"provider" jsonschema:"example=Mpesa"`
	DestinationChannel string `json:"destinationChannel"`
	DestinationAccount string `json:"destinationAccount"`
	TransferType       string `json:"transferType" jsonschema:"example=BusinessBuyGoods"`
}

// Validate reports the first missing field.
func (p B2BProviderData) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"provider", p.Provider},
		{"destinationChannel", p.DestinationChannel},
		{"destinationAccount", p.DestinationAccount},
		{"transferType", p.TransferType},
	} {
		if f.value == "" {
			return missingField(f.name)
		}
	}
	return nil
}

// B2BRequest pays another business through its provider channel.
type B2BRequest struct {
	ProductName  string            `json:"productName"`
	ProviderData B2BProviderData   `json:"providerData"`
	CurrencyCode string            `json:"currencyCode"`
	Amount       float64           `json:"amount"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// B2CRecipient is one mobile subscriber paid by a B2C request.
type B2CRecipient struct {
	Name         string            `json:"name"`
	PhoneNumber  string            `json:"phoneNumber"`
	CurrencyCode string            `json:"currencyCode"`
	Amount       float64           `json:"amount"`
	Reason       string            `json:"reason,omitempty" jsonschema:"example=SalaryPayment"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// B2CRequest pays up to MaxB2CRecipients subscribers.
type B2CRequest struct {
	ProductName string         `json:"productName"`
	Recipients  []B2CRecipient `json:"recipients" jsonschema:"maxItems=10"`
}

func metadataField(m map[string]string) (string, error) {
	if m == nil {
		m = map[string]string{}
	}
	return jsonField("metadata", m)
}

// InitMobilePaymentCheckout starts a checkout on the subscriber's phone.
func (c *Client) InitMobilePaymentCheckout(ctx context.Context, req CheckoutRequest) ([]PaymentEntry, error) {
	metadata, err := metadataField(req.Metadata)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("productName", req.ProductName)
	params.Set("phoneNumber", req.PhoneNumber)
	params.Set("currencyCode", req.CurrencyCode)
	params.Set("amount", formatAmount(req.Amount))
	if req.ProviderChannel != "" {
		params.Set("providerChannel", req.ProviderChannel)
	}
	params.Set("metadata", metadata)

	var result []PaymentEntry
	if err := c.call(ctx, c.formRequest(OpCheckout, c.endpoints.Checkout, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// MobilePaymentB2BRequest pays a business. Provider data is checked before
// anything is sent.
func (c *Client) MobilePaymentB2BRequest(ctx context.Context, req B2BRequest) (*B2BResponse, error) {
	if err := req.ProviderData.Validate(); err != nil {
		return nil, err
	}
	metadata, err := metadataField(req.Metadata)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("productName", req.ProductName)
	params.Set("provider", req.ProviderData.Provider)
	params.Set("destinationChannel", req.ProviderData.DestinationChannel)
	params.Set("destinationAccount", req.ProviderData.DestinationAccount)
	params.Set("transferType", req.ProviderData.TransferType)
	params.Set("currencyCode", req.CurrencyCode)
	params.Set("amount", formatAmount(req.Amount))
	params.Set("metadata", metadata)

	var result B2BResponse
	if err := c.call(ctx, c.formRequest(OpB2B, c.endpoints.B2B, params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MobilePaymentB2CRequest pays mobile subscribers. More than
// MaxB2CRecipients recipients is rejected before anything is sent.
func (c *Client) MobilePaymentB2CRequest(ctx context.Context, req B2CRequest) ([]PaymentEntry, error) {
	if n := len(req.Recipients); n > MaxB2CRecipients {
		return nil, &ValidationError{
			Field:   "recipients",
			Message: fmt.Sprintf("%d recipients given, at most %d allowed", n, MaxB2CRecipients),
		}
	}
	recipients := req.Recipients
	if recipients == nil {
		recipients = []B2CRecipient{}
	}
	encoded, err := jsonField("recipients", recipients)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("productName", req.ProductName)
	params.Set("recipients", encoded)

	var result []PaymentEntry
	if err := c.call(ctx, c.formRequest(OpB2C, c.endpoints.B2C, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}
