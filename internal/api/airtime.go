package api

import (
	"context"
	"net/url"
)

// AirtimeRecipient is one top-up. Amount carries the currency, e.g. "KES 100".
type AirtimeRecipient struct {
	PhoneNumber string `json:"phoneNumber"`
	Amount      string `json:"amount" jsonschema:"example=KES 100"`
}

// SendAirtime tops up one or more phone numbers. The provider reports
// per-recipient outcomes; an empty list is returned as a GatewayError with the
// provider's errorMessage.
func (c *Client) SendAirtime(ctx context.Context, recipients []AirtimeRecipient) ([]AirtimeResponse, error) {
	encoded, err := jsonField("recipients", recipients)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("recipients", encoded)

	var result []AirtimeResponse
	if err := c.call(ctx, c.formRequest(OpSendAirtime, c.endpoints.Airtime, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}
