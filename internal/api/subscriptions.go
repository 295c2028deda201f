package api

import (
	"context"
	"net/url"
	"strconv"
)

// SubscriptionRequest identifies a subscriber on a short code and keyword.
type SubscriptionRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	ShortCode   string `json:"shortCode"`
	Keyword     string `json:"keyword"`
}

func (s SubscriptionRequest) body() map[string]any {
	return map[string]any{
		"phoneNumber": s.PhoneNumber,
		"shortCode":   s.ShortCode,
		"keyword":     s.Keyword,
	}
}

// CreateSubscription subscribes a phone number to a premium SMS product.
func (c *Client) CreateSubscription(ctx context.Context, sub SubscriptionRequest) (*SubscriptionResult, error) {
	var result SubscriptionResult
	if err := c.call(ctx, c.jsonRequest(OpCreateSubscription, c.endpoints.SubscriptionCreate, sub.body()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSubscription removes a phone number from a premium SMS product.
func (c *Client) DeleteSubscription(ctx context.Context, sub SubscriptionRequest) (*SubscriptionResult, error) {
	var result SubscriptionResult
	if err := c.call(ctx, c.jsonRequest(OpDeleteSubscription, c.endpoints.SubscriptionDelete, sub.body()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchSubscriptions lists subscribers of a short code and keyword whose id
// is greater than lastReceivedID.
func (c *Client) FetchSubscriptions(ctx context.Context, shortCode, keyword string, lastReceivedID int64) ([]Subscription, error) {
	params := url.Values{}
	params.Set("shortCode", shortCode)
	params.Set("keyword", keyword)
	params.Set("lastReceivedId", strconv.FormatInt(lastReceivedID, 10))

	var result []Subscription
	if err := c.call(ctx, c.queryRequest(OpFetchSubscriptions, c.endpoints.Subscription, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}
