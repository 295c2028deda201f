package api

import "context"

// GetUserData retrieves the account data, including the balance.
func (c *Client) GetUserData(ctx context.Context) (*UserDataResponse, error) {
	var result UserDataResponse
	if err := c.call(ctx, c.queryRequest(OpUserData, c.endpoints.UserData, nil), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
