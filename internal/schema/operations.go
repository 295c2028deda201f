package schema

import "github.com/africastalking/atctl/internal/api"

// Parameter types for operations whose client methods take plain arguments.

type userDataParams struct{}

type fetchMessagesParams struct {
	LastReceivedID int64 `json:"lastReceivedId" jsonschema_description:"Return messages with a greater id; 0 on the first call"`
}

type fetchSubscriptionsParams struct {
	ShortCode      string `json:"shortCode"`
	Keyword        string `json:"keyword"`
	LastReceivedID int64  `json:"lastReceivedId"`
}

type airtimeParams struct {
	Recipients []api.AirtimeRecipient `json:"recipients" jsonschema:"minItems=1"`
}

type callParams struct {
	From string `json:"from" jsonschema_description:"One of the account's voice numbers"`
	To   string `json:"to" jsonschema_description:"Comma separated numbers to call"`
}

type queueStatusParams struct {
	PhoneNumbers string  `json:"phoneNumbers"`
	QueueName    *string `json:"queueName,omitempty"`
}

type mediaUploadParams struct {
	URL string `json:"url" jsonschema:"format=uri"`
}

func init() {
	registerAll()
}

func registerAll() {
	Register(string(api.OpUserData), "Get account data including the balance", userDataParams{})
	Register(string(api.OpSendMessage), "Send an SMS to one or more numbers", api.SMSMessage{})
	Register(string(api.OpFetchMessages), "Fetch inbound messages after an id", fetchMessagesParams{})
	Register(string(api.OpCreateSubscription), "Subscribe a number to a premium product", api.SubscriptionRequest{})
	Register(string(api.OpDeleteSubscription), "Unsubscribe a number from a premium product", api.SubscriptionRequest{})
	Register(string(api.OpFetchSubscriptions), "List subscribers after an id", fetchSubscriptionsParams{})
	Register(string(api.OpSendAirtime), "Send airtime to one or more numbers", airtimeParams{})
	Register(string(api.OpCall), "Place a voice call", callParams{})
	Register(string(api.OpQueueStatus), "Report queued calls", queueStatusParams{})
	Register(string(api.OpMediaUpload), "Register a media file for calls", mediaUploadParams{})
	Register(string(api.OpCheckout), "Start a mobile checkout", api.CheckoutRequest{})
	Register(string(api.OpB2B), "Pay a business", api.B2BRequest{})
	Register(string(api.OpB2C), "Pay up to 10 mobile subscribers", api.B2CRequest{})
}
