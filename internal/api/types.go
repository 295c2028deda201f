package api

// UserDataResponse is the body returned by the user data endpoint.
type UserDataResponse struct {
	UserData UserData `json:"UserData"`
}

// UserData describes the account.
type UserData struct {
	Balance string `json:"balance"`
}

// SMSResponse is the body returned when sending a message.
type SMSResponse struct {
	SMSMessageData SMSMessageData `json:"SMSMessageData"`
}

// SMSMessageData summarises a send request.
type SMSMessageData struct {
	Message    string         `json:"Message"`
	Recipients []SMSRecipient `json:"Recipients"`
}

// SMSRecipient is the per-number outcome of a send request.
type SMSRecipient struct {
	StatusCode int    `json:"statusCode"`
	Number     string `json:"number"`
	Status     string `json:"status"`
	Cost       string `json:"cost"`
	MessageID  string `json:"messageId"`
}

// InboxResponse is the body returned when fetching messages.
type InboxResponse struct {
	SMSMessageData InboxData `json:"SMSMessageData"`
}

// InboxData holds a page of inbound messages.
type InboxData struct {
	Messages []InboundMessage `json:"Messages"`
}

// InboundMessage is a message received on one of the account's numbers.
type InboundMessage struct {
	ID     int64  `json:"id"`
	LinkID string `json:"linkId,omitempty"`
	Text   string `json:"text"`
	To     string `json:"to"`
	From   string `json:"from"`
	Date   string `json:"date"`
}

// LastID returns the highest message id in the page, or 0.
func (d InboxData) LastID() int64 {
	var last int64
	for _, m := range d.Messages {
		if m.ID > last {
			last = m.ID
		}
	}
	return last
}

// SubscriptionResult is the body returned by subscription create and delete.
type SubscriptionResult struct {
	Status      string `json:"status"`
	Description string `json:"description"`
}

// Subscription is one premium SMS subscriber.
type Subscription struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phoneNumber"`
	Date        string `json:"date"`
}

// AirtimeResponse is one entry of the airtime send payload.
type AirtimeResponse struct {
	PhoneNumber  string `json:"phoneNumber"`
	Amount       string `json:"amount"`
	Discount     string `json:"discount"`
	Status       string `json:"status"`
	RequestID    string `json:"requestId"`
	ErrorMessage string `json:"errorMessage"`
}

// CallEntry is the per-number outcome of a call request.
type CallEntry struct {
	PhoneNumber string `json:"phoneNumber"`
	Status      string `json:"status"`
	SessionID   string `json:"sessionId,omitempty"`
}

// QueuedCalls reports the calls waiting in one queue.
type QueuedCalls struct {
	PhoneNumber string `json:"phoneNumber"`
	QueueName   string `json:"queueName"`
	NumCalls    int    `json:"numCalls"`
}

// MediaUploadResponse is the body returned by the media upload endpoint.
type MediaUploadResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// PaymentEntry is the per-recipient outcome of a checkout or B2C request.
type PaymentEntry struct {
	PhoneNumber     string `json:"phoneNumber"`
	Status          string `json:"status"`
	Provider        string `json:"provider,omitempty"`
	ProviderChannel string `json:"providerChannel,omitempty"`
	Value           string `json:"value,omitempty"`
	TransactionID   string `json:"transactionId,omitempty"`
	TransactionFee  string `json:"transactionFee,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}

// B2BResponse is the body returned by a business-to-business payment.
type B2BResponse struct {
	Status          string `json:"status"`
	TransactionID   string `json:"transactionId,omitempty"`
	TransactionFee  string `json:"transactionFee,omitempty"`
	ProviderChannel string `json:"providerChannel,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
}
