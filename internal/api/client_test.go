package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

type capturedRequest struct {
	method       string
	path         string
	originalHost string
	query        url.Values
	header       http.Header
	body         string
}

func captureHandler(t *testing.T, status int, response string, got *capturedRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = capturedRequest{
			method:       r.Method,
			path:         r.URL.Path,
			originalHost: r.Header.Get("X-Original-Host"),
			query:        r.URL.Query(),
			header:       r.Header.Clone(),
			body:         string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}
}

func TestGetUserData(t *testing.T) {
	var got capturedRequest
	client := newServerClient(t, captureHandler(t, http.StatusOK, `{"UserData":{"balance":"KES 1785.50"}}`, &got))

	result, err := client.GetUserData(context.Background())
	if err != nil {
		t.Fatalf("GetUserData: %v", err)
	}
	if result.UserData.Balance != "KES 1785.50" {
		t.Errorf("balance = %q", result.UserData.Balance)
	}
	if got.method != http.MethodGet || got.path != "/version1/user" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if got.originalHost != "api.sandbox.africastalking.com" {
		t.Errorf("host = %q", got.originalHost)
	}
	if got.query.Get("username") != "sandbox-user" {
		t.Errorf("username = %q", got.query.Get("username"))
	}
	if got.header.Get("apiKey") != "test-key" || got.header.Get("Accept") != "application/json" {
		t.Errorf("headers = %v", got.header)
	}
}

func TestSendMessage(t *testing.T) {
	var got capturedRequest
	response := `{"SMSMessageData":{"Message":"Sent to 1/1 Total Cost: KES 0.8000","Recipients":[{"statusCode":101,"number":"+254711XXXYYY","status":"Success","cost":"KES 0.8000","messageId":"ATPid_1"}]}}`
	client := newServerClient(t, captureHandler(t, http.StatusCreated, response, &got))

	result, err := client.SendMessage(context.Background(), SMSMessage{To: "+254711XXXYYY", Message: "hello", From: strPtr("ACME")})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(result.SMSMessageData.Recipients) != 1 || result.SMSMessageData.Recipients[0].MessageID != "ATPid_1" {
		t.Errorf("recipients = %+v", result.SMSMessageData.Recipients)
	}
	if got.method != http.MethodPost || got.path != "/version1/messaging" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	if ct := got.header.Get("Content-Type"); ct != contentTypeForm {
		t.Errorf("content type = %q", ct)
	}
	form, _ := url.ParseQuery(got.body)
	if form.Get("username") != "sandbox-user" || form.Get("from") != "ACME" || form.Get("bulkSMSMode") != "1" {
		t.Errorf("form = %v", form)
	}
}

func TestSendMessage_ErrorStatusStillReturnsBody(t *testing.T) {
	client, _ := newStubClient(http.StatusBadRequest, `{"SMSMessageData":{"Message":"InvalidSenderId","Recipients":[]}}`)

	result, err := client.SendMessage(context.Background(), SMSMessage{To: "+254711000000", Message: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if result.SMSMessageData.Message != "InvalidSenderId" {
		t.Errorf("message = %q", result.SMSMessageData.Message)
	}
}

func TestFetchMessages(t *testing.T) {
	var got capturedRequest
	response := `{"SMSMessageData":{"Messages":[{"id":7,"text":"hi","from":"+254711000000","to":"12345","date":"2024-01-01"},{"id":9,"text":"yo"}]}}`
	client := newServerClient(t, captureHandler(t, http.StatusOK, response, &got))

	result, err := client.FetchMessages(context.Background(), 5)
	if err != nil {
		t.Fatalf("FetchMessages: %v", err)
	}
	if got.method != http.MethodGet || got.query.Get("lastReceivedId") != "5" {
		t.Errorf("request = %s %v", got.method, got.query)
	}
	if result.SMSMessageData.LastID() != 9 {
		t.Errorf("LastID = %d", result.SMSMessageData.LastID())
	}
}

func TestSubscriptions(t *testing.T) {
	var got capturedRequest
	client := newServerClient(t, captureHandler(t, http.StatusCreated, `{"status":"Success","description":"Waiting for user input"}`, &got))

	sub := SubscriptionRequest{PhoneNumber: "+254711000000", ShortCode: "12345", Keyword: "news"}
	result, err := client.CreateSubscription(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if result.Status != "Success" {
		t.Errorf("status = %q", result.Status)
	}
	if got.path != "/version1/subscription/create" || got.header.Get("Content-Type") != contentTypeJSON {
		t.Errorf("request = %s %s", got.path, got.header.Get("Content-Type"))
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["username"] != "sandbox-user" || body["shortCode"] != "12345" || body["keyword"] != "news" {
		t.Errorf("body = %v", body)
	}

	if _, err := client.DeleteSubscription(context.Background(), sub); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if got.path != "/version1/subscription/delete" {
		t.Errorf("delete path = %s", got.path)
	}
}

func TestFetchSubscriptions(t *testing.T) {
	var got capturedRequest
	client := newServerClient(t, captureHandler(t, http.StatusOK, `{"responses":[{"id":3,"phoneNumber":"+254711000000","date":"2024-01-01"}]}`, &got))

	subs, err := client.FetchSubscriptions(context.Background(), "12345", "news", 0)
	if err != nil {
		t.Fatalf("FetchSubscriptions: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != 3 {
		t.Errorf("subs = %+v", subs)
	}
	if got.method != http.MethodGet || got.path != "/version1/subscription" {
		t.Errorf("request = %s %s", got.method, got.path)
	}
	for key, want := range map[string]string{"shortCode": "12345", "keyword": "news", "lastReceivedId": "0", "username": "sandbox-user"} {
		if got.query.Get(key) != want {
			t.Errorf("%s = %q, want %q", key, got.query.Get(key), want)
		}
	}
}

func TestSendAirtime(t *testing.T) {
	client, doer := newStubClient(http.StatusCreated, `{"responses":[{"phoneNumber":"+254711000000","amount":"KES 100.0000","status":"Sent","requestId":"ATQid_1"}]}`)

	result, err := client.SendAirtime(context.Background(), []AirtimeRecipient{{PhoneNumber: "+254711000000", Amount: "KES 100"}})
	if err != nil {
		t.Fatalf("SendAirtime: %v", err)
	}
	if len(result) != 1 || result[0].RequestID != "ATQid_1" {
		t.Errorf("result = %+v", result)
	}
	form := doer.lastForm(t)
	if form.Get("recipients") != `[{"phoneNumber":"+254711000000","amount":"KES 100"}]` {
		t.Errorf("recipients = %s", form.Get("recipients"))
	}
}

func TestSendAirtime_InsufficientBalance(t *testing.T) {
	client, _ := newStubClient(http.StatusCreated, `{"responses":[],"errorMessage":"InsufficientBalance"}`)

	_, err := client.SendAirtime(context.Background(), []AirtimeRecipient{{PhoneNumber: "+254711000000", Amount: "KES 100"}})
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if gwErr.Error() != "InsufficientBalance" {
		t.Errorf("error = %q", gwErr.Error())
	}
}

func TestVoice(t *testing.T) {
	var got capturedRequest
	client := newServerClient(t, captureHandler(t, http.StatusOK, `{"errorMessage":"None","entries":[{"phoneNumber":"+254711000000","status":"Queued"}]}`, &got))

	entries, err := client.Call(context.Background(), "+254700000000", "+254711000000")
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "Queued" {
		t.Errorf("entries = %+v", entries)
	}
	if got.originalHost != "voice.sandbox.africastalking.com" || got.path != "/call" {
		t.Errorf("request = %s%s", got.originalHost, got.path)
	}
	form, _ := url.ParseQuery(got.body)
	if form.Get("from") != "+254700000000" || form.Get("to") != "+254711000000" {
		t.Errorf("form = %v", form)
	}
}

func TestGetQueuedCalls_OptionalQueueName(t *testing.T) {
	client, doer := newStubClient(http.StatusOK, `{"errorMessage":"None","entries":[{"phoneNumber":"+254700000000","queueName":"support","numCalls":2}]}`)

	queued, err := client.GetQueuedCalls(context.Background(), "+254700000000", nil)
	if err != nil {
		t.Fatalf("GetQueuedCalls: %v", err)
	}
	if len(queued) != 1 || queued[0].NumCalls != 2 {
		t.Errorf("queued = %+v", queued)
	}
	if _, ok := doer.lastForm(t)["queueName"]; ok {
		t.Error("queueName sent although nil")
	}

	if _, err := client.GetQueuedCalls(context.Background(), "+254700000000", strPtr("support")); err != nil {
		t.Fatalf("GetQueuedCalls: %v", err)
	}
	if doer.lastForm(t).Get("queueName") != "support" {
		t.Error("queueName not sent")
	}
}

func TestUploadMediaFile_Failure(t *testing.T) {
	client, _ := newStubClient(http.StatusOK, `{"errorMessage":"Invalid URL"}`)

	_, err := client.UploadMediaFile(context.Background(), "https://example.com/a.mp3")
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Message != "Invalid URL" {
		t.Fatalf("expected GatewayError(Invalid URL), got %v", err)
	}
}

func TestInitMobilePaymentCheckout(t *testing.T) {
	var got capturedRequest
	client := newServerClient(t, captureHandler(t, http.StatusCreated, `{"entries":[{"phoneNumber":"+254711000000","status":"PendingConfirmation","transactionId":"ATPid_9"}]}`, &got))

	entries, err := client.InitMobilePaymentCheckout(context.Background(), CheckoutRequest{
		ProductName:  "shop",
		PhoneNumber:  "+254711000000",
		CurrencyCode: "KES",
		Amount:       250.5,
		Metadata:     map[string]string{"order": "42"},
	})
	if err != nil {
		t.Fatalf("InitMobilePaymentCheckout: %v", err)
	}
	if len(entries) != 1 || entries[0].TransactionID != "ATPid_9" {
		t.Errorf("entries = %+v", entries)
	}
	if got.originalHost != "payments.sandbox.africastalking.com" || got.path != "/mobile/checkout/request" {
		t.Errorf("request = %s%s", got.originalHost, got.path)
	}
	form, _ := url.ParseQuery(got.body)
	if form.Get("amount") != "250.5" || form.Get("metadata") != `{"order":"42"}` {
		t.Errorf("form = %v", form)
	}
}

func TestB2B_MissingProviderDataSendsNothing(t *testing.T) {
	complete := B2BProviderData{
		Provider:           "Mpesa",
		DestinationChannel: "mychannel",
		DestinationAccount: "acct",
		TransferType:       "BusinessBuyGoods",
	}
	tests := []struct {
		field string
		clear func(*B2BProviderData)
	}{
		{"provider", func(p *B2BProviderData) { p.Provider = "" }},
		{"destinationChannel", func(p *B2BProviderData) { p.DestinationChannel = "" }},
		{"destinationAccount", func(p *B2BProviderData) { p.DestinationAccount = "" }},
		{"transferType", func(p *B2BProviderData) { p.TransferType = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			client, doer := newStubClient(http.StatusCreated, `{"status":"Queued"}`)
			data := complete
			tt.clear(&data)

			_, err := client.MobilePaymentB2BRequest(context.Background(), B2BRequest{ProductName: "p", ProviderData: data, CurrencyCode: "KES", Amount: 10})
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field || !strings.Contains(vErr.Error(), "missing field "+tt.field) {
				t.Errorf("error = %v", vErr)
			}
			if doer.calls() != 0 {
				t.Errorf("transport invoked %d times", doer.calls())
			}
		})
	}
}

func TestB2B_UnexpectedStatusCarriesRawBody(t *testing.T) {
	client, doer := newStubClient(http.StatusBadRequest, `Invalid destination account`)
	_, err := client.MobilePaymentB2BRequest(context.Background(), B2BRequest{
		ProductName: "p",
		ProviderData: B2BProviderData{
			Provider:           "Athena",
			DestinationChannel: "c",
			DestinationAccount: "a",
			TransferType:       "BusinessPayBill",
		},
		CurrencyCode: "KES",
		Amount:       10,
	})
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		t.Fatalf("expected GatewayError, got %v", err)
	}
	if !strings.Contains(gwErr.Message, "400") || !strings.Contains(gwErr.Message, "Invalid destination account") {
		t.Errorf("message = %q", gwErr.Message)
	}
	form := doer.lastForm(t)
	if form.Get("provider") != "Athena" || form.Get("transferType") != "BusinessPayBill" || form.Get("metadata") != "{}" {
		t.Errorf("form = %v", form)
	}
}

func TestB2C_RecipientLimit(t *testing.T) {
	recipients := func(n int) []B2CRecipient {
		out := make([]B2CRecipient, n)
		for i := range out {
			out[i] = B2CRecipient{Name: "r", PhoneNumber: "+254711000000", CurrencyCode: "KES", Amount: 1}
		}
		return out
	}

	client, doer := newStubClient(http.StatusCreated, `{"entries":[{"status":"Queued"}]}`)
	_, err := client.MobilePaymentB2CRequest(context.Background(), B2CRequest{ProductName: "p", Recipients: recipients(11)})
	if !IsValidationError(err) {
		t.Fatalf("expected ValidationError for 11 recipients, got %v", err)
	}
	if doer.calls() != 0 {
		t.Fatalf("transport invoked %d times", doer.calls())
	}

	entries, err := client.MobilePaymentB2CRequest(context.Background(), B2CRequest{ProductName: "p", Recipients: recipients(10)})
	if err != nil {
		t.Fatalf("10 recipients: %v", err)
	}
	if len(entries) != 1 || doer.calls() != 1 {
		t.Errorf("entries = %+v, calls = %d", entries, doer.calls())
	}
	var sent []map[string]any
	if err := json.Unmarshal([]byte(doer.lastForm(t).Get("recipients")), &sent); err != nil || len(sent) != 10 {
		t.Errorf("recipients field = %v (%v)", sent, err)
	}
}

func TestCall_Idempotent(t *testing.T) {
	client, doer := newStubClient(http.StatusOK, `{"errorMessage":"None","entries":[{"phoneNumber":"+254711000000","status":"Queued"}]}`)

	first, err := client.Call(context.Background(), "+254700000000", "+254711000000")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := client.Call(context.Background(), "+254700000000", "+254711000000")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if doer.bodies[0] != doer.bodies[1] {
		t.Errorf("request bodies differ: %q vs %q", doer.bodies[0], doer.bodies[1])
	}
}

func TestNetworkError(t *testing.T) {
	doer := &stubDoer{err: errors.New("connection refused")}
	client := New("u", "k", Production, WithHTTPClient(doer))

	_, err := client.GetUserData(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Method != http.MethodGet || !strings.HasPrefix(netErr.URL, "https://api.africastalking.com/version1/user") {
		t.Errorf("error = %+v", netErr)
	}
}

func TestContextCancellation(t *testing.T) {
	client := newServerClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetUserData(ctx)
	if !IsNetworkError(err) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestParseError_Malformed(t *testing.T) {
	client, _ := newStubClient(http.StatusOK, `<html>oops</html>`)
	_, err := client.Call(context.Background(), "a", "b")
	if !IsParseError(err) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	c := New("u", "k", Sandbox, WithTimeout(5*time.Second))
	hc, ok := c.http.(*http.Client)
	if !ok || hc.Timeout != 5*time.Second {
		t.Errorf("timeout not applied: %+v", c.http)
	}
}
