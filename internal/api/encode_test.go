package api

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func formKeys(v url.Values) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestSMSMessage_RequiredFieldsOnly(t *testing.T) {
	c := New("alice", "key", Sandbox)
	enc, err := c.encode(c.formRequest(OpSendMessage, c.endpoints.Messaging, SMSMessage{To: "+254711000000", Message: "hi"}.params()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, err := url.ParseQuery(string(enc.Body))
	if err != nil {
		t.Fatalf("parse body: %v", err)
	}
	got := strings.Join(formKeys(values), ",")
	if got != "bulkSMSMode,message,to,username" {
		t.Errorf("keys = %s", got)
	}
	if values.Get("bulkSMSMode") != "1" {
		t.Errorf("bulkSMSMode = %q, want 1", values.Get("bulkSMSMode"))
	}
	if enc.ContentType != contentTypeForm {
		t.Errorf("content type = %q", enc.ContentType)
	}
}

func TestSMSMessage_EachOptionalAddsOneKey(t *testing.T) {
	base := SMSMessage{To: "+254711000000", Message: "hi"}
	tests := []struct {
		name  string
		apply func(*SMSMessage)
		key   string
		value string
	}{
		{"from", func(m *SMSMessage) { m.From = strPtr("ACME") }, "from", "ACME"},
		{"enqueue", func(m *SMSMessage) { m.Enqueue = intPtr(1) }, "enqueue", "1"},
		{"keyword", func(m *SMSMessage) { m.Keyword = strPtr("promo") }, "keyword", "promo"},
		{"linkId", func(m *SMSMessage) { m.LinkID = strPtr("link-1") }, "linkId", "link-1"},
		{"retryDurationInHours", func(m *SMSMessage) { m.RetryDurationInHours = intPtr(3) }, "retryDurationInHours", "3"},
		{"empty from is still sent", func(m *SMSMessage) { m.From = strPtr("") }, "from", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := base
			tt.apply(&msg)
			params := msg.params()
			if len(params) != 4 {
				t.Errorf("expected 4 message keys, got %v", formKeys(params))
			}
			if _, ok := params[tt.key]; !ok {
				t.Fatalf("key %s missing", tt.key)
			}
			if params.Get(tt.key) != tt.value {
				t.Errorf("%s = %q, want %q", tt.key, params.Get(tt.key), tt.value)
			}
		})
	}
}

func TestSMSMessage_BulkModeOverride(t *testing.T) {
	params := SMSMessage{To: "x", Message: "y", BulkSMSMode: intPtr(0)}.params()
	if params.Get("bulkSMSMode") != "0" {
		t.Errorf("bulkSMSMode = %q, want 0", params.Get("bulkSMSMode"))
	}
}

func TestEncode_UsernameCannotBeOverridden(t *testing.T) {
	c := New("alice", "key", Production)
	params := url.Values{}
	params.Set("username", "mallory")
	enc, err := c.encode(c.formRequest(OpCall, c.endpoints.VoiceCall, params))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, _ := url.ParseQuery(string(enc.Body))
	if got := values["username"]; len(got) != 1 || got[0] != "alice" {
		t.Errorf("username = %v, want [alice]", got)
	}

	body := map[string]any{"username": "mallory"}
	enc, err = c.encode(c.jsonRequest(OpCreateSubscription, c.endpoints.SubscriptionCreate, body))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(enc.Body, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc["username"] != "alice" {
		t.Errorf("json username = %v", doc["username"])
	}
}

func TestEncode_Headers(t *testing.T) {
	c := New("alice", "secret-key", Sandbox, WithUserAgent("atctl/test"))
	enc, err := c.encode(c.queryRequest(OpUserData, c.endpoints.UserData, nil))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc.Header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", enc.Header.Get("Accept"))
	}
	if enc.Header.Get("apiKey") != "secret-key" {
		t.Errorf("apiKey = %q", enc.Header.Get("apiKey"))
	}
	if enc.Header.Get("User-Agent") != "atctl/test" {
		t.Errorf("User-Agent = %q", enc.Header.Get("User-Agent"))
	}
	if enc.Header.Get("Content-Type") != "" || enc.Body != nil {
		t.Error("GET request must not carry a body")
	}
	if enc.URL != "https://api.sandbox.africastalking.com/version1/user?username=alice" {
		t.Errorf("URL = %q", enc.URL)
	}
}

func TestEncode_NestedValuesAreJSONStrings(t *testing.T) {
	c := New("alice", "key", Sandbox)
	encoded, err := jsonField("recipients", []AirtimeRecipient{{PhoneNumber: "+254711000000", Amount: "KES 100"}})
	if err != nil {
		t.Fatalf("jsonField: %v", err)
	}
	params := url.Values{}
	params.Set("recipients", encoded)
	enc, err := c.encode(c.formRequest(OpSendAirtime, c.endpoints.Airtime, params))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	values, _ := url.ParseQuery(string(enc.Body))
	want := `[{"phoneNumber":"+254711000000","amount":"KES 100"}]`
	if values.Get("recipients") != want {
		t.Errorf("recipients = %s, want %s", values.Get("recipients"), want)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := map[float64]string{100: "100", 5000.1: "5000.1", 0.5: "0.5"}
	for in, want := range tests {
		if got := formatAmount(in); got != want {
			t.Errorf("formatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
