package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operation identifies one logical provider operation.
type Operation string

const (
	OpUserData           Operation = "user.data"
	OpSendMessage        Operation = "sms.send"
	OpFetchMessages      Operation = "sms.fetch"
	OpCreateSubscription Operation = "subscription.create"
	OpDeleteSubscription Operation = "subscription.delete"
	OpFetchSubscriptions Operation = "subscription.fetch"
	OpSendAirtime        Operation = "airtime.send"
	OpCall               Operation = "voice.call"
	OpQueueStatus        Operation = "voice.queue_status"
	OpMediaUpload        Operation = "voice.media_upload"
	OpCheckout           Operation = "payments.checkout"
	OpB2B                Operation = "payments.b2b"
	OpB2C                Operation = "payments.b2c"
)

// voiceSuccessSentinel is the errorMessage value the voice API uses for
// "no error".
const voiceSuccessSentinel = "None"

// responseRule describes how one operation's response is classified.
type responseRule struct {
	// status is the only success status; 0 accepts any status.
	status int
	// payloadKey selects a top-level field as the payload; empty means the
	// whole body.
	payloadKey string
	// nonEmpty requires the payload to be a non-empty array; an empty one is
	// a gateway error carrying the body's errorMessage.
	nonEmpty bool
	// sentinel requires errorMessage == "None".
	sentinel bool
	// rawDiagnostic reports status and raw body on status failures.
	rawDiagnostic bool
}

var responseRules = map[Operation]responseRule{
	OpUserData:           {status: 200},
	OpFetchMessages:      {status: 200},
	OpCreateSubscription: {status: 201},
	OpDeleteSubscription: {status: 201},
	OpFetchSubscriptions: {status: 200, payloadKey: "responses"},
	OpSendMessage:        {},
	OpSendAirtime:        {status: 201, payloadKey: "responses", nonEmpty: true},
	OpCheckout:           {status: 201, payloadKey: "entries", nonEmpty: true},
	OpB2C:                {status: 201, payloadKey: "entries", nonEmpty: true},
	OpB2B:                {status: 201, rawDiagnostic: true},
	OpCall:               {payloadKey: "entries", sentinel: true},
	OpQueueStatus:        {payloadKey: "entries", sentinel: true},
	OpMediaUpload:        {sentinel: true},
}

// interpret classifies a provider response and extracts the payload.
func interpret(op Operation, status int, body []byte) (json.RawMessage, error) {
	rule, ok := responseRules[op]
	if !ok {
		return nil, fmt.Errorf("no response rule for operation %q", op)
	}

	if rule.status != 0 && status != rule.status {
		msg := string(body)
		if rule.rawDiagnostic {
			msg = fmt.Sprintf("unexpected status %d: %s", status, strings.TrimSpace(string(body)))
		}
		return nil, &GatewayError{Operation: op, StatusCode: status, Message: msg}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		// Some operations accept a non-object body (e.g. a bare array); only
		// the keyed lookups below need an object.
		if rule.payloadKey == "" && !rule.sentinel && !rule.nonEmpty && json.Valid(body) {
			return json.RawMessage(body), nil
		}
		return nil, &ParseError{Operation: op, Body: truncate(string(body), 512), Err: err}
	}

	if rule.sentinel {
		msg := stringField(doc, "errorMessage")
		if msg != voiceSuccessSentinel {
			return nil, &GatewayError{Operation: op, StatusCode: status, Message: msg}
		}
	}

	if rule.payloadKey == "" {
		return json.RawMessage(body), nil
	}

	payload, present := doc[rule.payloadKey]
	if rule.nonEmpty {
		if !present {
			return nil, &GatewayError{Operation: op, StatusCode: status, Message: stringField(doc, "errorMessage")}
		}
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, &ParseError{
				Operation: op,
				Body:      truncate(string(body), 512),
				Err:       fmt.Errorf("%q is not a list", rule.payloadKey),
			}
		}
		if len(items) == 0 {
			return nil, &GatewayError{Operation: op, StatusCode: status, Message: stringField(doc, "errorMessage")}
		}
		return payload, nil
	}
	if !present {
		if rule.sentinel {
			return json.RawMessage("null"), nil
		}
		return nil, &ParseError{
			Operation: op,
			Body:      truncate(string(body), 512),
			Err:       fmt.Errorf("response missing %q field", rule.payloadKey),
		}
	}
	return payload, nil
}

// stringField returns a string field of doc, or the raw JSON text when the
// field holds another type, or "" when absent.
func stringField(doc map[string]json.RawMessage, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func decodePayload(op Operation, payload json.RawMessage, out any) error {
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ParseError{Operation: op, Body: truncate(string(payload), 512), Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
