package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestStructuredErrorFromError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{"validation", missingField("provider"), ErrValidation, false},
		{"unauthorized", &GatewayError{Operation: OpUserData, StatusCode: 401, Message: "bad key"}, ErrUnauthorized, false},
		{"gateway", &GatewayError{Operation: OpSendAirtime, StatusCode: 201, Message: "InsufficientBalance"}, ErrGateway, false},
		{"server", &GatewayError{Operation: OpCheckout, StatusCode: 502, Message: "bad gateway"}, ErrServerError, true},
		{"network", &NetworkError{Method: "GET", URL: "https://x", Err: errors.New("refused")}, ErrNetwork, true},
		{"parse", &ParseError{Operation: OpCall, Err: errors.New("bad json")}, ErrParse, false},
		{"wrapped", fmt.Errorf("sending: %w", &NetworkError{Err: errors.New("eof")}), ErrNetwork, true},
		{"unknown", errors.New("boom"), ErrUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := StructuredErrorFromError(tt.err)
			if se.Code != tt.code {
				t.Errorf("code = %s, want %s", se.Code, tt.code)
			}
			if se.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", se.Retryable, tt.retryable)
			}
		})
	}
	if StructuredErrorFromError(nil) != nil {
		t.Error("nil error must map to nil")
	}
}

func TestStructuredErrorFromError_KeepsGatewayMessage(t *testing.T) {
	se := StructuredErrorFromError(&GatewayError{Operation: OpSendAirtime, StatusCode: 201, Message: "InsufficientBalance"})
	if se.Message != "InsufficientBalance" {
		t.Errorf("message = %q", se.Message)
	}
	if se.Context["operation"] != "airtime.send" {
		t.Errorf("context = %v", se.Context)
	}
}

func TestNewEnumError(t *testing.T) {
	se := NewEnumError("output", "yaml", []string{"text", "json"})
	if se.Code != ErrValidation || len(se.AllowedValues) != 2 {
		t.Errorf("unexpected error: %+v", se)
	}
	if se.Error() != `[validation_failed] invalid output "yaml": must be one of text, json` {
		t.Errorf("Error() = %q", se.Error())
	}
}
