package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/outfmt"
)

func TestParseKeyValues(t *testing.T) {
	got, err := parseKeyValues("metadata", []string{"order=42", "note=a=b", " agent =x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"order": "42", "note": "a=b", "agent": "x"}, got)

	got, err = parseKeyValues("metadata", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseKeyValues("metadata", []string{"novalue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be key=value")

	_, err = parseKeyValues("metadata", []string{"=x"})
	require.Error(t, err)
}

func TestParamsOf(t *testing.T) {
	from := "ACME"
	params := paramsOf(api.SMSMessage{To: "+254711000000", Message: "hi", From: &from})
	assert.Equal(t, "+254711000000", params["to"])
	assert.Equal(t, "ACME", params["from"])
	assert.NotContains(t, params, "keyword")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "********cdef", maskKey("456789abcdef"))
	assert.Equal(t, "***", maskKey("abc"))
	assert.Equal(t, "", maskKey(""))
}

func TestFlagAlias_SatisfiesRequired(t *testing.T) {
	var value string
	cmd := &cobra.Command{Use: "t", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().StringVar(&value, "last-received-id", "0", "")
	_ = cmd.MarkFlagRequired("last-received-id")
	flagAlias(cmd.Flags(), "last-received-id", "since")

	cmd.SetArgs([]string{"--since", "15"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "15", value)
	assert.True(t, flagOrAliasChanged(cmd, "last-received-id"))
}

func TestStringPtrIfChanged(t *testing.T) {
	var from string
	cmd := &cobra.Command{Use: "t", RunE: func(*cobra.Command, []string) error { return nil }}
	cmd.Flags().StringVar(&from, "from", "", "")

	assert.Nil(t, stringPtrIfChanged(cmd, "from", from))

	cmd.SetArgs([]string{"--from", ""})
	require.NoError(t, cmd.Execute())
	got := stringPtrIfChanged(cmd, "from", from)
	require.NotNil(t, got)
	assert.Equal(t, "", *got)
}

func TestRunE_JSONModeWritesStructuredError(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "t"}
	cmd.SetErr(&stderr)
	cmd.SetContext(outfmt.WithMode(context.Background(), outfmt.JSON))

	err := RunE(func(*cobra.Command, []string) error {
		return &api.ValidationError{Field: "to", Message: "required"}
	})(cmd, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errAlreadyHandled))
	assert.Equal(t, exitUsage, ExitCode(err))

	payload := decodeJSON[map[string]map[string]any](t, stderr.String())
	assert.Equal(t, string(api.ErrValidation), payload["error"]["code"])
}

func TestRunE_TextModeWritesSuggestions(t *testing.T) {
	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "t"}
	cmd.SetErr(&stderr)
	cmd.SetContext(context.Background())

	err := RunE(func(*cobra.Command, []string) error {
		return &api.GatewayError{Operation: api.OpUserData, StatusCode: 401, Message: "The supplied authentication is invalid"}
	})(cmd, nil)

	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))
	assert.Contains(t, stderr.String(), "The supplied authentication is invalid")
}
