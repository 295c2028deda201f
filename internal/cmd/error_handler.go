package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/config"
	"github.com/africastalking/atctl/internal/resolve"
)

// HandleError renders err as a user-facing message with suggestions.
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var validationErr *api.ValidationError
	var gatewayErr *api.GatewayError
	var networkErr *api.NetworkError
	var parseErr *api.ParseError
	var ambiguousErr *resolve.AmbiguousError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: atctl auth login --username <name> --api-key <key>\n")
		msg.WriteString("  - Or export AT_USERNAME and AT_API_KEY\n")

	case errors.As(err, &ambiguousErr):
		fmt.Fprintf(&msg, "Error: %s\n\n", ambiguousErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Spell the value out in full\n")

	case errors.As(err, &validationErr):
		fmt.Fprintf(&msg, "Error: %s\n", validationErr.Error())

	case errors.As(err, &gatewayErr):
		if gatewayErr.Message != "" {
			fmt.Fprintf(&msg, "Gateway error (%s): %s\n\n", gatewayErr.Operation, gatewayErr.Message)
		} else {
			fmt.Fprintf(&msg, "Gateway error (%s): HTTP %d\n\n", gatewayErr.Operation, gatewayErr.StatusCode)
		}
		msg.WriteString(suggestionsForStatusCode(gatewayErr.StatusCode))

	case errors.As(err, &networkErr):
		fmt.Fprintf(&msg, "Network error: %s\n\n", networkErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check your network connection\n")
		msg.WriteString("  - Increase --timeout for slow links\n")

	case errors.As(err, &parseErr):
		fmt.Fprintf(&msg, "Unexpected response: %s\n\n", parseErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Retry with --debug to see the raw exchange\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch {
	case code == 401:
		suggestions.WriteString("  - The username or API key was rejected\n")
		suggestions.WriteString("  - Sandbox and production use different keys; check --environment\n")
		suggestions.WriteString("  - Run: atctl auth status\n")
	case code >= 500:
		suggestions.WriteString("  - The gateway failed; wait and retry\n")
	default:
		suggestions.WriteString("  - Check the values sent; use --dry-run to preview them\n")
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
