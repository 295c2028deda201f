package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/config"
	"github.com/africastalking/atctl/internal/resolve"
)

const (
	exitOK      = 0
	exitGeneric = 1
	exitUsage   = 2
	exitAuth    = 3
	exitGateway = 4
	exitNetwork = 8
	exitParse   = 9
)

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}
	var handled *handledError
	if errors.As(err, &handled) {
		if handled.exitCode != 0 {
			return handled.exitCode
		}
		err = handled.err
	}

	if errors.Is(err, config.ErrNotConfigured) {
		return exitAuth
	}
	var ambiguous *resolve.AmbiguousError
	if errors.As(err, &ambiguous) || errors.Is(err, resolve.ErrEmptyQuery) {
		return exitUsage
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return exitNetwork
	}
	if code := exitCodeFromStructured(err); code != 0 {
		return code
	}
	if isUsageError(err) {
		return exitUsage
	}
	return exitGeneric
}

func exitCodeFromStructured(err error) int {
	switch api.StructuredErrorFromError(err).Code {
	case api.ErrValidation:
		return exitUsage
	case api.ErrUnauthorized:
		return exitAuth
	case api.ErrGateway, api.ErrServerError:
		return exitGateway
	case api.ErrNetwork:
		return exitNetwork
	case api.ErrParse:
		return exitParse
	default:
		return 0
	}
}

func isUsageError(err error) bool {
	msg := strings.ToLower(err.Error())
	indicators := []string{
		"unknown command",
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid value",
		"must be",
		"is required",
		"required flag",
		"conflicts with",
	}
	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
