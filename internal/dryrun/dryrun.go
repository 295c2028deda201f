// Package dryrun previews gateway requests without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes the request an operation would send.
type Preview struct {
	DryRun      bool           `json:"dry_run"`
	Operation   string         `json:"operation"`
	Environment string         `json:"environment"`
	Endpoint    string         `json:"endpoint"`
	Description string         `json:"description,omitempty"`
	Params      map[string]any `json:"params"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// NewPreview creates a preview for operation against endpoint.
func NewPreview(operation, environment, endpoint string, params map[string]any) *Preview {
	if params == nil {
		params = map[string]any{}
	}
	return &Preview{
		DryRun:      true,
		Operation:   operation,
		Environment: environment,
		Endpoint:    endpoint,
		Params:      params,
	}
}

// Write outputs the preview as text. Parameters are listed in key order.
func (p *Preview) Write(w io.Writer) {
	rule := strings.Repeat("-", 40)
	_, _ = fmt.Fprintf(w, "[DRY-RUN] %s (%s)\n", p.Operation, p.Environment)
	_, _ = fmt.Fprintf(w, "%s\n", rule)
	_, _ = fmt.Fprintf(w, "  endpoint: %s\n", p.Endpoint)
	if p.Description != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", p.Description)
	}

	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Params[k])
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
	}

	_, _ = fmt.Fprintf(w, "%s\n", rule)
	_, _ = fmt.Fprintln(w, "Nothing sent (dry-run mode)")
}
