// Package outfmt renders command results as text tables, JSON or JSON lines.
// The selected mode travels in the command context.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode is an output format.
type Mode string

const (
	Text  Mode = "text"
	JSON  Mode = "json"
	JSONL Mode = "jsonl"
)

// settings holds everything the root command decides about output.
type settings struct {
	mode    Mode
	compact bool
}

type settingsKey struct{}

func settingsFrom(ctx context.Context) settings {
	if s, ok := ctx.Value(settingsKey{}).(settings); ok {
		return s
	}
	return settings{mode: Text}
}

// Parse maps a --output value to a Mode. "ndjson" is accepted for JSONL.
func Parse(s string) (Mode, error) {
	switch s {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	case "jsonl", "ndjson":
		return JSONL, nil
	}
	return Text, fmt.Errorf("invalid output format: %q (use 'text', 'json' or 'jsonl')", s)
}

func WithMode(ctx context.Context, mode Mode) context.Context {
	s := settingsFrom(ctx)
	s.mode = mode
	return context.WithValue(ctx, settingsKey{}, s)
}

func ModeFromContext(ctx context.Context) Mode {
	return settingsFrom(ctx).mode
}

// IsJSON reports machine-readable output; JSON lines count.
func IsJSON(ctx context.Context) bool {
	m := ModeFromContext(ctx)
	return m == JSON || m == JSONL
}

func IsJSONL(ctx context.Context) bool {
	return ModeFromContext(ctx) == JSONL
}

// WithCompact disables indentation of JSON documents.
func WithCompact(ctx context.Context, compact bool) context.Context {
	s := settingsFrom(ctx)
	s.compact = compact
	return context.WithValue(ctx, settingsKey{}, s)
}

func IsCompact(ctx context.Context) bool {
	return settingsFrom(ctx).compact
}

// WriteJSON encodes v followed by a newline, indented by two spaces unless
// compact.
func WriteJSON(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
