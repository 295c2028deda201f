package outfmt

import (
	"context"
	"encoding/json"
	"io"
	"reflect"

	"github.com/africastalking/atctl/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// ApplyQuery applies a jq query to structured data and returns the filtered
// value decoded as generic JSON.
func ApplyQuery(v any, query string) (any, error) {
	if query == "" {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON(data, query)
}

// WriteJSONFiltered writes JSON with optional jq filtering.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSON(w, result, compact)
}

// WriteJSONLines writes each element of a slice on its own line, or v itself
// when it is not a slice.
func WriteJSONLines(w io.Writer, v any, query string) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(result)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return WriteJSON(w, result, true)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := WriteJSON(w, rv.Index(i).Interface(), true); err != nil {
			return err
		}
	}
	return nil
}
