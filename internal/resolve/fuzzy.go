// Package resolve canonicalises loosely typed enum values, such as payment
// providers and transfer types, against the values the provider accepts.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Known values accepted by the payments API.
var (
	Providers = []string{"Mpesa", "TigoTanzania", "Athena"}

	TransferTypes = []string{
		"BusinessBuyGoods",
		"BusinessPayBill",
		"DisburseFundsToBusiness",
		"BusinessToBusinessTransfer",
	}

	B2CReasons = []string{
		"SalaryPayment",
		"SalaryPaymentWithWithdrawalChargePaid",
		"BusinessPayment",
		"BusinessPaymentWithWithdrawalChargePaid",
		"PromotionPayment",
	}

	Currencies = []string{"KES", "UGX", "TZS", "NGN", "MWK", "ZMW", "RWF", "ETB", "XOF", "GHS", "USD"}
)

// Match is a fuzzy match result with score.
type Match struct {
	Value string
	Score int
}

var ErrEmptyQuery = errors.New("empty value")

// AmbiguousError indicates that a query matched more than one known value.
type AmbiguousError struct {
	Field   string
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous %s %q", e.Field, e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, " %s", m.Value)
		}
	}
	return b.String()
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// Canonicalize maps query onto one of values.
//
// Behavior:
// - Empty query is an error.
// - Exact case-insensitive matches win.
// - Otherwise a fuzzy match is used only when it is the sole candidate;
//   several candidates are an *AmbiguousError listing them best first.
// - A query matching nothing is returned unchanged, since the provider may
//   accept values this list does not know yet.
func Canonicalize(field, query string, values []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("%s: %w", field, ErrEmptyQuery)
	}

	for _, v := range values {
		if strings.EqualFold(v, query) {
			return v, nil
		}
	}

	matches := Suggest(query, values, len(values))
	switch len(matches) {
	case 0:
		return query, nil
	case 1:
		return matches[0].Value, nil
	}
	return "", &AmbiguousError{Field: field, Query: query, Matches: matches}
}

// Suggest returns up to limit known values ranked by score (best first).
func Suggest(query string, values []string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(values) == 0 || limit <= 0 {
		return nil
	}
	return buildMatches(values, fuzzy.FindFrom(strings.ToLower(query), lowerSource(values)), limit)
}

func buildMatches(values []string, results fuzzy.Matches, limit int) []Match {
	if len(results) == 0 || limit <= 0 {
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{Value: values[r.Index], Score: r.Score}
	}
	return matches
}

// Provider canonicalises a payment provider name.
func Provider(query string) (string, error) {
	return Canonicalize("provider", query, Providers)
}

// TransferType canonicalises a B2B transfer type.
func TransferType(query string) (string, error) {
	return Canonicalize("transferType", query, TransferTypes)
}

// B2CReason canonicalises a B2C payment reason.
func B2CReason(query string) (string, error) {
	return Canonicalize("reason", query, B2CReasons)
}

// Currency canonicalises an ISO currency code. Only exact matches are
// rewritten; codes are too short for fuzzy matching to be meaningful.
func Currency(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("currencyCode: %w", ErrEmptyQuery)
	}
	for _, c := range Currencies {
		if strings.EqualFold(c, query) {
			return c, nil
		}
	}
	return query, nil
}
