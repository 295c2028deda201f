package cmd

import "strings"

// maxSuggestDistance is the largest edit distance still offered as a suggestion.
const maxSuggestDistance = 3

// levenshtein computes the edit distance between two strings using a single
// row of the DP table.
func levenshtein(a, b string) int {
	if a == "" {
		return len(b)
	}
	if b == "" {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = next
		}
	}
	return row[len(b)]
}

func closest(input string, candidates []string, key func(string) string) string {
	input = strings.ToLower(input)
	bestDist := maxSuggestDistance + 1
	bestMatch := ""
	for _, c := range candidates {
		if d := levenshtein(input, strings.ToLower(key(c))); d < bestDist {
			bestDist = d
			bestMatch = c
		}
	}
	return bestMatch
}

// suggestCommand finds the closest command name to the unknown input, or ""
// when nothing is close.
func suggestCommand(unknown string, commands []string) string {
	return closest(unknown, commands, func(s string) string { return s })
}

// suggestFlag finds the closest flag name. Dashes are ignored for the
// comparison but kept in the result.
func suggestFlag(unknown string, flags []string) string {
	stripped := strings.TrimLeft(unknown, "-")
	if stripped == "" {
		return ""
	}
	return closest(stripped, flags, func(s string) string { return strings.TrimLeft(s, "-") })
}
