package cmd

import "testing"

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "b", 1},
		{"kitten", "sitting", 3},
		{"airtime", "airtim", 1},
		{"abc", "abc", 0},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"auth", "user", "sms", "subscriptions", "airtime", "voice", "payments", "schema", "version"}
	tests := []struct {
		input string
		want  string
	}{
		{"airtme", "airtime"},
		{"paymnets", "payments"},
		{"vocie", "voice"},
		{"subscription", "subscriptions"},
		{"SCHEMA", "schema"},
		{"zzzzzzzzz", ""},
	}
	for _, tt := range tests {
		if got := suggestCommand(tt.input, commands); got != tt.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--message", "--from", "--enqueue", "--keyword", "--link-id", "--output"}
	tests := []struct {
		input string
		want  string
	}{
		{"--mesage", "--message"},
		{"--enque", "--enqueue"},
		{"--keywrd", "--keyword"},
		{"-linkid", "--link-id"},
		{"--completely-unrelated", ""},
	}
	for _, tt := range tests {
		if got := suggestFlag(tt.input, flags); got != tt.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
