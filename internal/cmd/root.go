package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/debug"
	"github.com/africastalking/atctl/internal/dryrun"
	"github.com/africastalking/atctl/internal/filter"
	"github.com/africastalking/atctl/internal/outfmt"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output      string
	JSON        bool
	Query       string
	Compact     bool
	Debug       bool
	DryRun      bool
	Quiet       bool
	Timeout     time.Duration
	Profile     string
	Environment string
}

// flags holds the global command flags. It is package-level mutable state
// reset at the start of every Execute() call; code reading it outside a
// command's RunE sees the previous call's values.
var flags = rootFlags{
	Output:  defaultOutput(),
	Timeout: api.DefaultTimeout,
}

var (
	outputFormats = []string{"text", "json", "jsonl"}
	environments  = []string{"sandbox", "production"}
)

// wantsJSONErrors reports whether flag errors raised before a command runs
// should be printed as JSON.
func wantsJSONErrors() bool {
	switch flags.Output {
	case "json", "jsonl", "ndjson":
		return true
	}
	return flags.JSON
}

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("AT_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

// loadDotEnv loads ./.env when present. Variables already exported win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	_ = godotenv.Load(".env")
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Runs before the flag reset so AT_OUTPUT and friends from .env apply.
	loadDotEnv()

	flags = rootFlags{
		Output:  defaultOutput(),
		Timeout: api.DefaultTimeout,
	}

	root := &cobra.Command{
		Use:                "atctl",
		Short:              "CLI for the Africa's Talking SMS, voice, airtime and payments APIs",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // enhanceUnknownError does did-you-mean
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if flags.Query != "" && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--query requires --output json or jsonl")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return api.NewEnumError("output", flags.Output, outputFormats)
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				if _, err := filter.Compile(flags.Query); err != nil {
					return err
				}
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}

			if flags.Quiet {
				cmd.SetErr(io.Discard)
				if mode == outfmt.Text {
					cmd.SetOut(io.Discard)
				}
			}

			if flags.Environment != "" {
				env, err := api.ParseEnvironmentStrict(flags.Environment)
				if err != nil {
					return api.NewEnumError("environment", flags.Environment, environments)
				}
				flags.Environment = env.String()
			}
			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env AT_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Log requests and responses to stderr")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Print the request that would be sent and exit")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVarP(&flags.Profile, "profile", "p", "", "Credential profile to use (env AT_PROFILE)")
	pf.StringVarP(&flags.Environment, "environment", "e", "", "sandbox or production (env AT_ENVIRONMENT)")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "query", "jq")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "environment", "env")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newUserCmd())
	root.AddCommand(newSMSCmd())
	root.AddCommand(newSubscriptionsCmd())
	root.AddCommand(newAirtimeCmd())
	root.AddCommand(newVoiceCmd())
	root.AddCommand(newPaymentsCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		var structured *api.StructuredError
		switch {
		case errors.Is(err, errAlreadyHandled):
		case errors.As(err, &structured) && wantsJSONErrors():
			_ = outfmt.WriteJSON(root.ErrOrStderr(), map[string]any{"error": structured}, flags.Compact)
		default:
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanceUnknownError(err, root, targetCmd))
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
		return msg
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown == "" {
			return msg
		}
		seen := make(map[string]bool)
		var flagNames []string
		addFlags := func(fs *pflag.FlagSet) {
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Hidden {
					return
				}
				for _, name := range []string{"--" + f.Name, shorthandName(f)} {
					if name != "" && !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				}
			})
		}
		helpCmd := "atctl --help"
		if targetCmd != nil {
			addFlags(targetCmd.Flags())
			addFlags(targetCmd.InheritedFlags())
			helpCmd = targetCmd.CommandPath() + " --help"
		} else {
			addFlags(root.PersistentFlags())
		}
		if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
			return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
		}
		return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
	}

	return msg
}

func shorthandName(f *pflag.Flag) string {
	if f.Shorthand == "" {
		return ""
	}
	return "-" + f.Shorthand
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo" or "-x") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'x' in -x"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		idx++
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimRight(rest, ".,;:!?\"'")
	if len(rest) < 2 {
		return ""
	}
	return rest
}
