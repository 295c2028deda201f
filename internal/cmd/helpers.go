package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/dryrun"
	"github.com/africastalking/atctl/internal/outfmt"
)

// newTabWriter creates a tabwriter for text output
func newTabWriter(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func newTabWriterFromCmd(cmd *cobra.Command) *tabwriter.Writer {
	return newTabWriter(cmd.OutOrStdout())
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	return outfmt.NewFormatter(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// printJSON outputs data as JSON (or JSON lines) with optional query filtering
func printJSON(cmd *cobra.Command, v any) error {
	return newFormatter(cmd).Output(v)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	return outfmt.WriteJSON(cmd.ErrOrStderr(), v, outfmt.IsCompact(cmd.Context()))
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

// printIfNotQuiet prints to stdout only if not in quiet mode
func printIfNotQuiet(cmd *cobra.Command, format string, args ...any) {
	if !flags.Quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}

// maybeDryRun writes preview and reports true when dry-run mode is on.
func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if isJSON(cmd) {
		return true, printJSON(cmd, preview)
	}
	preview.Write(cmd.OutOrStdout())
	return true, nil
}

// aliasBridgeValue wraps a pflag.Value so that Set() on the alias also
// marks the canonical flag as Changed, which lets aliases satisfy
// MarkFlagRequired.
type aliasBridgeValue struct {
	pflag.Value
	canonical *pflag.Flag
}

func (v *aliasBridgeValue) Set(s string) error {
	if err := v.Value.Set(s); err != nil {
		return err
	}
	v.canonical.Changed = true
	return nil
}

type aliasBridgeSliceValue struct {
	aliasBridgeValue
	slice pflag.SliceValue
}

func (v *aliasBridgeSliceValue) Append(s string) error     { return v.slice.Append(s) }
func (v *aliasBridgeSliceValue) Replace(ss []string) error { return v.slice.Replace(ss) }
func (v *aliasBridgeSliceValue) GetSlice() []string        { return v.slice.GetSlice() }

// flagAlias registers a hidden alias for an existing flag. Both share the
// same Value; the alias is annotated so flagOrAliasChanged() can detect it.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	bridge := &aliasBridgeValue{Value: f.Value, canonical: f}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		a.Value = &aliasBridgeSliceValue{aliasBridgeValue: *bridge, slice: sv}
	} else {
		a.Value = bridge
	}
	ann := map[string][]string{"alias-of": {name}}
	for k, v := range f.Annotations {
		if k == cobra.BashCompOneRequiredFlag {
			continue
		}
		ann[k] = v
	}
	a.Annotations = ann
	fs.AddFlag(&a)
}

// flagOrAliasChanged returns true if the named flag or any of its
// hidden aliases was explicitly set by the user.
func flagOrAliasChanged(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Changed(name) || cmd.InheritedFlags().Changed(name) {
		return true
	}
	aliasChanged := func(fs *pflag.FlagSet) bool {
		found := false
		fs.VisitAll(func(f *pflag.Flag) {
			if found {
				return
			}
			if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 && ann[0] == name && fs.Changed(f.Name) {
				found = true
			}
		})
		return found
	}
	return aliasChanged(cmd.Flags()) || aliasChanged(cmd.InheritedFlags())
}

// stringPtrIfChanged returns &value when the flag was set, so optional
// parameters distinguish "absent" from "empty".
func stringPtrIfChanged(cmd *cobra.Command, flag, value string) *string {
	if flagOrAliasChanged(cmd, flag) {
		return &value
	}
	return nil
}

func intPtrIfChanged(cmd *cobra.Command, flag string, value int) *int {
	if flagOrAliasChanged(cmd, flag) {
		return &value
	}
	return nil
}

// parseKeyValues parses repeated key=value flags into a map.
func parseKeyValues(flagName string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: must be key=value", flagName, pair)
		}
		out[key] = value
	}
	return out, nil
}

// errAlreadyHandled signals that the error was already printed to stderr.
// SilenceErrors is set on the root command, so commands return it through
// handledError to keep the exit code without a second message.
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// RunE wraps a command function with error reporting: a StructuredError on
// stderr in JSON mode, a message with suggestions otherwise.
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if isJSON(cmd) {
			if structured := api.StructuredErrorFromError(err); structured != nil {
				_ = printJSONErr(cmd, map[string]any{"error": structured})
			}
		} else {
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// previewRequest prints a dry-run preview of op and reports true when
// dry-run mode is on. Nothing is sent in that case.
func previewRequest(cmd *cobra.Command, op api.Operation, service api.Service, params map[string]any, warnings ...string) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	env := newClientFactory().previewEnvironment()
	preview := dryrun.NewPreview(string(op), env.String(), api.Resolve(service, env), params)
	preview.Warnings = warnings
	return maybeDryRun(cmd, preview)
}

// invalidInput reports a rejected flag value as a validation error.
func invalidInput(field string, err error) error {
	return &api.ValidationError{Field: field, Message: err.Error()}
}

// paramsOf flattens a request value into the map shown by --dry-run.
func paramsOf(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
