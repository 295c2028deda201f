package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/config"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage API credentials",
		Long:    "Store Africa's Talking usernames and API keys in your OS keychain as named profiles.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthProfilesCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		username    string
		apiKey      string
		apiKeyStdin bool
		envFile     string
		verify      bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to a profile",
		Long: strings.TrimSpace(`
Save a username and API key to the OS keychain under a profile (default
"default") and make it the current profile.

Sandbox and production have different API keys; use --environment sandbox
for a sandbox key. Use the username "sandbox" for the sandbox app.
`),
		Example: strings.TrimSpace(`
  # Sandbox credentials
  atctl auth login --username sandbox --api-key-stdin --environment sandbox < key.txt

  # Production credentials in a named profile, checked against the API
  atctl auth login --profile live --username acme --api-key KEY --verify

  # Read AT_USERNAME, AT_API_KEY and AT_ENVIRONMENT from a file
  atctl auth login --env-file .env.live --profile live
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			environment := flags.Environment

			if envFile != "" {
				values, err := godotenv.Read(envFile)
				if err != nil {
					return fmt.Errorf("failed to read --env-file %q: %w", envFile, err)
				}
				if username == "" {
					username = strings.TrimSpace(values["AT_USERNAME"])
				}
				if apiKey == "" {
					apiKey = strings.TrimSpace(values["AT_API_KEY"])
				}
				if environment == "" {
					environment = strings.TrimSpace(values["AT_ENVIRONMENT"])
				}
			}
			if apiKeyStdin {
				if apiKey != "" {
					return fmt.Errorf("--api-key conflicts with --api-key-stdin")
				}
				key, err := readSecretLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				apiKey = key
			}

			username = strings.TrimSpace(username)
			apiKey = strings.TrimSpace(apiKey)
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if apiKey == "" {
				return fmt.Errorf("--api-key or --api-key-stdin is required")
			}
			if environment == "" {
				environment = api.Production.String()
			}
			env, err := api.ParseEnvironmentStrict(environment)
			if err != nil {
				return err
			}

			if verify {
				opts := []api.Option{api.WithTimeout(flags.Timeout)}
				if clientTransport != nil {
					opts = append(opts, api.WithTransport(clientTransport))
				}
				client := api.New(username, apiKey, env, opts...)
				if _, err := client.GetUserData(cmd.Context()); err != nil {
					return fmt.Errorf("credential check failed: %w", err)
				}
			}

			name := flags.Profile
			if name == "" {
				name = "default"
			}
			if err := config.SaveProfile(name, config.Profile{
				Username:    username,
				APIKey:      apiKey,
				Environment: env.String(),
			}); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":     name,
					"username":    username,
					"environment": env.String(),
					"verified":    verify,
				})
			}
			printIfNotQuiet(cmd, "Saved profile %q (%s, %s)\n", name, username, env)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Application username (\"sandbox\" for the sandbox)")
	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "API key")
	cmd.Flags().BoolVar(&apiKeyStdin, "api-key-stdin", false, "Read the API key from stdin")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Read AT_USERNAME, AT_API_KEY and AT_ENVIRONMENT from a dotenv file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the credentials by fetching account data before saving")

	return cmd
}

func readSecretLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read API key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the credentials in use",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, env, err := newClientFactory().resolve()
			if err != nil {
				return err
			}

			status := map[string]any{
				"username":    cfg.Username,
				"environment": env.String(),
				"source":      cfg.Source,
				"api_key":     maskKey(cfg.APIKey),
			}
			if isJSON(cmd) {
				return printJSON(cmd, status)
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintf(w, "Username:\t%s\n", cfg.Username)
			_, _ = fmt.Fprintf(w, "Environment:\t%s\n", env)
			_, _ = fmt.Fprintf(w, "Source:\t%s\n", cfg.Source)
			_, _ = fmt.Fprintf(w, "API key:\t%s\n", maskKey(cfg.APIKey))
			return w.Flush()
		}),
	}
}

// maskKey keeps the last four characters of key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a stored profile",
		Long:  "Remove the profile named by --profile, or the current profile.",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			name := flags.Profile
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": name})
			}
			printIfNotQuiet(cmd, "Removed profile %q\n", name)
			return nil
		}),
	}
}

func newAuthProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			type profileRow struct {
				Name        string `json:"name"`
				Username    string `json:"username"`
				Environment string `json:"environment"`
				Current     bool   `json:"current"`
			}
			rows := make([]profileRow, 0, len(names))
			for _, name := range names {
				p, err := config.LoadProfile(name)
				if err != nil {
					return err
				}
				rows = append(rows, profileRow{Name: name, Username: p.Username, Environment: p.Environment, Current: name == current})
			}

			if isJSON(cmd) {
				return printJSON(cmd, rows)
			}
			f := newFormatter(cmd)
			if len(rows) == 0 {
				f.Empty("No profiles stored. Run: atctl auth login")
				return nil
			}
			f.StartTable([]string{"", "PROFILE", "USERNAME", "ENVIRONMENT"})
			for _, r := range rows {
				marker := ""
				if r.Current {
					marker = "*"
				}
				f.Row(marker, r.Name, r.Username, r.Environment)
			}
			return f.EndTable()
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Make a stored profile current",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadProfile(args[0]); err != nil {
				return fmt.Errorf("profile %q: %w", args[0], err)
			}
			if err := config.SetCurrentProfile(args[0]); err != nil {
				return err
			}
			printIfNotQuiet(cmd, "Current profile is now %q\n", args[0])
			return nil
		}),
	})

	return cmd
}
