package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/deptrack/internal/client"
	"github.com/spf13/cobra"
)

const remoteAnnotation = "remote"

func (a *app) remoteCmd() *cobra.Command {
	var (
		serverURL string
		token     string
		timeout   time.Duration
	)

	connect := func(cmd *cobra.Command) (*client.Client, error) {
		opts := client.Options{
			Endpoint: a.cfg.ServerURL,
			Token:    a.cfg.ClientToken,
			Timeout:  timeout,
			Version:  Version,
		}
		if serverURL != "" {
			opts.Endpoint = serverURL
		}
		if token != "" {
			opts.Token = token
		}
		return client.Connect(cmd.Context(), opts)
	}

	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "Call the tools of a running deptrack-server",
		Long: `Call the tools of a running deptrack-server over MCP.

The server URL and bearer token default to DEPTRACK_SERVER_URL and DEPTRACK_TOKEN.

Examples:
  deptrack remote tools
  deptrack remote call get_health_overview
  deptrack remote call get_stale_dependencies days_threshold:=90
  deptrack remote call create_dependency name=libX test_version=1.0`,
	}
	remoteCmd.PersistentFlags().StringVar(&serverURL, "server", "", "MCP endpoint of the server")
	remoteCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token")
	remoteCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	toolsCmd := &cobra.Command{
		Use:         "tools",
		Short:       "List the tools the server offers",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{remoteAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			names, err := c.Tools(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), names)
			}
			fmt.Fprint(cmd.OutOrStdout(), a.theme.nameList(names))
			return nil
		},
	}

	callCmd := &cobra.Command{
		Use:         "call <tool> [key=value...]",
		Short:       "Call one tool and print its JSON result",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{remoteAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			toolArgs, err := parseToolArgs(args[1:])
			if err != nil {
				return err
			}

			c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			out, err := c.CallRaw(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	remoteCmd.AddCommand(toolsCmd, callCmd)
	return remoteCmd
}

// parseToolArgs turns key=value pairs into string arguments and key:=json
// pairs into typed ones, e.g. days_threshold:=90.
func parseToolArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" || key == ":" {
			return nil, fmt.Errorf("invalid argument %q (expected key=value or key:=json)", p)
		}
		if typed, found := strings.CutSuffix(key, ":"); found {
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return nil, fmt.Errorf("argument %s: invalid JSON %q", typed, raw)
			}
			args[typed] = v
			continue
		}
		args[key] = raw
	}
	return args, nil
}
