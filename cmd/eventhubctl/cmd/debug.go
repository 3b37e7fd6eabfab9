package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// NewDebugCommand groups read-only introspection against a running hub's
// debug server. The subcommands talk HTTP to a live eventhub.DebugServer
// rather than parsing source with go/ast — a running hub has no source
// tree to walk.
func NewDebugCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Inspect a running Event Hub's debug server",
		Long: `debug dumps diagnostic state from a running hub's debug server:
extension registry, health aggregation, the hub's own shared state, and
recorded lifecycle transitions.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.AddCommand(newDebugDumpCommand())
	return cmd
}

func newDebugDumpCommand() *cobra.Command {
	var addr, extension string
	var limit int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "dump [extensions|health|sharedstate|lifecycle]",
		Short: "Fetch and print one debug endpoint as formatted JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, query, err := debugEndpoint(args[0], extension, limit)
			if err != nil {
				return err
			}
			client := &http.Client{Timeout: timeout}
			url := fmt.Sprintf("http://%s%s%s", addr, path, query)

			resp, err := client.Get(url)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", url, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("%s returned %s: %s", url, resp.Status, body)
			}

			var pretty map[string]interface{}
			var prettyList []interface{}
			out := cmd.OutOrStdout()
			switch {
			case json.Unmarshal(body, &pretty) == nil:
				return writeIndented(out, pretty)
			case json.Unmarshal(body, &prettyList) == nil:
				return writeIndented(out, prettyList)
			default:
				_, werr := out.Write(body)
				return werr
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:6060", "host:port of the hub's debug server")
	cmd.Flags().StringVar(&extension, "extension", "", "filter lifecycle transitions to this extension (lifecycle only)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max lifecycle transitions to return, 0 for no limit (lifecycle only)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "HTTP request timeout")
	return cmd
}

func debugEndpoint(name, extension string, limit int) (path, query string, err error) {
	switch name {
	case "extensions":
		return "/extensions", "", nil
	case "health":
		return "/healthz", "", nil
	case "sharedstate":
		return "/sharedstate/hub", "", nil
	case "lifecycle":
		q := ""
		if extension != "" {
			q += "?extension=" + extension
		}
		if limit > 0 {
			if q == "" {
				q = fmt.Sprintf("?limit=%d", limit)
			} else {
				q += fmt.Sprintf("&limit=%d", limit)
			}
		}
		return "/lifecycle", q, nil
	default:
		return "", "", fmt.Errorf("unknown dump target %q (want extensions, health, sharedstate, or lifecycle)", name)
	}
}

func writeIndented(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
