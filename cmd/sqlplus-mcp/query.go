package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

var (
	noCast        bool
	noCheckErrors bool
	params        []string
)

var queryCmd = &cobra.Command{
	Use:   "query [sql]",
	Short: "Run one statement and print its rows as JSON",
	Long: `Runs a statement through sqlplus and prints the parsed rows.

Parameters fill %s placeholders in order, or %(name)s placeholders when
given as name=value:
  sqlplus-mcp query "SELECT * FROM emp WHERE ename = %(name)s;" --param name=KING`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parseParams(params)
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.RunQuery(cmd.Context(), args[0], p, callOptions(cmd)...)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script [path]",
	Short: "Run a SQL script and print the rows of its output as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		res, err := client.RunScript(cmd.Context(), args[0], callOptions(cmd)...)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, scriptCmd} {
		c.Flags().BoolVar(&noCast, "no-cast", false, "Keep cell values as text")
		c.Flags().BoolVar(&noCheckErrors, "no-check-errors", false, "Do not scan the output for error markers")
	}
	queryCmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Query parameter, positional or name=value (repeatable)")
}

// callOptions only overrides the configured defaults for flags that were set.
func callOptions(cmd *cobra.Command) []sqlplus.CallOption {
	var opts []sqlplus.CallOption
	if cmd.Flags().Changed("no-cast") {
		opts = append(opts, sqlplus.WithCast(!noCast))
	}
	if cmd.Flags().Changed("no-check-errors") {
		opts = append(opts, sqlplus.WithCheckErrors(!noCheckErrors))
	}
	return opts
}

// parseParams returns a list for positional values, a map for name=value
// pairs and nil when there are none. Mixing both forms is an error.
func parseParams(raw []string) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	named := map[string]any{}
	var positional []any
	for _, p := range raw {
		if name, value, ok := strings.Cut(p, "="); ok && name != "" {
			named[name] = value
		} else {
			positional = append(positional, p)
		}
	}
	switch {
	case len(named) > 0 && len(positional) > 0:
		return nil, fmt.Errorf("cannot mix positional and named parameters")
	case len(named) > 0:
		return named, nil
	default:
		return positional, nil
	}
}

func printResult(w io.Writer, res sqlplus.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
