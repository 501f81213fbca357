package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"chidata/internal/config"
	"chidata/internal/logging"
	"chidata/internal/schema"
	"chidata/internal/storage"
)

var errInvalidConfig = errors.New("configuration is invalid")

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List the schema tables with their columns and row counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			t := newTable(a.out, "Table", "Columns", "Rows")
			for _, def := range schema.Tables() {
				rows := "-"
				n, err := storage.Count(ctx, repo, def.FQN)
				if err != nil {
					logging.Debug().Err(err).Str("table", def.FQN).Msg("count failed")
				} else {
					rows = strconv.FormatInt(n, 10)
				}
				t.Append([]string{def.FQN, strings.Join(def.ColumnNames(), ", "), rows})
			}
			t.Render()
			return nil
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read-only SQL statement and print the result",
		Long: `Run one SQL statement against the store inside a read-only transaction.
Statements that write are rejected by the database, and the transaction is
rolled back in any case.`,
		Example: `  chidata query "SELECT name, COUNT(*) FROM violation_types v
    JOIN violations x ON x.violation_type_id = v.id GROUP BY name ORDER BY 2 DESC LIMIT 10"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.TrimSpace(args[0])
			if q == "" {
				return errors.New("query: statement is empty")
			}
			ctx := cmd.Context()
			repo, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			cols, rows, err := repo.QueryReadOnly(ctx, q)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}
			t := newTable(a.out, cols...)
			for _, row := range rows {
				cells := make([]string, len(row))
				for i, v := range row {
					cells[i] = formatValue(v)
				}
				t.Append(cells)
			}
			t.Render()
			fmt.Fprintf(a.out, "(%d rows)\n", len(rows))
			return nil
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and print any issues",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipValidation: "true"},
		RunE: func(_ *cobra.Command, _ []string) error {
			issues := config.Validate(a.cfg)
			if len(issues) == 0 {
				fmt.Fprintln(a.out, "configuration is valid")
				return nil
			}
			printIssues(a.out, issues)
			if config.HasErrors(issues) {
				return errInvalidConfig
			}
			return nil
		},
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func printIssues(w io.Writer, issues []config.Issue) {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetHeader(header)
	return t
}

func sortedKeys(m map[string]int64) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
