package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/genmcp/safe-greeter/pkg/audit"
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditDatabasePath, "db", "", "the audit database a server was configured with")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "how many recent invocations to show")
	_ = auditCmd.MarkFlagRequired("db")
}

var auditDatabasePath string
var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show outcome counts and recent invocations from an audit database",
	Run:   executeAuditCmd,
}

func executeAuditCmd(cobraCmd *cobra.Command, args []string) {
	if err := cobra.NoArgs(cobraCmd, args); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}

	if _, err := os.Stat(auditDatabasePath); err != nil {
		fmt.Printf("no audit database found at %s\n", auditDatabasePath)
		os.Exit(1)
	}

	if err := runAudit(context.Background(), os.Stdout, auditDatabasePath, auditLimit); err != nil {
		fmt.Printf("%s\n", err)
		os.Exit(1)
	}
}

func runAudit(ctx context.Context, out io.Writer, path string, limit int) error {
	store, err := audit.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	counts, err := store.Counts(ctx)
	if err != nil {
		return err
	}
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, outcome)
	}
	slices.Sort(outcomes)

	fmt.Fprintln(w, "OUTCOME\tCOUNT")
	for _, outcome := range outcomes {
		fmt.Fprintf(w, "%s\t%d\n", outcome, counts[outcome])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ID\tTIME\tTOOL\tOUTCOME\tINPUT")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.UTC().Format(time.RFC3339), e.Tool, e.Outcome, e.Input)
	}

	return w.Flush()
}
