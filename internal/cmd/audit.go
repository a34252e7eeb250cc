package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/warden-dev/warden/internal/audit"
)

var (
	flagAuditSession string
	flagAuditCommand string
	flagAuditTypes   []string
	flagAuditSince   string
	flagAuditUntil   string
	flagAuditFormat  string
	flagAuditOutput  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List audit events matching a filter",
	Long: `List audit events matching a filter, oldest first.

Events can be narrowed by session, command, event type, and time range.
Times accept RFC 3339 timestamps or plain dates (2006-01-02).`,
	Args: cobra.NoArgs,
	RunE: runAuditQuery,
}

var auditSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize one session",
	Args:  cobra.NoArgs,
	RunE:  runAuditSummary,
}

var auditTrailCmd = &cobra.Command{
	Use:   "trail <command-id>",
	Short: "Show every event for one command in order",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditTrail,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching audit events as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE:  runAuditExport,
}

func init() {
	for _, c := range []*cobra.Command{auditQueryCmd, auditExportCmd} {
		c.Flags().StringVar(&flagAuditSession, "session", "", "filter by session id")
		c.Flags().StringVar(&flagAuditCommand, "command", "", "filter by command id")
		c.Flags().StringSliceVar(&flagAuditTypes, "type", nil, "filter by event type (repeatable)")
		c.Flags().StringVar(&flagAuditSince, "since", "", "only events at or after this time")
		c.Flags().StringVar(&flagAuditUntil, "until", "", "only events at or before this time")
	}
	auditSummaryCmd.Flags().StringVar(&flagAuditSession, "session", "", "session id to summarize")
	auditExportCmd.Flags().StringVar(&flagAuditFormat, "format", "json", "export format: json or csv")
	auditExportCmd.Flags().StringVarP(&flagAuditOutput, "output", "o", "", "write to file instead of stdout")

	auditCmd.AddCommand(auditQueryCmd)
	auditCmd.AddCommand(auditSummaryCmd)
	auditCmd.AddCommand(auditTrailCmd)
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}

// buildFilter assembles an audit filter from the shared flags.
func buildFilter() (audit.Filter, error) {
	var f audit.Filter
	var err error

	if flagAuditSession != "" {
		f.SessionID, err = uuid.Parse(flagAuditSession)
		if err != nil {
			return f, fmt.Errorf("invalid session id %q: %w", flagAuditSession, err)
		}
	}
	if flagAuditCommand != "" {
		f.CommandID, err = uuid.Parse(flagAuditCommand)
		if err != nil {
			return f, fmt.Errorf("invalid command id %q: %w", flagAuditCommand, err)
		}
	}
	for _, t := range flagAuditTypes {
		f.Types = append(f.Types, audit.EventType(t))
	}
	if flagAuditSince != "" {
		f.From, err = parseTimeFlag(flagAuditSince)
		if err != nil {
			return f, err
		}
	}
	if flagAuditUntil != "" {
		f.To, err = parseTimeFlag(flagAuditUntil)
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

// parseTimeFlag accepts RFC 3339 or a bare date.
func parseTimeFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use RFC 3339 or 2006-01-02", s)
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	filter, err := buildFilter()
	if err != nil {
		return err
	}

	events, err := a.queryEngine().Query(filter)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching events.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tSESSION\tCOMMAND")
	for _, e := range events {
		commandID := ""
		if e.CommandID != uuid.Nil {
			commandID = e.CommandID.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.RFC3339),
			e.EventType,
			e.SessionID,
			commandID,
		)
	}
	w.Flush()
	return nil
}

func runAuditSummary(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if flagAuditSession == "" {
		return fmt.Errorf("--session is required")
	}
	session, err := uuid.Parse(flagAuditSession)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", flagAuditSession, err)
	}

	summary, err := a.queryEngine().Summarize(session)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:         %s\n", summary.SessionID)
	fmt.Fprintf(out, "Started:         %s\n", summary.Started.Local().Format(time.RFC3339))
	if !summary.Ended.IsZero() {
		fmt.Fprintf(out, "Ended:           %s\n", summary.Ended.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "Duration:        %s\n", summary.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(out, "Commands:        %d\n", summary.CommandCount)
	fmt.Fprintf(out, "File operations: %d\n", summary.FileOpCount)
	fmt.Fprintf(out, "Security events: %d\n", summary.SecurityEvents)
	return nil
}

func runAuditTrail(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	commandID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid command id %q: %w", args[0], err)
	}

	events, err := a.queryEngine().CommandTimeline(commandID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No events for that command.")
		return nil
	}

	for _, e := range events {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
			e.Timestamp.Local().Format("15:04:05.000"), e.EventType)
	}
	return nil
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	filter, err := buildFilter()
	if err != nil {
		return err
	}
	format, err := audit.ParseExportFormat(flagAuditFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagAuditOutput != "" {
		f, err := os.Create(flagAuditOutput)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	n, err := a.queryEngine().Export(out, filter, format)
	if err != nil {
		return err
	}
	if flagAuditOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", n, flagAuditOutput)
	}
	return nil
}
