package audit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportFormat selects the export encoding.
type ExportFormat string

// Export formats.
const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ParseExportFormat parses a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or csv)", s)
	}
}

// Export writes the events matching the filter to w. JSON produces one
// array; CSV produces a header row plus one row per event. Both formats
// see the same filtered event set, so their record counts always agree.
func (q *QueryEngine) Export(w io.Writer, filter Filter, format ExportFormat) (int, error) {
	events, err := q.Query(filter)
	if err != nil {
		return 0, err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if events == nil {
			events = []Event{}
		}
		if err := enc.Encode(events); err != nil {
			return 0, fmt.Errorf("encode export: %w", err)
		}
	case FormatCSV:
		cw := csv.NewWriter(w)
		header := []string{"timestamp", "event_type", "session_id", "command_id", "details"}
		if err := cw.Write(header); err != nil {
			return 0, fmt.Errorf("write csv header: %w", err)
		}
		for _, e := range events {
			row := []string{
				e.Timestamp.Format(time.RFC3339),
				string(e.EventType),
				e.SessionID.String(),
				commandIDColumn(e),
				detailsColumn(e.Details),
			}
			if err := cw.Write(row); err != nil {
				return 0, fmt.Errorf("write csv row: %w", err)
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return 0, fmt.Errorf("flush csv: %w", err)
		}
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}

	return len(events), nil
}

func commandIDColumn(e Event) string {
	if e.CommandID == uuid.Nil {
		return ""
	}
	return e.CommandID.String()
}

// detailsColumn flattens the details map to stable key=value pairs.
func detailsColumn(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return strings.Join(parts, " ")
}
